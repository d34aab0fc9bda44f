package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// HeaderProtocolVersion carries the MCP revision a client speaks.
const HeaderProtocolVersion = "MCP-Protocol-Version"

// ProtocolVersion rejects requests whose MCP-Protocol-Version header names a
// revision outside supported. A missing header is accepted; the negotiated
// version (or the first supported one) is stored under "protocol_version".
func ProtocolVersion(supported ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(supported))
	for _, v := range supported {
		allowed[v] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			version := strings.TrimSpace(c.Request().Header.Get(HeaderProtocolVersion))
			if version == "" {
				if len(supported) > 0 {
					c.Set("protocol_version", supported[0])
				}
				return next(c)
			}

			if _, ok := allowed[version]; !ok {
				return echo.NewHTTPError(http.StatusBadRequest, "unsupported MCP protocol version")
			}

			c.Set("protocol_version", version)
			return next(c)
		}
	}
}
