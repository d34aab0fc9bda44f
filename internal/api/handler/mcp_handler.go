package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/accessdesk/mediation-gateway/internal/api/metrics"
	"github.com/accessdesk/mediation-gateway/internal/gateway"
)

// MCP protocol revisions this server speaks, newest first.
const (
	MCPProtocolVersionLatest   = "2025-06-18"
	MCPProtocolVersionFallback = "2025-03-26"
)

// JSON-RPC 2.0 error codes.
const (
	rpcParseError     = -32700
	rpcInvalidRequest = -32600
	rpcMethodNotFound = -32601
	rpcInvalidParams  = -32602
)

type jsonRPCRequest struct {
	JSONRPC string          `json:"jsonrpc" validate:"required,eq=2.0"`
	ID      any             `json:"id,omitempty"`
	Method  string          `json:"method"  validate:"required"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type jsonRPCResponse struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      any           `json:"id"`
	Result  any           `json:"result,omitempty"`
	Error   *jsonRPCError `json:"error,omitempty"`
}

type jsonRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type toolCallParams struct {
	Name      string         `json:"name" validate:"required"`
	Arguments map[string]any `json:"arguments"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type toolCallResult struct {
	Content           []contentBlock   `json:"content"`
	StructuredContent gateway.Envelope `json:"structuredContent"`
	IsError           bool             `json:"isError"`
}

type toolDescriptor struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

// ServerInfo identifies this server in the initialize result.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// MCPHandler serves the tool-calling surface as a single JSON-RPC endpoint.
type MCPHandler struct {
	gw     *gateway.Gateway
	info   ServerInfo
	logger zerolog.Logger
}

func NewMCPHandler(gw *gateway.Gateway, info ServerInfo, logger zerolog.Logger) *MCPHandler {
	return &MCPHandler{gw: gw, info: info, logger: logger}
}

// Handle dispatches one JSON-RPC request.
//
// @Summary      MCP JSON-RPC endpoint
// @Description  Supports initialize, ping, tools/list and tools/call.
// @Tags         mcp
// @Accept       json
// @Produce      json
// @Param        body  body      jsonRPCRequest  true  "JSON-RPC 2.0 request"
// @Success      200   {object}  jsonRPCResponse
// @Success      202   {string}  string  "notification accepted"
// @Failure      400   {object}  map[string]string
// @Router       /mcp [post]
func (h *MCPHandler) Handle(c echo.Context) error {
	var req jsonRPCRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return rpcError(c, nil, rpcParseError, "parse error", nil)
	}
	if err := c.Validate(&req); err != nil {
		return rpcError(c, req.ID, rpcInvalidRequest, "invalid request", err.Error())
	}

	// Notifications carry no id and get no response body.
	if req.ID == nil {
		return c.NoContent(http.StatusAccepted)
	}

	switch req.Method {
	case "initialize":
		return rpcResult(c, req.ID, map[string]any{
			"protocolVersion": MCPProtocolVersionLatest,
			"capabilities": map[string]any{
				"tools": map[string]any{"listChanged": false},
			},
			"serverInfo":   h.info,
			"instructions": "Manage users and roles. Roles may be referenced by name or ID; call seed_database to create the default admin and user roles.",
		})
	case "ping":
		return rpcResult(c, req.ID, map[string]any{})
	case "tools/list":
		tools := h.gw.Tools()
		out := make([]toolDescriptor, 0, len(tools))
		for _, t := range tools {
			out = append(out, toolDescriptor{Name: t.Name, Description: t.Description, InputSchema: t.InputSchema()})
		}
		return rpcResult(c, req.ID, map[string]any{"tools": out})
	case "tools/call":
		var params toolCallParams
		if len(req.Params) == 0 {
			return rpcError(c, req.ID, rpcInvalidParams, "invalid params", "params are required")
		}
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return rpcError(c, req.ID, rpcInvalidParams, "invalid params", nil)
		}
		if err := c.Validate(&params); err != nil {
			return rpcError(c, req.ID, rpcInvalidParams, "invalid params", err.Error())
		}
		return rpcResult(c, req.ID, h.call(c, params))
	default:
		return rpcError(c, req.ID, rpcMethodNotFound, "method not found", nil)
	}
}

func (h *MCPHandler) call(c echo.Context, params toolCallParams) toolCallResult {
	started := time.Now()
	env := h.gw.Call(c.Request().Context(), params.Name, params.Arguments)

	outcome, tool := outcomeOK, params.Name
	if !env.Success {
		outcome = env.Code
	}
	if env.Code == gateway.CodeUnknownOperation {
		tool = "unknown"
	}
	track(tool, metrics.TransportMCP, outcome, started)

	res := toolCallResult{StructuredContent: env, IsError: !env.Success}
	if !env.Success {
		res.Content = []contentBlock{{Type: "text", Text: env.Error}}
		return res
	}
	res.Content = []contentBlock{{Type: "text", Text: env.Message}}
	if env.Data != nil {
		data, err := json.MarshalIndent(env.Data, "", "  ")
		if err != nil {
			h.logger.Error().Err(err).Str("tool", params.Name).Msg("encode tool result")
		} else {
			res.Content = append(res.Content, contentBlock{Type: "text", Text: string(data)})
		}
	}
	return res
}

func rpcResult(c echo.Context, id any, result any) error {
	return c.JSON(http.StatusOK, jsonRPCResponse{JSONRPC: "2.0", ID: id, Result: result})
}

func rpcError(c echo.Context, id any, code int, message string, data any) error {
	return c.JSON(http.StatusOK, jsonRPCResponse{JSONRPC: "2.0", ID: id, Error: &jsonRPCError{Code: code, Message: message, Data: data}})
}
