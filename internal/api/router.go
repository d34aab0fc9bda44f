package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/accessdesk/mediation-gateway/docs"
	"github.com/accessdesk/mediation-gateway/internal/api/handler"
	"github.com/accessdesk/mediation-gateway/internal/api/middleware"
	"github.com/accessdesk/mediation-gateway/internal/gateway"
)

// Deps carries everything the router needs to build its handlers.
type Deps struct {
	Gateway *gateway.Gateway
	Logger  zerolog.Logger
	Server  handler.ServerInfo

	// Checks are the readiness checks keyed by dependency name.
	Checks map[string]handler.Check

	// Registry receives the HTTP metrics and backs /metrics. Nil means the
	// default Prometheus registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if d.Registry != nil {
		registerer, gatherer = d.Registry, d.Registry
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "mediation",
		Subsystem:  "http",
		Registerer: registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Observability ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Tool-calling surface ---
	mcpHandler := handler.NewMCPHandler(d.Gateway, d.Server, d.Logger)
	e.POST("/mcp", mcpHandler.Handle,
		middleware.ProtocolVersion(handler.MCPProtocolVersionLatest, handler.MCPProtocolVersionFallback))

	// --- REST resources ---
	resources := handler.NewResourceHandler(d.Gateway)
	api := e.Group("/api")

	users := api.Group("/users")
	users.GET("", resources.ListUsers)
	users.POST("", resources.CreateUser)
	users.GET("/:id", resources.GetUser)
	users.PUT("/:id", resources.UpdateUser)
	users.DELETE("/:id", resources.DeleteUser)

	roles := api.Group("/roles")
	roles.GET("", resources.ListRoles)
	roles.POST("", resources.CreateRole)
	roles.GET("/:id", resources.GetRole)
	roles.PUT("/:id", resources.UpdateRole)
	roles.DELETE("/:id", resources.DeleteRole)

	api.POST("/seed", resources.Seed)

	// --- Health probes ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Checks)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)

	return e
}

// requestLogger writes one structured line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogRoutePath: true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= http.StatusInternalServerError {
				ev = log.Error().Err(v.Error)
			}
			ev.
				Str("method", v.Method).
				Str("uri", v.URI).
				Str("route", v.RoutePath).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
