package api

import (
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"github.com/unrolled/secure"

	"github.com/accountkit/user-api/internal/api/handler"
	"github.com/accountkit/user-api/internal/api/middleware"
	"github.com/accountkit/user-api/internal/core/domain"
	"github.com/accountkit/user-api/internal/core/ports"
	"github.com/accountkit/user-api/internal/infrastructure/http/handlers"
)

// Deps is everything the router needs. Registry is optional; nil uses the
// default Prometheus registry.
type Deps struct {
	Accounts     ports.AccountService
	Tokens       ports.TokenService
	Readiness    *handlers.HealthDependenciesHandler
	Log          zerolog.Logger
	APIPrefix    string
	SessionCheck bool
	Production   bool
	Registry     *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(requestContext)
	e.Use(requestLogger(d.Log))
	e.Use(echo.WrapMiddleware(secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		IsDevelopment:      !d.Production,
	}).Handler))
	e.Use(prometheusMiddleware(d.Registry))

	// --- Operational routes (no auth required) ---
	e.GET("/metrics", metricsHandler(d.Registry))
	e.GET("/health", handlers.NewHealthHandler().Liveness)
	if d.Readiness != nil {
		e.GET("/health/ready", d.Readiness.Readiness)
	}
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- User API ---
	users := handler.NewUserHandler(d.Accounts)
	auth := handler.NewAuthHandler(d.Accounts)
	passwords := handler.NewPasswordHandler(d.Accounts)
	gate := middleware.Auth(d.Tokens,
		middleware.WithSessionCheck(d.SessionCheck),
		middleware.WithLogger(d.Log),
	)

	prefix := strings.TrimRight(d.APIPrefix, "/")
	g := e.Group(prefix)

	g.PUT("/user", users.Register)
	g.GET("/user", users.Profile, gate)
	g.PATCH("/user", users.UpdateProfile, gate)
	g.DELETE("/user", users.Delete, gate)

	g.POST("/user/auth", auth.Login)
	g.DELETE("/user/auth", auth.Logout, gate)

	g.POST("/user/password", passwords.Change, gate)

	return e
}

// requestContext copies the request id into the request context so services
// can attach it to account events.
func requestContext(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
			req := c.Request()
			c.SetRequest(req.WithContext(domain.WithRequestID(req.Context(), id)))
		}
		return next(c)
	}
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}

func prometheusMiddleware(reg *prometheus.Registry) echo.MiddlewareFunc {
	cfg := echoprometheus.MiddlewareConfig{
		Subsystem: "http",
		Skipper: func(c echo.Context) bool {
			p := c.Path()
			return p == "/metrics" || strings.HasPrefix(p, "/health") || strings.HasPrefix(p, "/swagger")
		},
	}
	if reg != nil {
		cfg.Registerer = reg
	}
	return echoprometheus.NewMiddlewareWithConfig(cfg)
}

func metricsHandler(reg *prometheus.Registry) echo.HandlerFunc {
	if reg == nil {
		return echoprometheus.NewHandler()
	}
	return echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: reg})
}
