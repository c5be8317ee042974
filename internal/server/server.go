package server

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

// ServerConfig holds configuration for the status API
type ServerConfig struct {
	Addr    string // bind address, e.g. ":8090"
	DevMode bool   // include error details in responses
	APIKey  string // required in X-API-Key when set

	QuoteRate float64 // quote requests per second per client (default 1)
}

func (c ServerConfig) quoteRate() float64 {
	if c.QuoteRate <= 0 {
		return 1
	}
	return c.QuoteRate
}

type ServerDeps struct {
	Handlers *Handlers
	Config   ServerConfig
}

// Server is the echo instance plus shutdown bookkeeping.
type Server struct {
	e      *echo.Echo
	cfg    ServerConfig
	closed chan struct{}
}

func NewServer(deps ServerDeps) (*Server, error) {
	h := deps.Handlers
	if h.Logger == nil {
		h.Logger = logrus.New()
	}
	h.DevMode = h.DevMode || deps.Config.DevMode

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Server.ReadTimeout = 15 * time.Second
	// Quotes read chain state, so writes get more room than reads.
	e.Server.WriteTimeout = 30 * time.Second
	e.Server.IdleTimeout = 60 * time.Second

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger(h.Logger))
	RegisterRoutes(e, h, deps.Config)

	return &Server{e: e, cfg: deps.Config, closed: make(chan struct{})}, nil
}

// requestLogger sends one logrus line per request.
func requestLogger(logger *logrus.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			entry := logger.WithFields(logrus.Fields{
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"request_id": v.RequestID,
			})
			if v.Error != nil {
				entry.WithError(v.Error).Warn("request failed")
				return nil
			}
			entry.Debug("request")
			return nil
		},
	})
}

func (s *Server) Start() error {
	return s.e.Start(s.cfg.Addr)
}

// Shutdown drains in-flight requests for at most 10 seconds.
func (s *Server) Shutdown(ctx context.Context) error {
	defer close(s.closed)
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.e.Shutdown(ctx)
}

// WaitClosed blocks until Shutdown has returned or ctx ends.
func (s *Server) WaitClosed(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.closed:
		return nil
	}
}

func SetNoCacheHeaders(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set("Cache-Control", "no-store")
		return next(c)
	}
}

func SetJSONContentType(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		return next(c)
	}
}
