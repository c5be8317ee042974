package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// RegisterRoutes configures all API routes, middleware, and error handlers
func RegisterRoutes(e *echo.Echo, h *Handlers, cfg ServerConfig) {
	// Set custom error handler for consistent JSON responses
	e.HTTPErrorHandler = NotFoundJSON()

	// Apply global middleware
	e.Use(SetJSONContentType) // Ensure all responses are JSON
	e.Use(SetNoCacheHeaders)  // Prevent caching of API responses

	// Optional API key authentication
	if cfg.APIKey != "" {
		e.Use(middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
			KeyLookup: "header:X-API-Key", // Look for API key in X-API-Key header
			Validator: func(key string, c echo.Context) (bool, error) {
				return key == cfg.APIKey, nil // Simple string comparison
			},
		}))
	}

	// API v1 routes
	v1 := e.Group("/v1")
	v1.GET("/health", h.Health)                  // Health check endpoint
	v1.GET("/outcomes/recent", h.RecentOutcomes) // Recent sell outcomes
	v1.GET("/prices/:mint", h.Price)             // Spot price in SOL

	// Ledger of tracked holdings
	holdingGroup := v1.Group("/holdings")
	holdingGroup.GET("", h.HoldingsList)             // List tracked mints
	holdingGroup.DELETE("/:mint", h.HoldingsDelete) // Stop tracking a mint

	// Sell previews hit the RPC node, so they are rate limited
	quoteGroup := v1.Group("/quote")
	quoteGroup.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(cfg.quoteRate()),
		Burst:     5,
		ExpiresIn: 2 * time.Minute,
	})))
	quoteGroup.GET("/:mint", h.Quote)

	// Mints held back after an unknown sell outcome
	quarantineGroup := v1.Group("/quarantine")
	quarantineGroup.GET("", h.QuarantineList)
	quarantineGroup.DELETE("/:mint", h.QuarantineRelease)

	// Catch-all route for 404 responses
	e.RouteNotFound("/*", func(c echo.Context) error {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found", Code: http.StatusNotFound})
	})
}
