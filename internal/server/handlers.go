package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aman-zulfiqar/solana-auto-exit/internal/cache"
	"github.com/aman-zulfiqar/solana-auto-exit/internal/errs"
	"github.com/aman-zulfiqar/solana-auto-exit/internal/holdings"
	"github.com/aman-zulfiqar/solana-auto-exit/internal/storage"
	"github.com/aman-zulfiqar/solana-auto-exit/internal/swapengine"
	"github.com/gagliardetto/solana-go"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// HoldingsStore is the ledger view the API reads and edits
type HoldingsStore interface {
	List(ctx context.Context) ([]holdings.Holding, error)
	Remove(ctx context.Context, mint string) error
}

// Quoter previews sells without submitting
type Quoter interface {
	Quote(ctx context.Context, mint solana.PublicKey, percentage, slippage float64) (*swapengine.SellQuote, error)
	DefaultSlippage() float64
}

// QuarantineStore lists and releases held-back mints
type QuarantineStore interface {
	Quarantined() []swapengine.QuarantineEntry
	Release(mint string) bool
}

// PriceLookup fetches a live spot price in SOL
type PriceLookup interface {
	GetSpotPrice(ctx context.Context, mint string) (float64, error)
}

// Handlers contains all dependencies for API endpoint handlers
type Handlers struct {
	Holdings   HoldingsStore        // Ledger of tracked mints
	Engine     Quoter               // Sell previews
	Quarantine QuarantineStore      // Mints whose last sell ended unknown
	Cache      storage.OutcomeCache // Redis recent outcomes and prices (optional)
	History    storage.OutcomeStore // ClickHouse outcome history (optional)
	Prices     PriceLookup          // Live price source (optional)
	DevMode    bool                 // Enable detailed error responses in development
	Logger     *logrus.Logger       // Structured logger
}

// err returns a standardized JSON error response
// In dev mode, includes additional error details for debugging
func (h *Handlers) err(c echo.Context, code int, msg string, details any) error {
	resp := ErrorResponse{Error: msg, Code: code}
	if h.DevMode && details != nil {
		resp.Details = details
	}
	return c.JSON(code, resp)
}

// withTimeout creates a context with timeout, defaulting to 10 seconds if duration <= 0
func (h *Handlers) withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = 10 * time.Second
	}
	return context.WithTimeout(ctx, d)
}

// Health reports liveness plus the state of optional backends
func (h *Handlers) Health(c echo.Context) error {
	ctx, cancel := h.withTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{OK: true, Components: map[string]string{}}
	if h.Cache != nil {
		resp.Components["redis"] = pingStatus(h.Cache.Ping(ctx))
	}
	if h.History != nil {
		resp.Components["clickhouse"] = pingStatus(h.History.Ping(ctx))
	}
	return c.JSON(http.StatusOK, resp)
}

func pingStatus(err error) string {
	if err != nil {
		return "down"
	}
	return "up"
}

// HoldingsList returns tracked holdings, oldest first
func (h *Handlers) HoldingsList(c echo.Context) error {
	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Holdings.List(ctx)
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to list holdings", map[string]any{"err": err.Error()})
	}

	now := time.Now()
	out := HoldingsResponse{Items: make([]HoldingItem, 0, len(items))}
	for _, it := range items {
		out.Items = append(out.Items, HoldingItem{Holding: it, AgeSeconds: int64(it.Age(now).Seconds())})
	}
	return c.JSON(http.StatusOK, out)
}

// HoldingsDelete stops tracking a mint
// Returns 204 No Content whether or not the mint was tracked
func (h *Handlers) HoldingsDelete(c echo.Context) error {
	mint, ok := h.mintParam(c)
	if !ok {
		return h.err(c, http.StatusBadRequest, "invalid mint", map[string]any{"mint": "must be base58 public key"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	if err := h.Holdings.Remove(ctx, mint.String()); err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to remove holding", map[string]any{"err": err.Error()})
	}
	return c.NoContent(http.StatusNoContent)
}

// RecentOutcomes returns the most recent outcomes with optional limit parameter
// Accepts limit query parameter (default: 50, range: 1-200)
func (h *Handlers) RecentOutcomes(c echo.Context) error {
	limit := 50
	if s := c.QueryParam("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return h.err(c, http.StatusBadRequest, "invalid limit", map[string]any{"limit": "must be an integer"})
		}
		limit = n
	}
	if limit < 1 || limit > 200 {
		return h.err(c, http.StatusBadRequest, "invalid limit", map[string]any{"limit": "min 1 max 200"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	switch {
	case h.Cache != nil:
		items, err := h.Cache.GetRecentOutcomes(ctx, int64(limit))
		if err != nil {
			return h.err(c, http.StatusInternalServerError, "failed to get outcomes", map[string]any{"err": err.Error()})
		}
		return c.JSON(http.StatusOK, OutcomesResponse{Items: items, Source: "redis"})
	case h.History != nil:
		items, err := h.History.RecentOutcomes(ctx, limit)
		if err != nil {
			return h.err(c, http.StatusInternalServerError, "failed to get outcomes", map[string]any{"err": err.Error()})
		}
		return c.JSON(http.StatusOK, OutcomesResponse{Items: items, Source: "clickhouse"})
	}
	return h.err(c, http.StatusServiceUnavailable, "outcome storage is not configured", nil)
}

// Quote previews selling a percentage of the wallet's balance of a mint
// Accepts percentage (default 100) and slippage (default: configured) query parameters
func (h *Handlers) Quote(c echo.Context) error {
	mint, ok := h.mintParam(c)
	if !ok {
		return h.err(c, http.StatusBadRequest, "invalid mint", map[string]any{"mint": "must be base58 public key"})
	}

	percentage, err := floatQuery(c, "percentage", 100)
	if err != nil {
		return h.err(c, http.StatusBadRequest, "invalid percentage", map[string]any{"percentage": "must be a number"})
	}
	slippage, err := floatQuery(c, "slippage", h.Engine.DefaultSlippage())
	if err != nil {
		return h.err(c, http.StatusBadRequest, "invalid slippage", map[string]any{"slippage": "must be a number"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	q, err := h.Engine.Quote(ctx, mint, percentage, slippage)
	if err != nil {
		return h.err(c, statusFor(err), "quote failed", map[string]any{"err": err.Error(), "kind": errs.Kind(err)})
	}
	return c.JSON(http.StatusOK, newQuoteResponse(q))
}

// Price returns a mint's spot price in SOL, preferring the cache
// A live lookup refreshes the cache
func (h *Handlers) Price(c echo.Context) error {
	mint, ok := h.mintParam(c)
	if !ok {
		return h.err(c, http.StatusBadRequest, "invalid mint", map[string]any{"mint": "must be base58 public key"})
	}
	key := mint.String()

	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if h.Cache != nil {
		price, err := h.Cache.GetPrice(ctx, key)
		if err == nil {
			return c.JSON(http.StatusOK, PriceResponse{Mint: key, Price: price, Cached: true})
		}
		if !errors.Is(err, cache.ErrPriceNotCached) {
			h.Logger.WithError(err).WithField("mint", key).Warn("price cache read failed")
		}
	}

	if h.Prices == nil {
		return h.err(c, http.StatusNotFound, "price not available", nil)
	}
	price, err := h.Prices.GetSpotPrice(ctx, key)
	if err != nil {
		code := statusFor(err)
		if code == http.StatusInternalServerError {
			code = http.StatusBadGateway
		}
		return h.err(c, code, "price lookup failed", map[string]any{"err": err.Error()})
	}

	if h.Cache != nil {
		if err := h.Cache.UpdatePrice(ctx, key, price); err != nil {
			h.Logger.WithError(err).WithField("mint", key).Warn("price cache write failed")
		}
	}
	return c.JSON(http.StatusOK, PriceResponse{Mint: key, Price: price})
}

// QuarantineList returns mints held back after an unknown sell outcome
func (h *Handlers) QuarantineList(c echo.Context) error {
	return c.JSON(http.StatusOK, QuarantineResponse{Items: h.Quarantine.Quarantined()})
}

// QuarantineRelease lets the scheduler sell a mint again
// Returns 404 if the mint was not quarantined
func (h *Handlers) QuarantineRelease(c echo.Context) error {
	mint, ok := h.mintParam(c)
	if !ok {
		return h.err(c, http.StatusBadRequest, "invalid mint", map[string]any{"mint": "must be base58 public key"})
	}
	if !h.Quarantine.Release(mint.String()) {
		return h.err(c, http.StatusNotFound, "mint not quarantined", nil)
	}
	h.Logger.WithField("mint", mint.String()).Warn("quarantine released by operator")
	return c.NoContent(http.StatusNoContent)
}

func (h *Handlers) mintParam(c echo.Context) (solana.PublicKey, bool) {
	pk, err := solana.PublicKeyFromBase58(strings.TrimSpace(c.Param("mint")))
	if err != nil {
		return solana.PublicKey{}, false
	}
	return pk, true
}

func floatQuery(c echo.Context, name string, def float64) (float64, error) {
	s := strings.TrimSpace(c.QueryParam(name))
	if s == "" {
		return def, nil
	}
	return strconv.ParseFloat(s, 64)
}
