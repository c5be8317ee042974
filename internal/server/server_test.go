package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aman-zulfiqar/solana-auto-exit/internal/cache"
	"github.com/aman-zulfiqar/solana-auto-exit/internal/errs"
	"github.com/aman-zulfiqar/solana-auto-exit/internal/holdings"
	"github.com/aman-zulfiqar/solana-auto-exit/internal/models"
	"github.com/aman-zulfiqar/solana-auto-exit/internal/swapengine"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHoldings struct {
	items   []holdings.Holding
	removed []string
}

func (f *fakeHoldings) List(context.Context) ([]holdings.Holding, error) { return f.items, nil }
func (f *fakeHoldings) Remove(_ context.Context, mint string) error {
	f.removed = append(f.removed, mint)
	return nil
}

type fakeQuoter struct {
	quote    *swapengine.SellQuote
	err      error
	lastPct  float64
	lastSlip float64
}

func (f *fakeQuoter) Quote(_ context.Context, mint solana.PublicKey, pct, slip float64) (*swapengine.SellQuote, error) {
	f.lastPct, f.lastSlip = pct, slip
	if f.err != nil {
		return nil, f.err
	}
	q := *f.quote
	q.Mint = mint
	q.Percentage = pct
	return &q, nil
}
func (f *fakeQuoter) DefaultSlippage() float64 { return 10 }

type fakeCache struct {
	outcomes []*models.SellOutcome
	prices   map[string]float64
}

func (f *fakeCache) RecordOutcome(context.Context, *models.SellOutcome) error { return nil }
func (f *fakeCache) GetRecentOutcomes(_ context.Context, limit int64) ([]*models.SellOutcome, error) {
	if int(limit) < len(f.outcomes) {
		return f.outcomes[:limit], nil
	}
	return f.outcomes, nil
}
func (f *fakeCache) UpdatePrice(_ context.Context, mint string, price float64) error {
	f.prices[mint] = price
	return nil
}
func (f *fakeCache) GetPrice(_ context.Context, mint string) (float64, error) {
	p, ok := f.prices[mint]
	if !ok {
		return 0, cache.ErrPriceNotCached
	}
	return p, nil
}
func (f *fakeCache) Ping(context.Context) error { return nil }
func (f *fakeCache) Close() error               { return nil }

type fakePrices struct {
	price float64
	err   error
	calls int
}

func (f *fakePrices) GetSpotPrice(context.Context, string) (float64, error) {
	f.calls++
	return f.price, f.err
}

type testDeps struct {
	holdings *fakeHoldings
	quoter   *fakeQuoter
	risk     *swapengine.RiskManager
	cache    *fakeCache
	prices   *fakePrices
}

func newTestServer(t *testing.T, cfg ServerConfig) (*Server, *testDeps) {
	t.Helper()
	d := &testDeps{
		holdings: &fakeHoldings{},
		quoter:   &fakeQuoter{quote: &swapengine.SellQuote{Venue: swapengine.VenueCurve, ExpectedSOL: 0.03, MinSOLOut: 0.027}},
		risk:     swapengine.NewRiskManager(swapengine.DefaultRiskConfig()),
		cache:    &fakeCache{prices: map[string]float64{}},
		prices:   &fakePrices{price: 0.0001},
	}
	s, err := NewServer(ServerDeps{
		Handlers: &Handlers{
			Holdings:   d.holdings,
			Engine:     d.quoter,
			Quarantine: d.risk,
			Cache:      d.cache,
			Prices:     d.prices,
		},
		Config: cfg,
	})
	require.NoError(t, err)
	return s, d
}

func do(s *Server, method, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, ServerConfig{})
	rec := do(s, http.MethodGet, "/v1/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Equal(t, "up", resp.Components["redis"])
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestAPIKey(t *testing.T) {
	s, _ := newTestServer(t, ServerConfig{APIKey: "secret"})

	assert.Equal(t, http.StatusUnauthorized, do(s, http.MethodGet, "/v1/health", map[string]string{"X-API-Key": "wrong"}).Code)
	assert.Equal(t, http.StatusOK, do(s, http.MethodGet, "/v1/health", map[string]string{"X-API-Key": "secret"}).Code)
}

func TestHoldingsListAndDelete(t *testing.T) {
	s, d := newTestServer(t, ServerConfig{})
	mint := solana.NewWallet().PublicKey().String()
	d.holdings.items = []holdings.Holding{{Mint: mint, Symbol: "AAA", FirstSeen: time.Now().Add(-time.Minute)}}

	rec := do(s, http.MethodGet, "/v1/holdings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Items []struct {
			Mint       string `json:"mint"`
			Symbol     string `json:"symbol"`
			AgeSeconds int64  `json:"age_seconds"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, mint, resp.Items[0].Mint)
	assert.GreaterOrEqual(t, resp.Items[0].AgeSeconds, int64(59))

	assert.Equal(t, http.StatusNoContent, do(s, http.MethodDelete, "/v1/holdings/"+mint, nil).Code)
	assert.Equal(t, []string{mint}, d.holdings.removed)

	assert.Equal(t, http.StatusBadRequest, do(s, http.MethodDelete, "/v1/holdings/nope", nil).Code)
}

func TestRecentOutcomes(t *testing.T) {
	s, d := newTestServer(t, ServerConfig{})
	d.cache.outcomes = []*models.SellOutcome{{Signature: "a"}, {Signature: "b"}, {Signature: "c"}}

	rec := do(s, http.MethodGet, "/v1/outcomes/recent?limit=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp OutcomesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Items, 2)
	assert.Equal(t, "redis", resp.Source)

	assert.Equal(t, http.StatusBadRequest, do(s, http.MethodGet, "/v1/outcomes/recent?limit=0", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(s, http.MethodGet, "/v1/outcomes/recent?limit=x", nil).Code)
}

func TestQuote(t *testing.T) {
	s, d := newTestServer(t, ServerConfig{})
	mint := solana.NewWallet().PublicKey().String()

	rec := do(s, http.MethodGet, "/v1/quote/"+mint+"?percentage=50", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp QuoteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, mint, resp.Mint)
	assert.Equal(t, "pumpfun", resp.Venue)
	assert.Equal(t, 50.0, resp.Percentage)
	assert.Equal(t, 10.0, d.quoter.lastSlip)

	assert.Equal(t, http.StatusBadRequest, do(s, http.MethodGet, "/v1/quote/"+mint+"?slippage=abc", nil).Code)
}

func TestQuoteErrors(t *testing.T) {
	s, d := newTestServer(t, ServerConfig{QuoteRate: 100})
	mint := solana.NewWallet().PublicKey().String()

	cases := []struct {
		err  error
		code int
	}{
		{errs.NotFound("bonding curve"), http.StatusNotFound},
		{fmt.Errorf("%w: none", errs.ErrZeroBalance), http.StatusConflict},
		{errs.InvalidInput("percentage"), http.StatusBadRequest},
		{errs.RPC("getAccountInfo", errors.New("timeout")), http.StatusBadGateway},
	}
	for _, tc := range cases {
		d.quoter.err = tc.err
		assert.Equal(t, tc.code, do(s, http.MethodGet, "/v1/quote/"+mint, nil).Code, tc.err.Error())
	}
}

func TestQuoteRateLimited(t *testing.T) {
	s, _ := newTestServer(t, ServerConfig{QuoteRate: 0.01})
	mint := solana.NewWallet().PublicKey().String()

	var limited bool
	for i := 0; i < 10; i++ {
		if do(s, http.MethodGet, "/v1/quote/"+mint, nil).Code == http.StatusTooManyRequests {
			limited = true
			break
		}
	}
	assert.True(t, limited)
}

func TestPriceCacheThenLive(t *testing.T) {
	s, d := newTestServer(t, ServerConfig{})
	mint := solana.NewWallet().PublicKey().String()

	rec := do(s, http.MethodGet, "/v1/prices/"+mint, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp PriceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Cached)
	assert.InDelta(t, 0.0001, resp.Price, 1e-12)
	assert.Equal(t, 1, d.prices.calls)

	rec = do(s, http.MethodGet, "/v1/prices/"+mint, nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Cached)
	assert.Equal(t, 1, d.prices.calls)
}

func TestPriceLookupFailure(t *testing.T) {
	s, d := newTestServer(t, ServerConfig{})
	d.prices.err = errors.New("upstream down")
	mint := solana.NewWallet().PublicKey().String()

	assert.Equal(t, http.StatusBadGateway, do(s, http.MethodGet, "/v1/prices/"+mint, nil).Code)
}

func TestQuarantine(t *testing.T) {
	s, d := newTestServer(t, ServerConfig{})
	mint := solana.NewWallet().PublicKey()
	d.risk.Quarantine(mint, "5sig", "no status after 20 attempts")

	rec := do(s, http.MethodGet, "/v1/quarantine", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp QuarantineResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "5sig", resp.Items[0].Signature)

	assert.Equal(t, http.StatusNoContent, do(s, http.MethodDelete, "/v1/quarantine/"+mint.String(), nil).Code)
	assert.Equal(t, http.StatusNotFound, do(s, http.MethodDelete, "/v1/quarantine/"+mint.String(), nil).Code)
	assert.NoError(t, d.risk.CheckSell(mint))
}

func TestUnknownRoute(t *testing.T) {
	s, _ := newTestServer(t, ServerConfig{})
	rec := do(s, http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not found")
}
