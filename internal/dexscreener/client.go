package dexscreener

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aman-zulfiqar/solana-auto-exit/internal/errs"
)

const chainSolana = "solana"

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.dexscreener.com"
	}
	return &Client{
		BaseURL: baseURL,
		HTTP: &http.Client{
			Timeout: 12 * time.Second,
		},
	}
}

type HTTPError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	b := strings.TrimSpace(string(e.Body))
	if b == "" {
		return fmt.Sprintf("dexscreener http %d", e.StatusCode)
	}
	return fmt.Sprintf("dexscreener http %d: %s", e.StatusCode, b)
}

// TokenPairs lists every pair trading mint.
func (c *Client) TokenPairs(ctx context.Context, mint string) ([]Pair, error) {
	if strings.TrimSpace(mint) == "" {
		return nil, errs.InvalidInput("mint is required")
	}

	u := c.BaseURL + "/latest/dex/tokens/" + url.PathEscape(mint)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("accept", "application/json")

	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	body, _ := io.ReadAll(res.Body)
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, &HTTPError{StatusCode: res.StatusCode, Body: body}
	}

	var out TokenPairsResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to decode dexscreener response: %w", err)
	}
	return out.Pairs, nil
}

// BestPair is the deepest Solana pair with mint as its base token.
func (c *Client) BestPair(ctx context.Context, mint string) (*Pair, error) {
	pairs, err := c.TokenPairs(ctx, mint)
	if err != nil {
		return nil, err
	}

	var best *Pair
	for i := range pairs {
		p := &pairs[i]
		if p.ChainID != chainSolana || p.BaseToken.Address != mint {
			continue
		}
		if best == nil || p.liquidityUSD() > best.liquidityUSD() {
			best = p
		}
	}
	if best == nil {
		return nil, errs.NotFound("no dexscreener pair for %s", mint)
	}
	return best, nil
}

// GetSpotPrice returns the quote-denominated price of one mint token on its
// deepest pair, which for Solana memecoins is SOL.
func (c *Client) GetSpotPrice(ctx context.Context, mint string) (float64, error) {
	pair, err := c.BestPair(ctx, mint)
	if err != nil {
		return 0, err
	}
	price, err := strconv.ParseFloat(pair.PriceNative, 64)
	if err != nil {
		return 0, errs.Parse("dexscreener priceNative", err)
	}
	return price, nil
}

// GetSymbol returns the token and quote symbols of the deepest pair.
func (c *Client) GetSymbol(ctx context.Context, mint string) (token, quote string, err error) {
	pair, err := c.BestPair(ctx, mint)
	if err != nil {
		return "", "", err
	}
	return pair.BaseToken.Symbol, pair.QuoteToken.Symbol, nil
}
