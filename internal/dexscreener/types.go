package dexscreener

// TokenPairsResponse is the body of /latest/dex/tokens/{address}.
type TokenPairsResponse struct {
	SchemaVersion string `json:"schemaVersion"`
	Pairs         []Pair `json:"pairs"`
}

type Pair struct {
	ChainID     string     `json:"chainId"`
	DexID       string     `json:"dexId"`
	PairAddress string     `json:"pairAddress"`
	BaseToken   Token      `json:"baseToken"`
	QuoteToken  Token      `json:"quoteToken"`
	PriceNative string     `json:"priceNative"` // quote per base
	PriceUsd    string     `json:"priceUsd,omitempty"`
	Liquidity   *Liquidity `json:"liquidity,omitempty"`
}

type Token struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
}

type Liquidity struct {
	Usd   float64 `json:"usd"`
	Base  float64 `json:"base"`
	Quote float64 `json:"quote"`
}

func (p Pair) liquidityUSD() float64 {
	if p.Liquidity == nil {
		return 0
	}
	return p.Liquidity.Usd
}
