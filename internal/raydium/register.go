package raydium

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/aman-zulfiqar/solana-auto-exit/internal/errs"
	"github.com/gagliardetto/solana-go"
)

// PoolKeysConfig is one pool entry in the registry JSON file.
type PoolKeysConfig struct {
	ID               string `json:"id"`
	ProgramID        string `json:"program_id,omitempty"`
	Authority        string `json:"authority"`
	OpenOrders       string `json:"open_orders"`
	TargetOrders     string `json:"target_orders"`
	BaseMint         string `json:"base_mint"`
	QuoteMint        string `json:"quote_mint"`
	BaseVault        string `json:"base_vault"`
	QuoteVault       string `json:"quote_vault"`
	BaseDecimals     uint8  `json:"base_decimals"`
	QuoteDecimals    uint8  `json:"quote_decimals"`
	MarketProgramID  string `json:"market_program_id"`
	MarketID         string `json:"market_id"`
	MarketBids       string `json:"market_bids"`
	MarketAsks       string `json:"market_asks"`
	MarketEventQueue string `json:"market_event_queue"`
	MarketBaseVault  string `json:"market_base_vault"`
	MarketQuoteVault string `json:"market_quote_vault"`
	MarketAuthority  string `json:"market_authority"`
}

// PoolRegistry holds every configured pool.
type PoolRegistry struct {
	pools []PoolKeys
}

// NewPoolRegistry loads pools from a JSON file.
func NewPoolRegistry(configPath string) (*PoolRegistry, error) {
	pools, err := LoadPoolsFromJSON(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load pools: %w", err)
	}
	return &PoolRegistry{pools: pools}, nil
}

// NewPoolRegistryFromKeys builds a registry from already parsed pools.
func NewPoolRegistryFromKeys(pools ...PoolKeys) *PoolRegistry {
	return &PoolRegistry{pools: pools}
}

// LoadPoolsFromJSON reads and parses pool configurations.
func LoadPoolsFromJSON(path string) ([]PoolKeys, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var configs []PoolKeysConfig
	if err := json.Unmarshal(data, &configs); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	pools := make([]PoolKeys, 0, len(configs))
	for i, cfg := range configs {
		pool, err := parsePoolConfig(cfg)
		if err != nil {
			return nil, fmt.Errorf("pool %d (%s): %w", i, cfg.ID, err)
		}
		pools = append(pools, pool)
	}
	return pools, nil
}

// keyParser collects the first parse error so a pool entry reads as one block.
type keyParser struct {
	err error
}

func (p *keyParser) key(field, value string) solana.PublicKey {
	if p.err != nil {
		return solana.PublicKey{}
	}
	pk, err := solana.PublicKeyFromBase58(value)
	if err != nil {
		p.err = fmt.Errorf("%s: %w", field, err)
	}
	return pk
}

func parsePoolConfig(cfg PoolKeysConfig) (PoolKeys, error) {
	var p keyParser

	pool := PoolKeys{
		ID:               p.key("id", cfg.ID),
		Authority:        p.key("authority", cfg.Authority),
		OpenOrders:       p.key("open_orders", cfg.OpenOrders),
		TargetOrders:     p.key("target_orders", cfg.TargetOrders),
		BaseMint:         p.key("base_mint", cfg.BaseMint),
		QuoteMint:        p.key("quote_mint", cfg.QuoteMint),
		BaseVault:        p.key("base_vault", cfg.BaseVault),
		QuoteVault:       p.key("quote_vault", cfg.QuoteVault),
		BaseDecimals:     cfg.BaseDecimals,
		QuoteDecimals:    cfg.QuoteDecimals,
		MarketProgramID:  p.key("market_program_id", cfg.MarketProgramID),
		MarketID:         p.key("market_id", cfg.MarketID),
		MarketBids:       p.key("market_bids", cfg.MarketBids),
		MarketAsks:       p.key("market_asks", cfg.MarketAsks),
		MarketEventQueue: p.key("market_event_queue", cfg.MarketEventQueue),
		MarketBaseVault:  p.key("market_base_vault", cfg.MarketBaseVault),
		MarketQuoteVault: p.key("market_quote_vault", cfg.MarketQuoteVault),
		MarketAuthority:  p.key("market_authority", cfg.MarketAuthority),
		ProgramID:        ProgramID,
	}
	if cfg.ProgramID != "" {
		pool.ProgramID = p.key("program_id", cfg.ProgramID)
	}
	if p.err != nil {
		return PoolKeys{}, p.err
	}
	return pool, nil
}

// FindByMint returns the mint's pool against wrapped SOL.
func (r *PoolRegistry) FindByMint(mint solana.PublicKey) (*PoolKeys, error) {
	for i := range r.pools {
		pool := &r.pools[i]
		if (pool.BaseMint.Equals(mint) && pool.QuoteMint.Equals(solana.SolMint)) ||
			(pool.QuoteMint.Equals(mint) && pool.BaseMint.Equals(solana.SolMint)) {
			return pool, nil
		}
	}
	return nil, errs.NotFound("raydium pool keys for mint %s", mint)
}

// FindByID searches for a pool by its AMM id.
func (r *PoolRegistry) FindByID(id solana.PublicKey) (*PoolKeys, error) {
	for i := range r.pools {
		if r.pools[i].ID.Equals(id) {
			return &r.pools[i], nil
		}
	}
	return nil, errs.NotFound("raydium pool %s", id)
}

// Pools returns all registered pools.
func (r *PoolRegistry) Pools() []PoolKeys {
	return r.pools
}

// PoolCount returns the number of registered pools.
func (r *PoolRegistry) PoolCount() int {
	return len(r.pools)
}

// OtherMint returns the pool mint opposite to mint.
func (p *PoolKeys) OtherMint(mint solana.PublicKey) (solana.PublicKey, error) {
	switch {
	case p.BaseMint.Equals(mint):
		return p.QuoteMint, nil
	case p.QuoteMint.Equals(mint):
		return p.BaseMint, nil
	}
	return solana.PublicKey{}, errs.InvalidInput("mint %s is not in pool %s", mint, p.ID)
}
