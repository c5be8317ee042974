package holdings

import (
	"context"
	"time"
)

// nonFungible lists DAS interface types that are never sold.
var nonFungible = map[string]bool{
	"V1_NFT":          true,
	"V2_NFT":          true,
	"LEGACY_NFT":      true,
	"ProgrammableNFT": true,
	"MplCoreAsset":    true,
}

// Holding is one mint first seen in the wallet with a positive balance.
type Holding struct {
	Mint      string    `json:"mint"`
	Symbol    string    `json:"symbol"`
	Balance   float64   `json:"balance"`
	FirstSeen time.Time `json:"first_seen"`
}

// Age is how long the holding has been tracked at now.
func (h Holding) Age(now time.Time) time.Duration {
	return now.Sub(h.FirstSeen)
}

// AgedPast reports whether the holding is older than threshold at now.
// Both sides are compared in whole epoch seconds, the ledger's resolution.
func (h Holding) AgedPast(threshold time.Duration, now time.Time) bool {
	return now.Unix()-h.FirstSeen.Unix() > int64(threshold/time.Second)
}

// record is the persisted ledger entry.
type record struct {
	Symbol        string  `json:"symbol"`
	TokenID       string  `json:"token_id"`
	Balance       float64 `json:"balance"`
	DetectionTime int64   `json:"detection_time"`
}

func toRecord(h Holding) record {
	return record{
		Symbol:        h.Symbol,
		TokenID:       h.Mint,
		Balance:       h.Balance,
		DetectionTime: h.FirstSeen.Unix(),
	}
}

func (r record) holding() Holding {
	return Holding{
		Mint:      r.TokenID,
		Symbol:    r.Symbol,
		Balance:   r.Balance,
		FirstSeen: time.Unix(r.DetectionTime, 0),
	}
}

// Ledger persists holdings keyed by mint. Implementations need not be safe
// for concurrent writers; the Tracker serializes access.
type Ledger interface {
	All(ctx context.Context) (map[string]Holding, error)
	Add(ctx context.Context, holdings ...Holding) error
	Delete(ctx context.Context, mint string) error
}
