package holdings

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/aman-zulfiqar/solana-auto-exit/internal/constants"
	"github.com/aman-zulfiqar/solana-auto-exit/internal/rpc"
	"github.com/sirupsen/logrus"
)

// AssetLister returns the wallet's DAS assets.
type AssetLister interface {
	GetAssetsByOwner(ctx context.Context, owner string) ([]rpc.Asset, error)
}

type TrackerConfig struct {
	Owner  string
	Logger *logrus.Logger
}

// Tracker keeps the ledger of held mints and when each was first seen.
// All ledger access goes through one mutex.
type Tracker struct {
	mu     sync.Mutex
	assets AssetLister
	ledger Ledger
	owner  string
	logger *logrus.Logger
	now    func() time.Time
}

func NewTracker(assets AssetLister, ledger Ledger, cfg TrackerConfig) *Tracker {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &Tracker{
		assets: assets,
		ledger: ledger,
		owner:  cfg.Owner,
		logger: cfg.Logger,
		now:    time.Now,
	}
}

// Scan lists fungible tokens with a positive balance. FirstSeen is the scan time.
func (t *Tracker) Scan(ctx context.Context) ([]Holding, error) {
	assets, err := t.assets.GetAssetsByOwner(ctx, t.owner)
	if err != nil {
		return nil, fmt.Errorf("scan wallet %s: %w", t.owner, err)
	}

	now := t.now()
	out := make([]Holding, 0, len(assets))
	for _, a := range assets {
		if nonFungible[a.Interface] || a.TokenInfo == nil || a.TokenInfo.Balance <= 0 {
			continue
		}
		out = append(out, Holding{
			Mint:      a.ID,
			Symbol:    constants.SymbolFor(a.ID, a.TokenInfo.Symbol),
			Balance:   a.TokenInfo.UIBalance(),
			FirstSeen: now,
		})
	}

	t.logger.WithFields(logrus.Fields{
		"assets":   len(assets),
		"fungible": len(out),
	}).Debug("wallet scanned")
	return out, nil
}

// Merge records mints not yet in the ledger. Known mints keep their first
// seen time. It returns how many entries were added.
func (t *Tracker) Merge(ctx context.Context, scanned []Holding) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	existing, err := t.ledger.All(ctx)
	if err != nil {
		return 0, err
	}

	var fresh []Holding
	for _, h := range scanned {
		if _, ok := existing[h.Mint]; ok {
			continue
		}
		existing[h.Mint] = h
		fresh = append(fresh, h)
	}
	if len(fresh) == 0 {
		return 0, nil
	}

	if err := t.ledger.Add(ctx, fresh...); err != nil {
		return 0, err
	}
	for _, h := range fresh {
		t.logger.WithFields(logrus.Fields{
			"mint":   h.Mint,
			"symbol": h.Symbol,
		}).Info("new holding tracked")
	}
	return len(fresh), nil
}

// Refresh scans the wallet and merges the result.
func (t *Tracker) Refresh(ctx context.Context) (int, error) {
	scanned, err := t.Scan(ctx)
	if err != nil {
		return 0, err
	}
	return t.Merge(ctx, scanned)
}

// FindAged returns holdings tracked for strictly longer than threshold at now,
// oldest first.
func (t *Tracker) FindAged(ctx context.Context, threshold time.Duration, now time.Time) ([]Holding, error) {
	all, err := t.List(ctx)
	if err != nil {
		return nil, err
	}

	aged := all[:0]
	for _, h := range all {
		if h.AgedPast(threshold, now) {
			aged = append(aged, h)
		}
	}
	return aged, nil
}

// List returns every tracked holding, oldest first.
func (t *Tracker) List(ctx context.Context) ([]Holding, error) {
	t.mu.Lock()
	all, err := t.ledger.All(ctx)
	t.mu.Unlock()
	if err != nil {
		return nil, err
	}

	out := make([]Holding, 0, len(all))
	for _, h := range all {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FirstSeen.Equal(out[j].FirstSeen) {
			return out[i].Mint < out[j].Mint
		}
		return out[i].FirstSeen.Before(out[j].FirstSeen)
	})
	return out, nil
}

// Remove drops mint from the ledger. Unknown mints are a no-op.
func (t *Tracker) Remove(ctx context.Context, mint string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ledger.Delete(ctx, mint)
}
