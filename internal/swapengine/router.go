package swapengine

import (
	"context"

	"github.com/aman-zulfiqar/solana-auto-exit/internal/pumpfun"
	"github.com/gagliardetto/solana-go"
)

// Router picks the venue a mint trades on from its bonding curve.
type Router struct {
	accounts pumpfun.AccountReader
}

func NewRouter(accounts pumpfun.AccountReader) *Router {
	return &Router{accounts: accounts}
}

// Route reads the curve fresh. A completed curve means liquidity migrated to
// the pool venue. Missing or malformed curves fail with errs.ErrNotFound.
func (r *Router) Route(ctx context.Context, mint solana.PublicKey) (*Route, error) {
	state, err := pumpfun.FetchCurveState(ctx, r.accounts, mint)
	if err != nil {
		return nil, err
	}
	if state.Complete {
		return &Route{Venue: VenuePool, Curve: state}, nil
	}
	return &Route{Venue: VenueCurve, Curve: state}, nil
}
