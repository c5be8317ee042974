package pumpfun

import (
	"bytes"
	"context"
	"encoding/binary"

	"github.com/aman-zulfiqar/solana-auto-exit/internal/address"
	"github.com/aman-zulfiqar/solana-auto-exit/internal/errs"
	"github.com/aman-zulfiqar/solana-auto-exit/internal/rpc"
	"github.com/gagliardetto/solana-go"
)

// AccountReader reads raw on-chain accounts.
type AccountReader interface {
	GetAccountInfo(ctx context.Context, address solana.PublicKey) (*rpc.AccountInfo, error)
}

// CurveState is the bonding curve account for a mint, read fresh per attempt.
type CurveState struct {
	Mint              solana.PublicKey
	Curve             solana.PublicKey
	CurveTokenAccount solana.PublicKey

	VirtualTokenReserves uint64
	VirtualSolReserves   uint64
	RealTokenReserves    uint64
	RealSolReserves      uint64
	TotalSupply          uint64
	Complete             bool
	Creator              solana.PublicKey
}

// curveLayout mirrors the on-chain account prefix; trailing bytes are ignored.
type curveLayout struct {
	Discriminator        [8]byte
	VirtualTokenReserves uint64
	VirtualSolReserves   uint64
	RealTokenReserves    uint64
	RealSolReserves      uint64
	TokenTotalSupply     uint64
	Complete             uint8
	Creator              [32]byte
}

// CurveLayoutSize is the minimum account size DecodeCurveState accepts.
const CurveLayoutSize = 8 + 5*8 + 1 + 32

// CurveAccounts derives the bonding curve and its token account for mint.
func CurveAccounts(mint solana.PublicKey) (curve, curveTokenAccount solana.PublicKey, err error) {
	d, err := address.Derive(SeedBondingCurve, mint, ProgramID)
	if err != nil {
		return solana.PublicKey{}, solana.PublicKey{}, err
	}
	ata, err := address.AssociatedTokenAddress(d.Address, mint)
	if err != nil {
		return solana.PublicKey{}, solana.PublicKey{}, err
	}
	return d.Address, ata, nil
}

// CreatorVault derives the creator fee vault the sell instruction pays into.
func CreatorVault(creator solana.PublicKey) (solana.PublicKey, error) {
	d, err := address.Derive(SeedCreatorVault, creator, ProgramID)
	if err != nil {
		return solana.PublicKey{}, err
	}
	return d.Address, nil
}

// DecodeCurveState parses bonding curve account bytes.
func DecodeCurveState(data []byte) (*CurveState, error) {
	if len(data) < CurveLayoutSize {
		return nil, errs.Parse("bonding curve", nil)
	}

	var raw curveLayout
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &raw); err != nil {
		return nil, errs.Parse("bonding curve", err)
	}

	return &CurveState{
		VirtualTokenReserves: raw.VirtualTokenReserves,
		VirtualSolReserves:   raw.VirtualSolReserves,
		RealTokenReserves:    raw.RealTokenReserves,
		RealSolReserves:      raw.RealSolReserves,
		TotalSupply:          raw.TokenTotalSupply,
		Complete:             raw.Complete != 0,
		Creator:              solana.PublicKeyFromBytes(raw.Creator[:]),
	}, nil
}

// FetchCurveState reads and decodes the bonding curve for mint.
// A missing or malformed account yields errs.ErrNotFound.
func FetchCurveState(ctx context.Context, accounts AccountReader, mint solana.PublicKey) (*CurveState, error) {
	curve, curveATA, err := CurveAccounts(mint)
	if err != nil {
		return nil, err
	}

	info, err := accounts.GetAccountInfo(ctx, curve)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, errs.NotFound("bonding curve %s for mint %s", curve, mint)
	}
	if !info.Owner.Equals(ProgramID) {
		return nil, errs.Parse("bonding curve owner "+info.Owner.String(), nil)
	}

	state, err := DecodeCurveState(info.Data)
	if err != nil {
		return nil, err
	}
	state.Mint = mint
	state.Curve = curve
	state.CurveTokenAccount = curveATA
	return state, nil
}

// TokenPrice is the spot price in SOL per whole token.
func (s *CurveState) TokenPrice() (float64, error) {
	if err := s.checkReserves(); err != nil {
		return 0, err
	}
	return (float64(s.VirtualSolReserves) / solDecimal) / (float64(s.VirtualTokenReserves) / tokenDecimal), nil
}

func (s *CurveState) checkReserves() error {
	if s.VirtualSolReserves == 0 || s.VirtualTokenReserves == 0 {
		return errs.InvalidInput("bonding curve %s has zero reserves", s.Curve)
	}
	return nil
}
