package swapengine

import (
	"context"
	"encoding/binary"
	"sync"
	"testing"

	"github.com/aman-zulfiqar/solana-auto-exit/internal/errs"
	"github.com/aman-zulfiqar/solana-auto-exit/internal/models"
	"github.com/aman-zulfiqar/solana-auto-exit/internal/pumpfun"
	"github.com/aman-zulfiqar/solana-auto-exit/internal/raydium"
	"github.com/aman-zulfiqar/solana-auto-exit/internal/rpc"
	"github.com/aman-zulfiqar/solana-auto-exit/internal/wallet"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
)

type statusReply struct {
	status *rpc.TransactionStatus
	err    error
}

// fakeChain serves every read and write the engine and executor make.
type fakeChain struct {
	mu sync.Mutex

	accounts map[solana.PublicKey]*rpc.AccountInfo
	holdings map[solana.PublicKey]*rpc.TokenAccount
	vaults   map[solana.PublicKey]uint64
	lamports uint64

	sendErr  error
	sent     []*solana.Transaction
	statuses []statusReply
	lookups  int
}

func newFakeChain() *fakeChain {
	return &fakeChain{
		accounts: make(map[solana.PublicKey]*rpc.AccountInfo),
		holdings: make(map[solana.PublicKey]*rpc.TokenAccount),
		vaults:   make(map[solana.PublicKey]uint64),
		lamports: 5 * solana.LAMPORTS_PER_SOL,
	}
}

func (f *fakeChain) GetAccountInfo(_ context.Context, pk solana.PublicKey) (*rpc.AccountInfo, error) {
	return f.accounts[pk], nil
}

func (f *fakeChain) GetMinimumBalanceForRentExemption(_ context.Context, _ uint64) (uint64, error) {
	return 2_039_280, nil
}

func (f *fakeChain) GetTokenAccountBalance(_ context.Context, account solana.PublicKey) (uint64, error) {
	v, ok := f.vaults[account]
	if !ok {
		return 0, errs.NotFound("token account %s", account)
	}
	return v, nil
}

func (f *fakeChain) GetTokenBalance(_ context.Context, _, mint solana.PublicKey) (*rpc.TokenAccount, error) {
	h, ok := f.holdings[mint]
	if !ok {
		return nil, errs.NotFound("no token account for mint %s", mint)
	}
	return h, nil
}

func (f *fakeChain) GetBalance(_ context.Context, _ solana.PublicKey) (uint64, error) {
	return f.lamports, nil
}

func (f *fakeChain) GetLatestBlockhash(_ context.Context) (solana.Hash, error) {
	return solana.HashFromBytes(make([]byte, 32)), nil
}

func (f *fakeChain) SendTransaction(_ context.Context, tx *solana.Transaction, _ rpc.SendOptions) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return "", f.sendErr
	}
	f.sent = append(f.sent, tx)
	return tx.Signatures[0].String(), nil
}

func (f *fakeChain) SimulateTransaction(_ context.Context, _ *solana.Transaction) (*rpc.SimulationResult, error) {
	return &rpc.SimulationResult{Success: true}, nil
}

// GetTransaction replays statuses in order, then reports not found forever.
func (f *fakeChain) GetTransaction(_ context.Context, _ string) (*rpc.TransactionStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	if len(f.statuses) == 0 {
		return nil, rpc.ErrTransactionNotFound
	}
	next := f.statuses[0]
	f.statuses = f.statuses[1:]
	return next.status, next.err
}

func (f *fakeChain) confirmAfter(notFound int) {
	for i := 0; i < notFound; i++ {
		f.statuses = append(f.statuses, statusReply{err: rpc.ErrTransactionNotFound})
	}
	f.statuses = append(f.statuses, statusReply{status: &rpc.TransactionStatus{Slot: 42, FeeSOL: 0.000005}})
}

// setCurve stores a bonding curve account for mint.
func (f *fakeChain) setCurve(t *testing.T, mint solana.PublicKey, vtoken, vsol uint64, complete bool) {
	t.Helper()
	curve, _, err := pumpfun.CurveAccounts(mint)
	require.NoError(t, err)

	data := make([]byte, pumpfun.CurveLayoutSize+16)
	binary.LittleEndian.PutUint64(data[8:], vtoken)
	binary.LittleEndian.PutUint64(data[16:], vsol)
	binary.LittleEndian.PutUint64(data[24:], vtoken/2)
	binary.LittleEndian.PutUint64(data[32:], vsol/2)
	binary.LittleEndian.PutUint64(data[40:], 1_000_000_000_000_000)
	if complete {
		data[48] = 1
	}
	creator := solana.NewWallet().PublicKey()
	copy(data[49:81], creator[:])

	f.accounts[curve] = &rpc.AccountInfo{Owner: pumpfun.ProgramID, Data: data}
}

func (f *fakeChain) hold(mint solana.PublicKey, raw uint64, decimals int, ui float64) {
	f.holdings[mint] = &rpc.TokenAccount{
		Address:  solana.NewWallet().PublicKey(),
		Mint:     mint,
		Amount:   raw,
		Decimals: decimals,
		UIAmount: ui,
	}
}

func (f *fakeChain) sentPrograms(i int) []solana.PublicKey {
	tx := f.sent[i]
	out := make([]solana.PublicKey, 0, len(tx.Message.Instructions))
	for _, ix := range tx.Message.Instructions {
		out = append(out, tx.Message.AccountKeys[ix.ProgramIDIndex])
	}
	return out
}

func randKey() solana.PublicKey {
	return solana.NewWallet().PublicKey()
}

func testPool(mint solana.PublicKey) raydium.PoolKeys {
	return raydium.PoolKeys{
		ID:               randKey(),
		ProgramID:        raydium.ProgramID,
		Authority:        randKey(),
		OpenOrders:       randKey(),
		TargetOrders:     randKey(),
		BaseMint:         mint,
		QuoteMint:        solana.SolMint,
		BaseVault:        randKey(),
		QuoteVault:       randKey(),
		BaseDecimals:     6,
		QuoteDecimals:    9,
		MarketProgramID:  randKey(),
		MarketID:         randKey(),
		MarketBids:       randKey(),
		MarketAsks:       randKey(),
		MarketEventQueue: randKey(),
		MarketBaseVault:  randKey(),
		MarketQuoteVault: randKey(),
		MarketAuthority:  randKey(),
	}
}

func testWallet() *wallet.Wallet {
	return wallet.FromPrivateKey(solana.NewWallet().PrivateKey)
}

func fastPolicy(attempts int) RetryPolicy {
	return RetryPolicy{MaxAttempts: attempts}
}

type recordingSink struct {
	mu       sync.Mutex
	outcomes []*models.SellOutcome
	err      error
}

func (s *recordingSink) RecordOutcome(_ context.Context, o *models.SellOutcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outcomes = append(s.outcomes, o)
	return s.err
}

type fakePrices struct {
	price  float64
	symbol string
	err    error
}

func (f *fakePrices) GetSpotPrice(context.Context, string) (float64, error) {
	return f.price, f.err
}

func (f *fakePrices) GetSymbol(context.Context, string) (string, string, error) {
	return f.symbol, "SOL", f.err
}
