package swapengine

import (
	"context"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/aman-zulfiqar/solana-auto-exit/internal/errs"
	"github.com/aman-zulfiqar/solana-auto-exit/internal/rpc"
	"github.com/aman-zulfiqar/solana-auto-exit/internal/solanaix"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// transferIx is a system transfer, the smallest instruction that compiles.
func transferIx(from, to solana.PublicKey, lamports uint64) solana.Instruction {
	data := make([]byte, 12)
	binary.LittleEndian.PutUint32(data[0:4], 2)
	binary.LittleEndian.PutUint64(data[4:12], lamports)
	return solana.NewInstruction(solana.SystemProgramID, []*solana.AccountMeta{
		{PublicKey: from, IsSigner: true, IsWritable: true},
		{PublicKey: to, IsWritable: true},
	}, data)
}

func transferPlan(payer solana.PublicKey) *solanaix.Plan {
	return &solanaix.Plan{
		Instructions: []solana.Instruction{transferIx(payer, randKey(), 1)},
		Venue:        "test",
		Mint:         randKey(),
	}
}

func sellOrder() *SwapOrder {
	return &SwapOrder{Side: SideSell, Mint: randKey(), Percentage: 100}
}

func TestExecuteConfirmsAfterNotFound(t *testing.T) {
	chain := newFakeChain()
	chain.confirmAfter(2)
	w := testWallet()
	ex := NewExecutor(chain, w, ExecutorConfig{Policy: fastPolicy(20)})

	result := ex.Execute(context.Background(), transferPlan(w.PublicKey()), sellOrder())

	assert.Equal(t, OutcomeConfirmed, result.Outcome)
	assert.Equal(t, 3, result.Attempts)
	assert.Equal(t, 3, chain.lookups)
	assert.Equal(t, uint64(42), result.Slot)
	assert.InDelta(t, 0.000005, result.FeeSOL, 1e-12)
	assert.NotEmpty(t, result.Signature)
	assert.NoError(t, result.Err())
}

func TestExecuteFailedStopsPolling(t *testing.T) {
	chain := newFakeChain()
	chain.statuses = []statusReply{
		{status: &rpc.TransactionStatus{Slot: 7, Err: map[string]interface{}{"InstructionError": []interface{}{2, "Custom"}}}},
	}
	w := testWallet()
	ex := NewExecutor(chain, w, ExecutorConfig{Policy: fastPolicy(20)})

	result := ex.Execute(context.Background(), transferPlan(w.PublicKey()), sellOrder())

	assert.Equal(t, OutcomeFailed, result.Outcome)
	assert.Equal(t, 1, result.Attempts)
	assert.Equal(t, 1, chain.lookups)
	assert.Contains(t, result.Reason, "InstructionError")
	assert.Error(t, result.Err())
	assert.False(t, errors.Is(result.Err(), errs.ErrConfirmationUnknown))
	assert.ErrorIs(t, result.Err(), ErrTransactionFailed)
	assert.False(t, errors.Is(result.Err(), errs.ErrRPC))
}

func TestExecuteUnknownAfterBudget(t *testing.T) {
	chain := newFakeChain()
	w := testWallet()
	ex := NewExecutor(chain, w, ExecutorConfig{Policy: fastPolicy(20)})

	result := ex.Execute(context.Background(), transferPlan(w.PublicKey()), sellOrder())

	assert.Equal(t, OutcomeUnknown, result.Outcome)
	assert.Equal(t, 20, result.Attempts)
	assert.Equal(t, 20, chain.lookups)
	assert.ErrorIs(t, result.Err(), errs.ErrConfirmationUnknown)
	assert.Contains(t, result.Reason, "20 attempts")
}

func TestExecuteTransientErrorConsumesAttempt(t *testing.T) {
	chain := newFakeChain()
	chain.statuses = []statusReply{{err: errs.RPC("getTransaction", errors.New("502 bad gateway"))}}
	chain.confirmAfter(0)
	w := testWallet()
	ex := NewExecutor(chain, w, ExecutorConfig{Policy: fastPolicy(5)})

	result := ex.Execute(context.Background(), transferPlan(w.PublicKey()), sellOrder())

	assert.Equal(t, OutcomeConfirmed, result.Outcome)
	assert.Equal(t, 2, result.Attempts)
}

func TestExecuteSubmitRejected(t *testing.T) {
	chain := newFakeChain()
	chain.sendErr = errs.RPC("sendTransaction", errors.New("blockhash not found"))
	w := testWallet()
	ex := NewExecutor(chain, w, ExecutorConfig{Policy: fastPolicy(20)})

	result := ex.Execute(context.Background(), transferPlan(w.PublicKey()), sellOrder())

	assert.Equal(t, OutcomeFailed, result.Outcome)
	assert.Empty(t, result.Signature)
	assert.Zero(t, chain.lookups)
	assert.Contains(t, result.Reason, "blockhash not found")

	err := result.Err()
	assert.ErrorIs(t, err, errs.ErrRPC)
	assert.Equal(t, "rpc_error", errs.Kind(err))
	assert.True(t, errs.Retryable(err))
	assert.False(t, errors.Is(err, ErrTransactionFailed))
}

func TestExecuteSignsExtraSigners(t *testing.T) {
	chain := newFakeChain()
	chain.confirmAfter(0)
	w := testWallet()
	ex := NewExecutor(chain, w, ExecutorConfig{Policy: fastPolicy(3)})

	temp := solana.NewWallet().PrivateKey
	plan := &solanaix.Plan{
		Instructions: []solana.Instruction{
			solanaix.NewCreateAccountIx(w.PublicKey(), temp.PublicKey(), 2_039_280, solanaix.TokenAccountSize, solana.TokenProgramID),
		},
		Signers: []solana.PrivateKey{temp},
	}

	result := ex.Execute(context.Background(), plan, sellOrder())
	require.Equal(t, OutcomeConfirmed, result.Outcome)

	require.Len(t, chain.sent, 1)
	tx := chain.sent[0]
	require.Len(t, tx.Signatures, 2)
	assert.Equal(t, w.PublicKey(), tx.Message.AccountKeys[0])
	assert.NoError(t, tx.VerifySignatures())
}

func TestExecuteMissingExtraSigner(t *testing.T) {
	chain := newFakeChain()
	w := testWallet()
	ex := NewExecutor(chain, w, ExecutorConfig{Policy: fastPolicy(3)})

	temp := solana.NewWallet().PrivateKey
	plan := &solanaix.Plan{
		Instructions: []solana.Instruction{
			solanaix.NewCreateAccountIx(w.PublicKey(), temp.PublicKey(), 1, solanaix.TokenAccountSize, solana.TokenProgramID),
		},
	}

	result := ex.Execute(context.Background(), plan, sellOrder())
	assert.Equal(t, OutcomeFailed, result.Outcome)
	assert.Empty(t, chain.sent)
}

func TestCompileRejectsEmpty(t *testing.T) {
	ex := NewExecutor(newFakeChain(), testWallet(), ExecutorConfig{})
	_, err := ex.Compile(randKey(), nil, solana.Hash{})
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestConfirmHonoursCancel(t *testing.T) {
	ex := NewExecutor(newFakeChain(), testWallet(), ExecutorConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	conf := ex.Confirm(ctx, "sig", fastPolicy(20))
	assert.Equal(t, OutcomeUnknown, conf.Outcome)
	assert.Zero(t, conf.Attempts)
}
