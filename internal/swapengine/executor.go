package swapengine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aman-zulfiqar/solana-auto-exit/internal/errs"
	"github.com/aman-zulfiqar/solana-auto-exit/internal/rpc"
	"github.com/aman-zulfiqar/solana-auto-exit/internal/solanaix"
	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
)

// ChainClient is the submission side of the RPC client.
type ChainClient interface {
	GetLatestBlockhash(ctx context.Context) (solana.Hash, error)
	SendTransaction(ctx context.Context, tx *solana.Transaction, opts rpc.SendOptions) (string, error)
	SimulateTransaction(ctx context.Context, tx *solana.Transaction) (*rpc.SimulationResult, error)
	GetTransaction(ctx context.Context, signature string) (*rpc.TransactionStatus, error)
}

// Signer holds the payer key.
type Signer interface {
	PublicKey() solana.PublicKey
	Sign(tx *solana.Transaction, extra ...solana.PrivateKey) error
}

type ExecutorConfig struct {
	Policy      RetryPolicy
	SendOptions rpc.SendOptions
	Simulate    bool // run simulateTransaction before every send
	Logger      *logrus.Logger
}

// Confirmation is the verdict of polling one signature.
type Confirmation struct {
	Outcome  Outcome
	Reason   string
	Attempts int
	FeeSOL   float64
	Slot     uint64
}

// Executor compiles, signs, submits and confirms transactions for one wallet.
// Execute calls are serialized: each consumes the latest blockhash and the
// same payer key.
type Executor struct {
	mu     sync.Mutex
	chain  ChainClient
	signer Signer
	cfg    ExecutorConfig
	logger *logrus.Logger
}

func NewExecutor(chain ChainClient, signer Signer, cfg ExecutorConfig) *Executor {
	if cfg.Policy.MaxAttempts == 0 {
		cfg.Policy = DefaultRetryPolicy()
	}
	if cfg.SendOptions.PreflightCommitment == "" {
		cfg.SendOptions = rpc.DefaultSendOptions()
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &Executor{
		chain:  chain,
		signer: signer,
		cfg:    cfg,
		logger: cfg.Logger,
	}
}

// Payer returns the fee payer every transaction is compiled for.
func (e *Executor) Payer() solana.PublicKey {
	return e.signer.PublicKey()
}

// Compile builds an unsigned transaction.
func (e *Executor) Compile(payer solana.PublicKey, ixs []solana.Instruction, blockhash solana.Hash) (*solana.Transaction, error) {
	if len(ixs) == 0 {
		return nil, errs.InvalidInput("no instructions to compile")
	}
	tx, err := solana.NewTransaction(ixs, blockhash, solana.TransactionPayer(payer))
	if err != nil {
		return nil, fmt.Errorf("failed to compile transaction: %w", err)
	}
	return tx, nil
}

// Submit signs tx with the payer plus extra signers and sends it.
// Node rejections come back as errs.ErrRPC.
func (e *Executor) Submit(ctx context.Context, tx *solana.Transaction, extra []solana.PrivateKey) (string, error) {
	if err := e.signer.Sign(tx, extra...); err != nil {
		return "", err
	}

	if e.cfg.Simulate {
		if _, err := e.chain.SimulateTransaction(ctx, tx); err != nil {
			return "", fmt.Errorf("%w: simulate: %w", errs.ErrRPC, err)
		}
	}

	return e.chain.SendTransaction(ctx, tx, e.cfg.SendOptions)
}

// Confirm polls the signature under policy. Not-found and transient RPC
// errors consume one attempt; a landed transaction ends polling at once.
func (e *Executor) Confirm(ctx context.Context, signature string, policy RetryPolicy) *Confirmation {
	conf := &Confirmation{Outcome: OutcomeUnknown}

	attempts, err := policy.Poll(ctx, func(ctx context.Context, attempt int) bool {
		status, err := e.chain.GetTransaction(ctx, signature)
		if err != nil {
			if !errors.Is(err, rpc.ErrTransactionNotFound) {
				e.logger.WithError(err).WithFields(logrus.Fields{
					"signature": signature,
					"attempt":   attempt,
				}).Debug("transaction lookup failed")
			}
			return false
		}

		conf.Slot = status.Slot
		conf.FeeSOL = status.FeeSOL
		if status.Failed() {
			conf.Outcome = OutcomeFailed
			conf.Reason = fmt.Sprintf("transaction error: %v", status.Err)
		} else {
			conf.Outcome = OutcomeConfirmed
		}
		return true
	})
	conf.Attempts = attempts

	if err != nil && conf.Outcome == OutcomeUnknown {
		conf.Reason = fmt.Sprintf("no status after %d attempts: %v", attempts, err)
	}
	return conf
}

// Execute runs a plan through Built, Submitted and a terminal outcome.
// It never returns an error: every failure is carried in the result.
func (e *Executor) Execute(ctx context.Context, plan *solanaix.Plan, order *SwapOrder) *SwapResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	result := &SwapResult{Order: order, Outcome: OutcomeFailed, StartedAt: start}
	finish := func() *SwapResult {
		result.CompletedAt = time.Now()
		result.Latency = result.CompletedAt.Sub(start)
		return result
	}

	blockhash, err := e.chain.GetLatestBlockhash(ctx)
	if err != nil {
		result.Reason = err.Error()
		result.Cause = err
		return finish()
	}

	tx, err := e.Compile(e.Payer(), plan.Instructions, blockhash)
	if err != nil {
		result.Reason = err.Error()
		result.Cause = err
		return finish()
	}

	sig, err := e.Submit(ctx, tx, plan.Signers)
	if err != nil {
		result.Reason = err.Error()
		result.Cause = err
		e.logger.WithError(err).WithField("mint", plan.Mint.String()).Warn("transaction rejected")
		return finish()
	}
	result.Signature = sig

	e.logger.WithFields(logrus.Fields{
		"mint":      plan.Mint.String(),
		"venue":     plan.Venue,
		"signature": sig,
	}).Info("transaction submitted")

	conf := e.Confirm(ctx, sig, e.cfg.Policy)
	result.Outcome = conf.Outcome
	result.Reason = conf.Reason
	result.Attempts = conf.Attempts
	result.FeeSOL = conf.FeeSOL
	result.Slot = conf.Slot

	return finish()
}
