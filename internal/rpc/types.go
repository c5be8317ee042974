package rpc

import (
	"errors"
	"fmt"
	"math"

	"github.com/gagliardetto/solana-go"
)

// ErrTransactionNotFound is returned by GetTransaction while the signature
// is not yet visible to the node.
var ErrTransactionNotFound = errors.New("transaction not found")

// RPCError represents a JSON-RPC error response
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// AccountInfo is the decoded value of getAccountInfo.
type AccountInfo struct {
	Owner      solana.PublicKey
	Lamports   uint64
	Executable bool
	Data       []byte
}

// Asset is one entry of a DAS getAssetsByOwner page.
type Asset struct {
	ID        string          `json:"id"`
	Interface string          `json:"interface"`
	TokenInfo *AssetTokenInfo `json:"token_info,omitempty"`
}

// AssetTokenInfo carries the fungible part of a DAS asset.
type AssetTokenInfo struct {
	Symbol   string  `json:"symbol"`
	Balance  float64 `json:"balance"`
	Decimals int     `json:"decimals"`
}

// UIBalance converts the raw DAS balance to whole tokens.
func (t *AssetTokenInfo) UIBalance() float64 {
	if t == nil {
		return 0
	}
	return t.Balance / math.Pow10(t.Decimals)
}

// TokenAmount represents token balance information
type TokenAmount struct {
	Amount         string   `json:"amount"`
	Decimals       int      `json:"decimals"`
	UIAmountString string   `json:"uiAmountString"`
	UIAmount       *float64 `json:"uiAmount"`
}

// TokenAccount is a parsed SPL token account held by an owner.
type TokenAccount struct {
	Address  solana.PublicKey
	Mint     solana.PublicKey
	Program  solana.PublicKey // owning token program; zero if the node omitted it
	Amount   uint64
	Decimals int
	UIAmount float64
}

// TransactionMeta contains metadata about a transaction
type TransactionMeta struct {
	Err interface{} `json:"err"`
	Fee uint64      `json:"fee"`
}

// TransactionResult contains the confirmed transaction data we use
type TransactionResult struct {
	Slot      uint64           `json:"slot"`
	BlockTime *int64           `json:"blockTime"`
	Meta      *TransactionMeta `json:"meta"`
}

// TransactionStatus is the typed outcome of a getTransaction lookup.
type TransactionStatus struct {
	Slot   uint64
	Err    interface{}
	FeeSOL float64
}

// Failed reports whether the transaction landed with an error.
func (s *TransactionStatus) Failed() bool {
	return s.Err != nil
}

// SendOptions configures transaction sending behavior
type SendOptions struct {
	SkipPreflight       bool
	PreflightCommitment string
	MaxRetries          *int
}

// DefaultSendOptions returns recommended send settings
func DefaultSendOptions() SendOptions {
	maxRetries := 3
	return SendOptions{
		SkipPreflight:       false,
		PreflightCommitment: "processed",
		MaxRetries:          &maxRetries,
	}
}

// SimulationResult contains simulation output
type SimulationResult struct {
	Success       bool
	Error         string
	Logs          []string
	UnitsConsumed uint64
}
