package rpc

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"

	"github.com/aman-zulfiqar/solana-auto-exit/internal/errs"
	"github.com/gagliardetto/solana-go"
)

const defaultCommitment = "confirmed"

// GetAccountInfo fetches an account. A nil result with nil error means the
// account does not exist.
func (c *Client) GetAccountInfo(ctx context.Context, address solana.PublicKey) (*AccountInfo, error) {
	var resp struct {
		Result struct {
			Value *struct {
				Data       []string `json:"data"`
				Owner      string   `json:"owner"`
				Lamports   uint64   `json:"lamports"`
				Executable bool     `json:"executable"`
			} `json:"value"`
		} `json:"result"`
		Error *RPCError `json:"error"`
	}

	params := []any{
		address.String(),
		map[string]any{
			"encoding":   "base64",
			"commitment": defaultCommitment,
		},
	}

	if err := c.Call(ctx, "getAccountInfo", params, &resp); err != nil {
		return nil, errs.RPC("getAccountInfo", err)
	}
	if resp.Error != nil {
		return nil, errs.RPC("getAccountInfo", resp.Error)
	}

	v := resp.Result.Value
	if v == nil {
		return nil, nil
	}

	owner, err := solana.PublicKeyFromBase58(v.Owner)
	if err != nil {
		return nil, errs.Parse("account owner", err)
	}

	var data []byte
	if len(v.Data) > 0 {
		data, err = base64.StdEncoding.DecodeString(v.Data[0])
		if err != nil {
			return nil, errs.Parse("account data", err)
		}
	}

	return &AccountInfo{
		Owner:      owner,
		Lamports:   v.Lamports,
		Executable: v.Executable,
		Data:       data,
	}, nil
}

// GetAssetsByOwner returns the first DAS page (up to 1000 assets) including
// fungible tokens. Requires a DAS-capable endpoint (e.g. Helius).
func (c *Client) GetAssetsByOwner(ctx context.Context, owner string) ([]Asset, error) {
	var resp struct {
		Result struct {
			Total int     `json:"total"`
			Items []Asset `json:"items"`
		} `json:"result"`
		Error *RPCError `json:"error"`
	}

	params := map[string]any{
		"ownerAddress": owner,
		"page":         1,
		"limit":        1000,
		"displayOptions": map[string]any{
			"showFungible": true,
		},
	}

	if err := c.Call(ctx, "getAssetsByOwner", params, &resp); err != nil {
		return nil, errs.RPC("getAssetsByOwner", err)
	}
	if resp.Error != nil {
		return nil, errs.RPC("getAssetsByOwner", resp.Error)
	}

	return resp.Result.Items, nil
}

// GetLatestBlockhash fetches the most recent blockhash
func (c *Client) GetLatestBlockhash(ctx context.Context) (solana.Hash, error) {
	var resp struct {
		Result struct {
			Value struct {
				Blockhash            string `json:"blockhash"`
				LastValidBlockHeight uint64 `json:"lastValidBlockHeight"`
			} `json:"value"`
		} `json:"result"`
		Error *RPCError `json:"error"`
	}

	params := []any{
		map[string]any{"commitment": "processed"},
	}

	if err := c.Call(ctx, "getLatestBlockhash", params, &resp); err != nil {
		return solana.Hash{}, errs.RPC("getLatestBlockhash", err)
	}
	if resp.Error != nil {
		return solana.Hash{}, errs.RPC("getLatestBlockhash", resp.Error)
	}

	hash, err := solana.HashFromBase58(resp.Result.Value.Blockhash)
	if err != nil {
		return solana.Hash{}, errs.Parse("blockhash", err)
	}

	return hash, nil
}

// SendTransaction submits a signed transaction and returns its signature.
// A node-side rejection is returned as an *RPCError wrapped in errs.ErrRPC.
func (c *Client) SendTransaction(ctx context.Context, tx *solana.Transaction, opts SendOptions) (string, error) {
	txBytes, err := tx.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("failed to serialize transaction: %w", err)
	}

	cfg := map[string]any{
		"encoding":            "base64",
		"skipPreflight":       opts.SkipPreflight,
		"preflightCommitment": opts.PreflightCommitment,
	}
	if opts.MaxRetries != nil {
		cfg["maxRetries"] = *opts.MaxRetries
	}

	params := []any{
		base64.StdEncoding.EncodeToString(txBytes),
		cfg,
	}

	var resp struct {
		Result string    `json:"result"`
		Error  *RPCError `json:"error"`
	}

	if err := c.Call(ctx, "sendTransaction", params, &resp); err != nil {
		return "", errs.RPC("sendTransaction", err)
	}
	if resp.Error != nil {
		return "", errs.RPC("sendTransaction", resp.Error)
	}

	return resp.Result, nil
}

// SimulateTransaction simulates a signed transaction
func (c *Client) SimulateTransaction(ctx context.Context, tx *solana.Transaction) (*SimulationResult, error) {
	txBytes, err := tx.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize transaction: %w", err)
	}

	var resp struct {
		Result struct {
			Value struct {
				Err           interface{} `json:"err"`
				Logs          []string    `json:"logs"`
				UnitsConsumed uint64      `json:"unitsConsumed,omitempty"`
			} `json:"value"`
		} `json:"result"`
		Error *RPCError `json:"error"`
	}

	params := []any{
		base64.StdEncoding.EncodeToString(txBytes),
		map[string]any{
			"encoding":   "base64",
			"commitment": "processed",
		},
	}

	if err := c.Call(ctx, "simulateTransaction", params, &resp); err != nil {
		return nil, errs.RPC("simulateTransaction", err)
	}
	if resp.Error != nil {
		return nil, errs.RPC("simulateTransaction", resp.Error)
	}

	result := &SimulationResult{
		Logs:          resp.Result.Value.Logs,
		UnitsConsumed: resp.Result.Value.UnitsConsumed,
		Success:       resp.Result.Value.Err == nil,
	}
	if !result.Success {
		result.Error = fmt.Sprintf("%v", resp.Result.Value.Err)
		return result, fmt.Errorf("simulation failed: %s", result.Error)
	}

	return result, nil
}

// GetTransaction looks up a submitted transaction. It returns
// ErrTransactionNotFound while the node has not seen it yet.
func (c *Client) GetTransaction(ctx context.Context, signature string) (*TransactionStatus, error) {
	params := []interface{}{
		signature,
		map[string]interface{}{
			"encoding":                       "json",
			"commitment":                     defaultCommitment,
			"maxSupportedTransactionVersion": 0,
		},
	}

	var resp struct {
		Result *TransactionResult `json:"result"`
		Error  *RPCError          `json:"error"`
	}
	if err := c.Call(ctx, "getTransaction", params, &resp); err != nil {
		return nil, errs.RPC("getTransaction", err)
	}
	if resp.Error != nil {
		return nil, errs.RPC("getTransaction", resp.Error)
	}
	if resp.Result == nil || resp.Result.Meta == nil {
		return nil, ErrTransactionNotFound
	}

	return &TransactionStatus{
		Slot:   resp.Result.Slot,
		Err:    resp.Result.Meta.Err,
		FeeSOL: float64(resp.Result.Meta.Fee) / float64(solana.LAMPORTS_PER_SOL),
	}, nil
}

// GetMinimumBalanceForRentExemption returns the rent-exempt lamports for an
// account of the given size.
func (c *Client) GetMinimumBalanceForRentExemption(ctx context.Context, size uint64) (uint64, error) {
	var resp struct {
		Result uint64    `json:"result"`
		Error  *RPCError `json:"error"`
	}

	if err := c.Call(ctx, "getMinimumBalanceForRentExemption", []any{size}, &resp); err != nil {
		return 0, errs.RPC("getMinimumBalanceForRentExemption", err)
	}
	if resp.Error != nil {
		return 0, errs.RPC("getMinimumBalanceForRentExemption", resp.Error)
	}
	return resp.Result, nil
}

// GetBalance returns the lamport balance of an account.
func (c *Client) GetBalance(ctx context.Context, address solana.PublicKey) (uint64, error) {
	var resp struct {
		Result struct {
			Value uint64 `json:"value"`
		} `json:"result"`
		Error *RPCError `json:"error"`
	}

	params := []any{
		address.String(),
		map[string]any{"commitment": defaultCommitment},
	}

	if err := c.Call(ctx, "getBalance", params, &resp); err != nil {
		return 0, errs.RPC("getBalance", err)
	}
	if resp.Error != nil {
		return 0, errs.RPC("getBalance", resp.Error)
	}
	return resp.Result.Value, nil
}

// GetTokenAccountsByOwner lists the owner's token accounts for a mint.
func (c *Client) GetTokenAccountsByOwner(ctx context.Context, owner, mint solana.PublicKey) ([]TokenAccount, error) {
	var resp struct {
		Result struct {
			Value []struct {
				Pubkey  string `json:"pubkey"`
				Account struct {
					Owner string `json:"owner"`
					Data  struct {
						Parsed struct {
							Info struct {
								Mint        string      `json:"mint"`
								TokenAmount TokenAmount `json:"tokenAmount"`
							} `json:"info"`
						} `json:"parsed"`
					} `json:"data"`
				} `json:"account"`
			} `json:"value"`
		} `json:"result"`
		Error *RPCError `json:"error"`
	}

	params := []any{
		owner.String(),
		map[string]any{"mint": mint.String()},
		map[string]any{
			"encoding":   "jsonParsed",
			"commitment": defaultCommitment,
		},
	}

	if err := c.Call(ctx, "getTokenAccountsByOwner", params, &resp); err != nil {
		return nil, errs.RPC("getTokenAccountsByOwner", err)
	}
	if resp.Error != nil {
		return nil, errs.RPC("getTokenAccountsByOwner", resp.Error)
	}

	out := make([]TokenAccount, 0, len(resp.Result.Value))
	for _, v := range resp.Result.Value {
		info := v.Account.Data.Parsed.Info

		addr, err := solana.PublicKeyFromBase58(v.Pubkey)
		if err != nil {
			return nil, errs.Parse("token account address", err)
		}
		m, err := solana.PublicKeyFromBase58(info.Mint)
		if err != nil {
			return nil, errs.Parse("token account mint", err)
		}
		amount, err := strconv.ParseUint(info.TokenAmount.Amount, 10, 64)
		if err != nil {
			return nil, errs.Parse("token amount", err)
		}

		ta := TokenAccount{
			Address:  addr,
			Mint:     m,
			Amount:   amount,
			Decimals: info.TokenAmount.Decimals,
		}
		if v.Account.Owner != "" {
			if ta.Program, err = solana.PublicKeyFromBase58(v.Account.Owner); err != nil {
				return nil, errs.Parse("token account owner", err)
			}
		}
		if info.TokenAmount.UIAmount != nil {
			ta.UIAmount = *info.TokenAmount.UIAmount
		}
		out = append(out, ta)
	}

	return out, nil
}

// GetTokenBalance returns the owner's first token account for mint.
// errs.ErrNotFound is returned when the owner holds no account for it.
func (c *Client) GetTokenBalance(ctx context.Context, owner, mint solana.PublicKey) (*TokenAccount, error) {
	accounts, err := c.GetTokenAccountsByOwner(ctx, owner, mint)
	if err != nil {
		return nil, err
	}
	for i := range accounts {
		if accounts[i].Mint.Equals(mint) {
			return &accounts[i], nil
		}
	}
	return nil, errs.NotFound("token account for mint %s", mint)
}

// GetTokenAccountBalance returns the raw token amount held by a token account.
func (c *Client) GetTokenAccountBalance(ctx context.Context, account solana.PublicKey) (uint64, error) {
	var resp struct {
		Result struct {
			Context struct {
				Slot uint64 `json:"slot"`
			} `json:"context"`
			Value TokenAmount `json:"value"`
		} `json:"result"`
		Error *RPCError `json:"error"`
	}

	params := []any{
		account.String(),
		map[string]any{"commitment": defaultCommitment},
	}

	if err := c.Call(ctx, "getTokenAccountBalance", params, &resp); err != nil {
		return 0, errs.RPC("getTokenAccountBalance", err)
	}
	if resp.Error != nil {
		return 0, errs.RPC("getTokenAccountBalance", resp.Error)
	}

	amount, err := strconv.ParseUint(resp.Result.Value.Amount, 10, 64)
	if err != nil {
		return 0, errs.Parse("token account balance", err)
	}
	return amount, nil
}
