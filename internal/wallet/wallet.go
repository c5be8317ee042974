package wallet

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Sign signs tx with the payer key and any extra keys the message requires,
// such as a temporary wrapped-SOL account.
func (w *Wallet) Sign(tx *solana.Transaction, extra ...solana.PrivateKey) error {
	_, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(w.pub) {
			return &w.priv
		}
		for i := range extra {
			if extra[i].PublicKey().Equals(key) {
				return &extra[i]
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to sign transaction: %w", err)
	}
	return nil
}
