package wallet

import (
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

type WalletConfig struct {
	PrivateKey string // base58-encoded 64-byte key OR solana-keygen JSON array

	// ExpectedAddress, when set, must match the key's public key.
	ExpectedAddress string
}

// Wallet is the payer key. It signs but never talks to the network.
type Wallet struct {
	priv solana.PrivateKey
	pub  solana.PublicKey
}

func NewWallet(cfg WalletConfig) (*Wallet, error) {
	if strings.TrimSpace(cfg.PrivateKey) == "" {
		return nil, fmt.Errorf("wallet: PrivateKey is required")
	}

	priv, err := parsePrivateKey(cfg.PrivateKey)
	if err != nil {
		return nil, err
	}
	pub := priv.PublicKey()

	if want := strings.TrimSpace(cfg.ExpectedAddress); want != "" && want != pub.String() {
		return nil, fmt.Errorf("wallet: key belongs to %s, expected %s", pub, want)
	}

	return &Wallet{priv: priv, pub: pub}, nil
}

// FromPrivateKey wraps an already decoded key.
func FromPrivateKey(priv solana.PrivateKey) *Wallet {
	return &Wallet{priv: priv, pub: priv.PublicKey()}
}

func (w *Wallet) Address() string             { return w.pub.String() }
func (w *Wallet) PublicKey() solana.PublicKey { return w.pub }

func parsePrivateKey(s string) (solana.PrivateKey, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "[") {
		var ints []int
		if err := json.Unmarshal([]byte(s), &ints); err != nil {
			return nil, fmt.Errorf("wallet: invalid JSON private key: %w", err)
		}
		b := make([]byte, len(ints))
		for i, v := range ints {
			if v < 0 || v > 255 {
				return nil, fmt.Errorf("wallet: invalid byte at %d: %d", i, v)
			}
			b[i] = byte(v)
		}
		if len(b) != ed25519.PrivateKeySize {
			return nil, fmt.Errorf("wallet: expected %d bytes, got %d", ed25519.PrivateKeySize, len(b))
		}
		return solana.PrivateKey(b), nil
	}

	raw, err := base58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("wallet: invalid base58 private key: %w", err)
	}
	if len(raw) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("wallet: expected %d bytes, got %d", ed25519.PrivateKeySize, len(raw))
	}
	return solana.PrivateKey(raw), nil
}
