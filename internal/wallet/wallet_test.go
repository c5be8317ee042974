package wallet

import (
	"encoding/json"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWalletBase58(t *testing.T) {
	key := solana.NewWallet().PrivateKey

	w, err := NewWallet(WalletConfig{PrivateKey: base58.Encode(key)})
	require.NoError(t, err)
	assert.Equal(t, key.PublicKey(), w.PublicKey())
	assert.Equal(t, key.PublicKey().String(), w.Address())
}

func TestNewWalletJSONArray(t *testing.T) {
	key := solana.NewWallet().PrivateKey
	ints := make([]int, len(key))
	for i, b := range key {
		ints[i] = int(b)
	}
	raw, err := json.Marshal(ints)
	require.NoError(t, err)

	w, err := NewWallet(WalletConfig{PrivateKey: " " + string(raw) + "\n"})
	require.NoError(t, err)
	assert.Equal(t, key.PublicKey(), w.PublicKey())
}

func TestNewWalletExpectedAddress(t *testing.T) {
	key := solana.NewWallet().PrivateKey

	_, err := NewWallet(WalletConfig{PrivateKey: key.String(), ExpectedAddress: key.PublicKey().String()})
	require.NoError(t, err)

	_, err = NewWallet(WalletConfig{PrivateKey: key.String(), ExpectedAddress: solana.NewWallet().PublicKey().String()})
	assert.Error(t, err)
}

func TestNewWalletRejectsBadKeys(t *testing.T) {
	for _, in := range []string{"", "   ", "[1,2,3]", "[300]", "0OIl", base58.Encode([]byte("short"))} {
		_, err := NewWallet(WalletConfig{PrivateKey: in})
		assert.Error(t, err, "input %q", in)
	}
}

func TestSignWithExtraSigner(t *testing.T) {
	w := FromPrivateKey(solana.NewWallet().PrivateKey)
	extra := solana.NewWallet().PrivateKey

	ix := solana.NewInstruction(solana.SystemProgramID, solana.AccountMetaSlice{
		{PublicKey: w.PublicKey(), IsSigner: true, IsWritable: true},
		{PublicKey: extra.PublicKey(), IsSigner: true, IsWritable: true},
	}, []byte{0})
	tx, err := solana.NewTransaction([]solana.Instruction{ix}, solana.Hash{}, solana.TransactionPayer(w.PublicKey()))
	require.NoError(t, err)

	require.NoError(t, w.Sign(tx, extra))
	assert.Len(t, tx.Signatures, 2)

	// missing extra signer
	tx2, err := solana.NewTransaction([]solana.Instruction{ix}, solana.Hash{}, solana.TransactionPayer(w.PublicKey()))
	require.NoError(t, err)
	assert.Error(t, w.Sign(tx2))
}
