package errs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFailureIsNotFound(t *testing.T) {
	err := Parse("bonding curve", errors.New("short buffer"))

	assert.ErrorIs(t, err, ErrParseFailure)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "parse_failure", Kind(err))
	assert.True(t, Retryable(err))
}

func TestKind(t *testing.T) {
	assert.Equal(t, "", Kind(nil))
	assert.Equal(t, "not_found", Kind(NotFound("pool for %s", "abc")))
	assert.Equal(t, "invalid_input", Kind(InvalidInput("percentage %d", 0)))
	assert.Equal(t, "rpc_error", Kind(RPC("sendTransaction", errors.New("blockhash not found"))))
	assert.Equal(t, "unknown", Kind(ErrConfirmationUnknown))
	assert.Equal(t, "zero_balance", Kind(ErrZeroBalance))
	assert.Equal(t, "internal", Kind(errors.New("boom")))
}

func TestRetryable(t *testing.T) {
	assert.True(t, Retryable(NotFound("curve")))
	assert.True(t, Retryable(RPC("getAccountInfo", errors.New("503"))))
	assert.False(t, Retryable(InvalidInput("zero balance")))
	assert.False(t, Retryable(ErrConfirmationUnknown))
	assert.False(t, Retryable(ErrZeroBalance))
	assert.ErrorIs(t, ErrZeroBalance, ErrInvalidInput)
}

func TestRPCKeepsCause(t *testing.T) {
	cause := errors.New("insufficient funds")
	err := RPC("sendTransaction", cause)

	assert.ErrorIs(t, err, ErrRPC)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "sendTransaction")
}
