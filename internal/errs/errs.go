package errs

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by every stage of the sell pipeline.
var (
	// ErrNotFound: curve, pool or account state is missing. Retried on a later scan.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput: percentage out of range, zero balance, zero reserves. Not retried.
	ErrInvalidInput = errors.New("invalid input")

	// ErrRPC: the network rejected a request or submission.
	ErrRPC = errors.New("rpc error")

	// ErrConfirmationUnknown: status never resolved within the retry budget.
	ErrConfirmationUnknown = errors.New("confirmation unknown")

	// ErrZeroBalance: the wallet holds nothing left to sell for a mint.
	ErrZeroBalance = fmt.Errorf("zero balance: %w", ErrInvalidInput)

	// ErrParseFailure: account bytes do not match the expected layout.
	// It wraps ErrNotFound because the account may simply not exist yet.
	ErrParseFailure = fmt.Errorf("parse failure: %w", ErrNotFound)
)

// NotFound wraps ErrNotFound with context.
func NotFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// InvalidInput wraps ErrInvalidInput with context.
func InvalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// RPC wraps a transport or JSON-RPC failure as ErrRPC.
func RPC(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrRPC, op, err)
}

// Parse wraps a decoding failure as ErrParseFailure.
func Parse(what string, err error) error {
	if err == nil {
		return fmt.Errorf("%w: %s", ErrParseFailure, what)
	}
	return fmt.Errorf("%w: %s: %w", ErrParseFailure, what, err)
}

// Kind returns a short label for logs and persisted outcomes.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrParseFailure):
		return "parse_failure"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrZeroBalance):
		return "zero_balance"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrConfirmationUnknown):
		return "unknown"
	case errors.Is(err, ErrRPC):
		return "rpc_error"
	default:
		return "internal"
	}
}

// Retryable reports whether a later scan cycle may attempt the token again.
// Unknown confirmations are excluded: a duplicate sell could double-spend.
func Retryable(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrRPC)
}
