package blockchain

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/rpc"
)

var (
	// ErrReverted is returned when the contract rejected a call or a
	// transaction estimate. It is a logical answer, not a transport failure.
	ErrReverted = errors.New("execution reverted")
	// ErrNoCode is returned when a call returned no data for a method that
	// declares outputs, which means there is no contract at the address.
	ErrNoCode = errors.New("no contract code at address")
	// ErrNotView is returned by Call for state-mutating methods.
	ErrNotView = errors.New("method is not read-only")
	// ErrViewMethod is returned by Transact for read-only methods.
	ErrViewMethod = errors.New("method is read-only")
	// ErrUnknownMethod is returned for methods missing from the ABI fragment.
	ErrUnknownMethod = errors.New("method not in ABI fragment")
)

// Reason classifies an RPCError.
type Reason uint8

const (
	// Timeout means the attempt (or the caller's deadline) expired.
	Timeout Reason = iota + 1
	// Unreachable means the endpoint could not be reached or answered with
	// a transport or server-side failure.
	Unreachable
	// Malformed means the endpoint answered with data that does not decode
	// against the ABI fragment.
	Malformed
)

func (r Reason) String() string {
	switch r {
	case Timeout:
		return "timeout"
	case Unreachable:
		return "unreachable"
	case Malformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// RPCError is a transport-level failure of a contract call. Reads are
// retried on Timeout and Unreachable; writes never are.
type RPCError struct {
	Reason   Reason
	ChainID  uint64
	Contract string
	Method   string
	Err      error
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc %s: chain %d %s.%s: %v", e.Reason, e.ChainID, e.Contract, e.Method, e.Err)
}

func (e *RPCError) Unwrap() error { return e.Err }

// Retryable reports whether a read that failed this way may be retried.
func (e *RPCError) Retryable() bool {
	return e.Reason == Timeout || e.Reason == Unreachable
}

// IsTransport reports whether err means the answer could not be determined
// (as opposed to the contract answering negatively or not being configured).
func IsTransport(err error) bool {
	var re *RPCError
	return errors.As(err, &re)
}

// classify maps a backend error to the SDK taxonomy.
func classify(err error, chainID uint64, contract, method string) error {
	if err == nil {
		return nil
	}
	if isRevert(err) {
		return fmt.Errorf("%s.%s: %w: %v", contract, method, ErrReverted, err)
	}
	reason := Unreachable
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		reason = Timeout
	}
	return &RPCError{Reason: reason, ChainID: chainID, Contract: contract, Method: method, Err: err}
}

// isRevert detects execution reverts reported by the node. Geth reports
// them as JSON-RPC error code 3; other clients only put it in the message.
func isRevert(err error) bool {
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) && rpcErr.ErrorCode() == 3 {
		return true
	}
	return strings.Contains(err.Error(), "execution reverted")
}
