package blockchain

import (
	"context"
	"fmt"
	"time"

	"github.com/clubs-network/clubs-sdk-go/pkg/model"
	"github.com/ethereum/go-ethereum"
	"go.uber.org/zap"
)

// Call performs a read-only call of a logical contract on the client's
// network and returns the unpacked outputs.
func (c *ChainClient) Call(ctx context.Context, contract, method string, args ...any) ([]any, error) {
	d, err := c.registry.Resolve(contract, c.network.ChainID)
	if err != nil {
		return nil, err
	}
	return c.CallAt(ctx, d, method, args...)
}

// CallAt performs a read-only call against an explicit descriptor.
//
// Every attempt gets its own timeout derived from ctx, so a caller deadline
// shortens it. Timeouts and transport failures are retried up to MaxRetries
// times with exponential backoff; reverts and malformed answers are not.
func (c *ChainClient) CallAt(ctx context.Context, d model.ContractDescriptor, method string, args ...any) ([]any, error) {
	m, ok := d.ABI.Methods[method]
	if !ok {
		return nil, fmt.Errorf("%s.%s: %w", d.Name, method, ErrUnknownMethod)
	}
	if !m.IsConstant() {
		return nil, fmt.Errorf("%s.%s: %w", d.Name, method, ErrNotView)
	}
	input, err := d.ABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s.%s: %w", d.Name, method, err)
	}
	msg := ethereum.CallMsg{To: &d.Address, Data: input}

	var lastErr error
	for attempt := 0; attempt <= c.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := c.opts.BaseBackoff << (attempt - 1)
			zap.L().Debug("retrying view call",
				zap.Uint64("chainID", c.network.ChainID),
				zap.String("contract", d.Name),
				zap.String("method", method),
				zap.Int("attempt", attempt),
				zap.Duration("backoff", delay),
				zap.Error(lastErr))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, classify(ctx.Err(), c.network.ChainID, d.Name, method)
			}
		}

		out, err := c.callOnce(ctx, msg)
		if err != nil {
			lastErr = classify(err, c.network.ChainID, d.Name, method)
			if re, ok := lastErr.(*RPCError); ok && re.Retryable() && ctx.Err() == nil {
				continue
			}
			break
		}

		if len(out) == 0 && len(m.Outputs) > 0 {
			return nil, fmt.Errorf("%s.%s at %s: %w", d.Name, method, d.Address.Hex(), ErrNoCode)
		}
		values, err := d.ABI.Unpack(method, out)
		if err != nil {
			return nil, &RPCError{Reason: Malformed, ChainID: c.network.ChainID, Contract: d.Name, Method: method, Err: err}
		}
		return values, nil
	}

	zap.L().Warn("view call failed",
		zap.Uint64("chainID", c.network.ChainID),
		zap.String("contract", d.Name),
		zap.String("method", method),
		zap.Error(lastErr))
	return nil, lastErr
}

// callOnce issues a single eth_call under the read timeout.
func (c *ChainClient) callOnce(ctx context.Context, msg ethereum.CallMsg) ([]byte, error) {
	release, err := c.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	attemptCtx, cancel := context.WithTimeout(ctx, c.opts.ReadTimeout)
	defer cancel()
	return c.backend.CallContract(attemptCtx, msg, nil)
}
