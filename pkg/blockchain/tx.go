package blockchain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/clubs-network/clubs-sdk-go/pkg/model"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

// GetTransactOpts creates a transactor bound to the given chainID and ECDSA key.
// The returned TransactOpts can be used to sign transactions for that chain.
func GetTransactOpts(chainID *big.Int, pk *ecdsa.PrivateKey) (*bind.TransactOpts, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(pk, chainID)
	if err != nil {
		zap.L().Error("failed to create transactor", zap.Error(err))
		return nil, err
	}
	return opts, nil
}

// GetTransactOpts creates a transactor for the client's network.
func (c *ChainClient) GetTransactOpts(pk *ecdsa.PrivateKey) (*bind.TransactOpts, error) {
	if pk == nil {
		return nil, fmt.Errorf("private key is required for transactions")
	}
	return GetTransactOpts(new(big.Int).SetUint64(c.network.ChainID), pk)
}

// Transact signs and submits a state-mutating call of a logical contract.
// value is attached as payment and may be nil. The submission is never
// retried: a failed send may still have reached the mempool.
func (c *ChainClient) Transact(ctx context.Context, contract, method string, key *ecdsa.PrivateKey, value *big.Int, args ...any) (common.Hash, error) {
	d, err := c.registry.Resolve(contract, c.network.ChainID)
	if err != nil {
		return common.Hash{}, err
	}
	return c.TransactAt(ctx, d, method, key, value, args...)
}

// TransactAt is Transact against an explicit descriptor.
func (c *ChainClient) TransactAt(ctx context.Context, d model.ContractDescriptor, method string, key *ecdsa.PrivateKey, value *big.Int, args ...any) (common.Hash, error) {
	m, ok := d.ABI.Methods[method]
	if !ok {
		return common.Hash{}, fmt.Errorf("%s.%s: %w", d.Name, method, ErrUnknownMethod)
	}
	if m.IsConstant() {
		return common.Hash{}, fmt.Errorf("%s.%s: %w", d.Name, method, ErrViewMethod)
	}
	if value != nil && value.Sign() > 0 && !m.IsPayable() {
		return common.Hash{}, fmt.Errorf("%s.%s is not payable", d.Name, method)
	}
	if value == nil {
		value = new(big.Int)
	}

	opts, err := c.GetTransactOpts(key)
	if err != nil {
		return common.Hash{}, err
	}
	input, err := d.ABI.Pack(method, args...)
	if err != nil {
		return common.Hash{}, fmt.Errorf("pack %s.%s: %w", d.Name, method, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.opts.SubmitTimeout)
	defer cancel()
	release, err := c.acquire(ctx)
	if err != nil {
		return common.Hash{}, classify(err, c.network.ChainID, d.Name, method)
	}
	defer release()

	fail := func(step string, err error) (common.Hash, error) {
		zap.L().Error("transaction failed",
			zap.Uint64("chainID", c.network.ChainID),
			zap.String("contract", d.Name),
			zap.String("method", method),
			zap.String("step", step),
			zap.Error(err))
		return common.Hash{}, classify(err, c.network.ChainID, d.Name, method)
	}

	nonce, err := c.backend.PendingNonceAt(ctx, opts.From)
	if err != nil {
		return fail("nonce", err)
	}
	gasPrice, err := c.backend.SuggestGasPrice(ctx)
	if err != nil {
		return fail("gas price", err)
	}
	gas, err := c.backend.EstimateGas(ctx, ethereum.CallMsg{
		From:  opts.From,
		To:    &d.Address,
		Value: value,
		Data:  input,
	})
	if err != nil {
		return fail("estimate gas", err)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gas,
		To:       &d.Address,
		Value:    value,
		Data:     input,
	})
	signed, err := opts.Signer(opts.From, tx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("sign %s.%s: %w", d.Name, method, err)
	}
	if err := c.backend.SendTransaction(ctx, signed); err != nil {
		return fail("send", err)
	}

	zap.L().Debug("transaction submitted",
		zap.Uint64("chainID", c.network.ChainID),
		zap.String("contract", d.Name),
		zap.String("method", method),
		zap.String("tx", signed.Hash().Hex()),
		zap.String("explorer", c.network.TxURL(signed.Hash())))
	return signed.Hash(), nil
}

// WaitForTransaction polls for a transaction receipt with exponential backoff,
// until receipt is available, context is done, or an error occurs. If maxBackoff
// is non-zero, backoff will not exceed it. It returns an error if the tx is reverted.
func (c *ChainClient) WaitForTransaction(ctx context.Context, txHash common.Hash, maxBackoff time.Duration) (*types.Receipt, error) {
	backoff := time.Second
	if maxBackoff > 0 && maxBackoff < backoff {
		backoff = maxBackoff
	}
	for {
		receipt, err := c.backend.TransactionReceipt(ctx, txHash)
		switch {
		case err == nil:
			if receipt.Status == types.ReceiptStatusFailed {
				return nil, fmt.Errorf("tx %s: %w", txHash.Hex(), ErrReverted)
			}
			return receipt, nil
		case errors.Is(err, ethereum.NotFound):
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			backoff *= 2
			if maxBackoff > 0 && backoff > maxBackoff {
				backoff = maxBackoff
			}
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil, err
		default:
			return nil, fmt.Errorf("receipt error: %w", err)
		}
	}
}
