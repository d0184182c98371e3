// Package blockchain provides the ChainClient used by the SDK to talk to one
// EVM network: typed eth_call reads with per-attempt timeout and bounded
// retries, signed state-mutating transactions without retries, and receipt
// polling.
package blockchain

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/clubs-network/clubs-sdk-go/pkg/config"
	"github.com/clubs-network/clubs-sdk-go/pkg/model"
	"github.com/clubs-network/clubs-sdk-go/pkg/registry"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// Backend is the subset of *ethclient.Client the ChainClient needs.
// Tests substitute counting stubs.
type Backend interface {
	ethereum.ContractCaller
	ethereum.GasEstimator
	ethereum.GasPricer
	ethereum.TransactionSender
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// Options tunes a ChainClient. Zero values are replaced by defaults in
// WithDefaults.
type Options struct {
	ReadTimeout   time.Duration // per eth_call attempt
	SubmitTimeout time.Duration // whole transaction submission
	MaxRetries    int           // read retries after the first attempt
	BaseBackoff   time.Duration // first retry delay, doubling
	MaxInFlight   int64         // concurrent RPC calls against the endpoint
}

// WithDefaults returns a copy of o with zero values replaced by defaults:
// 10s read timeout, 25s submit timeout, 500ms base backoff and 8 in-flight
// calls. MaxRetries is taken as is; negative values mean no retries.
func (o Options) WithDefaults() Options {
	oo := o
	if oo.ReadTimeout <= 0 {
		oo.ReadTimeout = 10 * time.Second
	}
	if oo.SubmitTimeout <= 0 {
		oo.SubmitTimeout = 25 * time.Second
	}
	if oo.MaxRetries < 0 {
		oo.MaxRetries = 0
	}
	if oo.BaseBackoff <= 0 {
		oo.BaseBackoff = 500 * time.Millisecond
	}
	if oo.MaxInFlight <= 0 {
		oo.MaxInFlight = 8
	}
	return oo
}

// OptionsFromConfig derives client options from a validated Config.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		ReadTimeout:   cfg.Timeouts.ChainRead,
		SubmitTimeout: cfg.Timeouts.ChainSubmit,
		MaxRetries:    cfg.Retry.Retries(),
		BaseBackoff:   cfg.Retry.BaseBackoff,
		MaxInFlight:   int64(cfg.MaxInFlight),
	}
}

// ChainClient wraps a single JSON-RPC endpoint and chain identifier.
// It is safe for concurrent use.
type ChainClient struct {
	network  model.Network
	backend  Backend
	registry *registry.Registry
	opts     Options
	inFlight *semaphore.Weighted
}

// NewChainClient builds a client over an already connected backend.
func NewChainClient(network model.Network, backend Backend, reg *registry.Registry, opts Options) *ChainClient {
	opts = opts.WithDefaults()
	return &ChainClient{
		network:  network,
		backend:  backend,
		registry: reg,
		opts:     opts,
		inFlight: semaphore.NewWeighted(opts.MaxInFlight),
	}
}

// Dial connects to the network's RPC endpoint and verifies that the remote
// chain ID matches the configured one.
func Dial(ctx context.Context, network model.Network, reg *registry.Registry, opts Options) (*ChainClient, error) {
	client, err := ethclient.DialContext(ctx, network.RPCURL)
	if err != nil {
		zap.L().Error("Failed to ethdial", zap.String("rpc", network.RPCURL), zap.Error(err))
		return nil, &RPCError{Reason: Unreachable, ChainID: network.ChainID, Contract: "-", Method: "dial", Err: err}
	}

	remote, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		zap.L().Error("Failed to get chain ID", zap.Uint64("chainID", network.ChainID), zap.Error(err))
		return nil, classify(err, network.ChainID, "-", "eth_chainId")
	}
	if remote.Cmp(new(big.Int).SetUint64(network.ChainID)) != 0 {
		client.Close()
		return nil, fmt.Errorf("endpoint %s serves chain %s, configured %d", network.RPCURL, remote, network.ChainID)
	}

	zap.L().Debug("Connected to network",
		zap.Uint64("chainID", network.ChainID),
		zap.String("network", network.Name))
	return NewChainClient(network, client, reg, opts), nil
}

// Network returns the network the client is bound to.
func (c *ChainClient) Network() model.Network {
	return c.network
}

// ChainID returns the chain identifier of the client's network.
func (c *ChainClient) ChainID() uint64 {
	return c.network.ChainID
}

// Token returns a descriptor for a token contract on the client's network.
func (c *ChainClient) Token(kind model.TokenKind, address common.Address) (model.ContractDescriptor, error) {
	return c.registry.Token(kind, address, c.network.ChainID)
}

// Close releases the underlying connection if the backend owns one.
func (c *ChainClient) Close() {
	if closer, ok := c.backend.(interface{ Close() }); ok {
		closer.Close()
	}
}

// acquire takes one in-flight slot, honoring ctx.
func (c *ChainClient) acquire(ctx context.Context) (func(), error) {
	if err := c.inFlight.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	return func() { c.inFlight.Release(1) }, nil
}
