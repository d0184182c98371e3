// Package sdk exposes the high-level clubs SDK entry points. It wires together
// chain clients for every configured network, the contract registry, the
// membership resolver with its cache, and the purchase and gate-admin flows.
package sdk

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"time"

	"github.com/clubs-network/clubs-sdk-go/pkg/blockchain"
	"github.com/clubs-network/clubs-sdk-go/pkg/cache"
	"github.com/clubs-network/clubs-sdk-go/pkg/config"
	"github.com/clubs-network/clubs-sdk-go/pkg/membership"
	"github.com/clubs-network/clubs-sdk-go/pkg/model"
	"github.com/clubs-network/clubs-sdk-go/pkg/pricing"
	"github.com/clubs-network/clubs-sdk-go/pkg/registry"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

// ClubsSDK is the public surface of the SDK.
type ClubsSDK interface {
	// CheckMembership returns the cached or freshly resolved membership of
	// account in club.
	CheckMembership(ctx context.Context, club string, account common.Address) (model.MembershipStatus, error)
	// IsMember reports whether account currently has access to club.
	IsMember(ctx context.Context, club string, account common.Address) (bool, error)
	// GetClubDetails reads the club record.
	GetClubDetails(ctx context.Context, club string) (model.ClubDetails, error)
	// GetMembershipConditions reads the club's prices and gate summary.
	GetMembershipConditions(ctx context.Context, club string) (model.MembershipConditions, error)
	// GetTokenGates lists the club's token gates.
	GetTokenGates(ctx context.Context, club string) ([]model.TokenGate, error)
	// QuotePlans prices every plan of the club.
	QuotePlans(ctx context.Context, club string) ([]pricing.Quote, error)

	// PurchaseMembership buys a plan for the configured signer.
	PurchaseMembership(ctx context.Context, club string, plan model.Plan) (*types.Receipt, error)
	// PurchaseMembershipFor buys a monthly membership for recipient.
	PurchaseMembershipFor(ctx context.Context, club string, recipient common.Address) (*types.Receipt, error)

	// AddTokenGate grants access to holders of an ERC20 token.
	AddTokenGate(ctx context.Context, club string, token common.Address, required *big.Int) (*types.Receipt, error)
	// AddNFTGate grants access to holders of an ERC721 collection.
	AddNFTGate(ctx context.Context, club string, token common.Address, required *big.Int) (*types.Receipt, error)
	// AddERC1155Gate grants access to holders of one ERC1155 token id.
	AddERC1155Gate(ctx context.Context, club string, token common.Address, tokenID, required *big.Int) (*types.Receipt, error)
	// AddCrossChainTokenGate grants access to holders of a token on another network.
	AddCrossChainTokenGate(ctx context.Context, club string, chainID uint64, token common.Address, required *big.Int) (*types.Receipt, error)

	// Close releases resources associated with the SDK instance.
	Close()
}

var _ ClubsSDK = (*Core)(nil)

// logLevel is shared by the default logger so that Config.Debug can raise it.
var logLevel = zap.NewAtomicLevelAt(zap.InfoLevel)

// init configures a default global zap logger for the SDK. Applications may
// replace it with zap.ReplaceGlobals(...) if they need custom logging.
func init() {
	c := zap.Config{
		Level:            logLevel,
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := c.Build()
	if err != nil {
		panic(err)
	}
	zap.ReplaceGlobals(logger)
}

// Chain is what Core needs from a network client. *blockchain.ChainClient
// implements it.
type Chain interface {
	membership.ChainReader
	Network() model.Network
	Transact(ctx context.Context, contract, method string, key *ecdsa.PrivateKey, value *big.Int, args ...any) (common.Hash, error)
	WaitForTransaction(ctx context.Context, txHash common.Hash, maxBackoff time.Duration) (*types.Receipt, error)
	Close()
}

var _ Chain = (*blockchain.ChainClient)(nil)

// Core is the concrete SDK implementation.
type Core struct {
	*config.Config
	home     Chain
	remotes  map[uint64]Chain
	resolver *membership.Resolver
	cache    *cache.MembershipCache
	prvKey   *ecdsa.PrivateKey
	address  common.Address
}

// NewSDK validates the configuration, dials every configured network and
// assembles the membership stack. A missing or unparsable private key
// disables purchases and gate administration but not reads.
func NewSDK(ctx context.Context, cfg *config.Config) (*Core, error) {
	if err := cfg.Validate(); err != nil {
		zap.L().Error("Invalid config", zap.Error(err))
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if cfg.Debug {
		logLevel.SetLevel(zap.DebugLevel)
	}

	reg, err := registry.New(cfg.Networks)
	if err != nil {
		return nil, err
	}

	opts := blockchain.OptionsFromConfig(cfg)
	var home Chain
	remotes := make(map[uint64]Chain, len(cfg.Networks)-1)
	closeAll := func() {
		if home != nil {
			home.Close()
		}
		for _, r := range remotes {
			r.Close()
		}
	}
	for _, n := range reg.Networks() {
		dialCtx, cancel := context.WithTimeout(ctx, cfg.Timeouts.Dial)
		client, err := blockchain.Dial(dialCtx, n, reg, opts)
		cancel()
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("network %d (%s): %w", n.ChainID, n.Name, err)
		}
		if n.ChainID == cfg.HomeChainID {
			home = client
		} else {
			remotes[n.ChainID] = client
		}
	}

	var key *ecdsa.PrivateKey
	if cfg.PrivateKey != "" {
		address, prvKey, err := blockchain.ParsePrivateKeyECDSA(cfg.PrivateKey)
		if err != nil {
			zap.L().Warn("some methods disabled: private key parsing failed", zap.Error(err))
		} else {
			key = prvKey
			zap.L().Debug("signer address", zap.String("addr", address.Hex()))
		}
	}

	return NewCore(cfg, home, remotes, key), nil
}

// NewCore assembles a Core from connected chains. cfg is expected to be
// validated; zero timeouts fall back to defaults on a copy, so the caller's
// Config is left untouched. key may be nil for read-only use.
func NewCore(cfg *config.Config, home Chain, remotes map[uint64]Chain, key *ecdsa.PrivateKey) *Core {
	own := *cfg
	cfg = &own
	cfg.Timeouts = cfg.Timeouts.WithDefaults()
	cfg.Cache = cfg.Cache.WithDefaults()

	readers := make(map[uint64]membership.ChainReader, len(remotes))
	for id, r := range remotes {
		readers[id] = r
	}
	resolver := membership.NewResolver(home, readers, membership.Options{
		FanOut:  cfg.FanOut,
		Timeout: cfg.Timeouts.Resolve,
	})

	c := &Core{
		Config:   cfg,
		home:     home,
		remotes:  remotes,
		resolver: resolver,
		cache: cache.New(resolver, cache.Options{
			ChainID:         home.ChainID(),
			TTL:             cfg.Cache.TTL,
			CleanupInterval: cfg.Cache.CleanupInterval,
			ResolveTimeout:  cfg.Timeouts.Resolve,
		}),
		prvKey: key,
	}
	if addr := blockchain.GetAddressFromPrivateKeyECDSA(key); addr != nil {
		c.address = *addr
	}
	return c
}

// Address returns the signer address, or the zero address without a key.
func (c *Core) Address() common.Address {
	return c.address
}

// Network returns the home network.
func (c *Core) Network() model.Network {
	return c.home.Network()
}

// Resolver exposes the uncached membership resolver.
func (c *Core) Resolver() *membership.Resolver {
	return c.resolver
}

// MembershipCache exposes the membership cache, e.g. to Purge it after gate changes.
func (c *Core) MembershipCache() *cache.MembershipCache {
	return c.cache
}

// Close shuts down every network client.
func (c *Core) Close() {
	c.home.Close()
	for _, r := range c.remotes {
		r.Close()
	}
}
