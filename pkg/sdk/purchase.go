package sdk

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/clubs-network/clubs-sdk-go/pkg/model"
	"github.com/clubs-network/clubs-sdk-go/pkg/registry"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

// ErrNoSigner is returned by writes when no private key is configured.
var ErrNoSigner = errors.New("private key not configured")

// receiptBackoff caps the receipt polling interval.
const receiptBackoff = 5 * time.Second

// timeNow is replaced in tests.
var timeNow = time.Now

var purchaseMethods = map[model.Plan]string{
	model.PlanMonthly:   "purchaseMembership",
	model.PlanQuarterly: "purchaseQuarterMembership",
	model.PlanYearly:    "purchaseYearMembership",
}

// PurchaseMembership buys plan for the signer, paying the price quoted on
// chain. Once the transaction is mined the cached membership of the signer
// is dropped.
func (c *Core) PurchaseMembership(ctx context.Context, club string, plan model.Plan) (*types.Receipt, error) {
	key, err := c.signer()
	if err != nil {
		return nil, err
	}
	method, ok := purchaseMethods[plan]
	if !ok {
		return nil, fmt.Errorf("unknown plan %s", plan)
	}
	conditions, err := c.GetMembershipConditions(ctx, club)
	if err != nil {
		return nil, fmt.Errorf("read price: %w", err)
	}

	receipt, err := c.submit(ctx, registry.TemporaryMembership, method, key, conditions.Price(plan), club)
	if err != nil {
		return nil, err
	}
	c.cache.Invalidate(club, c.address)
	zap.L().Info("membership purchased",
		zap.String("club", club),
		zap.Stringer("plan", plan),
		zap.String("buyer", c.address.Hex()),
		zap.String("tx", receipt.TxHash.Hex()))
	return receipt, nil
}

// PurchaseMembershipFor buys a monthly membership for recipient, paid by the
// signer.
func (c *Core) PurchaseMembershipFor(ctx context.Context, club string, recipient common.Address) (*types.Receipt, error) {
	key, err := c.signer()
	if err != nil {
		return nil, err
	}
	conditions, err := c.GetMembershipConditions(ctx, club)
	if err != nil {
		return nil, fmt.Errorf("read price: %w", err)
	}

	receipt, err := c.submit(ctx, registry.TemporaryMembership, "purchaseMembershipFor", key, conditions.MonthlyPrice, club, recipient)
	if err != nil {
		return nil, err
	}
	c.cache.Invalidate(club, recipient)
	zap.L().Info("membership purchased",
		zap.String("club", club),
		zap.String("recipient", recipient.Hex()),
		zap.String("tx", receipt.TxHash.Hex()))
	return receipt, nil
}

// AddTokenGate adds an ERC20 gate. Only the club admin may call it.
func (c *Core) AddTokenGate(ctx context.Context, club string, token common.Address, required *big.Int) (*types.Receipt, error) {
	return c.admin(ctx, "addTokenGate", club, token, required)
}

// AddNFTGate adds an ERC721 gate. Only the club admin may call it.
func (c *Core) AddNFTGate(ctx context.Context, club string, token common.Address, required *big.Int) (*types.Receipt, error) {
	return c.admin(ctx, "addNFTGate", club, token, required)
}

// AddERC1155Gate adds a gate on one ERC1155 token id. Only the club admin
// may call it.
func (c *Core) AddERC1155Gate(ctx context.Context, club string, token common.Address, tokenID, required *big.Int) (*types.Receipt, error) {
	if tokenID == nil {
		return nil, errors.New("token id is required")
	}
	return c.admin(ctx, "addERC1155Gate", club, token, tokenID, required)
}

// AddCrossChainTokenGate adds a gate on a token held on another network.
// Memberships through it can only be checked if that network is configured.
func (c *Core) AddCrossChainTokenGate(ctx context.Context, club string, chainID uint64, token common.Address, required *big.Int) (*types.Receipt, error) {
	if _, ok := c.remotes[chainID]; !ok && chainID != c.home.ChainID() {
		zap.L().Warn("cross-chain gate on a network this SDK does not dial",
			zap.String("club", club),
			zap.Uint64("chainID", chainID))
	}
	return c.admin(ctx, "addCrossChainTokenGate", club, new(big.Int).SetUint64(chainID), token, required)
}

func (c *Core) admin(ctx context.Context, method, club string, args ...any) (*types.Receipt, error) {
	key, err := c.signer()
	if err != nil {
		return nil, err
	}
	for _, a := range args {
		if n, ok := a.(*big.Int); ok && (n == nil || n.Sign() < 0) {
			return nil, fmt.Errorf("%s: amounts must be non-negative", method)
		}
	}
	receipt, err := c.submit(ctx, registry.TokenGate, method, key, nil, append([]any{club}, args...)...)
	if err != nil {
		return nil, err
	}
	zap.L().Info("token gate added",
		zap.String("club", club),
		zap.String("method", method),
		zap.String("tx", receipt.TxHash.Hex()))
	return receipt, nil
}

// submit sends a transaction and waits for it to be mined.
func (c *Core) submit(ctx context.Context, contract, method string, key *ecdsa.PrivateKey, value *big.Int, args ...any) (*types.Receipt, error) {
	hash, err := c.home.Transact(ctx, contract, method, key, value, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, c.Timeouts.ReceiptWait)
	defer cancel()
	receipt, err := c.home.WaitForTransaction(waitCtx, hash, receiptBackoff)
	if err != nil {
		zap.L().Error("transaction not confirmed",
			zap.String("method", method),
			zap.String("tx", hash.Hex()),
			zap.Error(err))
		return nil, fmt.Errorf("%s: wait for %s: %w", method, hash.Hex(), err)
	}
	return receipt, nil
}

func (c *Core) signer() (*ecdsa.PrivateKey, error) {
	if c.prvKey == nil {
		return nil, ErrNoSigner
	}
	return c.prvKey, nil
}
