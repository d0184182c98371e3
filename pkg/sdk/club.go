package sdk

import (
	"context"
	"fmt"
	"math/big"

	"github.com/clubs-network/clubs-sdk-go/pkg/blockchain"
	"github.com/clubs-network/clubs-sdk-go/pkg/model"
	"github.com/clubs-network/clubs-sdk-go/pkg/pricing"
	"github.com/clubs-network/clubs-sdk-go/pkg/registry"
	"github.com/ethereum/go-ethereum/common"
)

// CheckMembership returns the membership of account in club. Answers are
// cached for Config.Cache.TTL. A *membership.AggregateQueryError means the
// membership could not be determined and must not be read as "no access".
func (c *Core) CheckMembership(ctx context.Context, club string, account common.Address) (model.MembershipStatus, error) {
	return c.cache.Get(ctx, club, account)
}

// IsMember reports whether account has access to club right now.
func (c *Core) IsMember(ctx context.Context, club string, account common.Address) (bool, error) {
	status, err := c.CheckMembership(ctx, club, account)
	if err != nil {
		return false, err
	}
	return status.Active(timeNow()), nil
}

// HasActiveSubscription asks the subscription contract directly, bypassing
// the cache and the other mechanisms.
func (c *Core) HasActiveSubscription(ctx context.Context, club string, account common.Address) (bool, error) {
	out, err := c.home.Call(ctx, registry.TemporaryMembership, "hasActiveMembership", club, account)
	if err != nil {
		return false, err
	}
	return blockchain.Output[bool](out, 0)
}

// GetClubDetails reads the club record from the club registry.
func (c *Core) GetClubDetails(ctx context.Context, club string) (model.ClubDetails, error) {
	out, err := c.home.Call(ctx, registry.ClubRegistry, "getClubDetails", club)
	if err != nil {
		return model.ClubDetails{}, err
	}
	var d model.ClubDetails
	if d.Name, err = blockchain.Output[string](out, 0); err != nil {
		return model.ClubDetails{}, err
	}
	if d.Admin, err = blockchain.Output[common.Address](out, 1); err != nil {
		return model.ClubDetails{}, err
	}
	if d.Active, err = blockchain.Output[bool](out, 2); err != nil {
		return model.ClubDetails{}, err
	}
	if d.MemberCount, err = blockchain.Output[*big.Int](out, 3); err != nil {
		return model.ClubDetails{}, err
	}
	return d, nil
}

// GetMembershipConditions reads prices, duration and gate summary of club.
func (c *Core) GetMembershipConditions(ctx context.Context, club string) (model.MembershipConditions, error) {
	out, err := c.home.Call(ctx, registry.TemporaryMembership, "getClubMembershipConditions", club)
	if err != nil {
		return model.MembershipConditions{}, err
	}
	ints := make([]*big.Int, 4)
	for i := range ints {
		if ints[i], err = blockchain.Output[*big.Int](out, i); err != nil {
			return model.MembershipConditions{}, err
		}
	}
	enabled, err := blockchain.Output[bool](out, 4)
	if err != nil {
		return model.MembershipConditions{}, err
	}
	count, err := blockchain.Output[*big.Int](out, 5)
	if err != nil {
		return model.MembershipConditions{}, err
	}
	return model.MembershipConditions{
		MonthlyPrice:     ints[0],
		QuarterPrice:     ints[1],
		YearPrice:        ints[2],
		Duration:         ints[3],
		TokenGateEnabled: enabled,
		TokenGateCount:   count,
	}, nil
}

// GetTokenGates lists the token gates of club.
func (c *Core) GetTokenGates(ctx context.Context, club string) ([]model.TokenGate, error) {
	return c.resolver.TokenGates(ctx, club)
}

// QuotePlans reads the club's conditions and prices every plan.
func (c *Core) QuotePlans(ctx context.Context, club string) ([]pricing.Quote, error) {
	conditions, err := c.GetMembershipConditions(ctx, club)
	if err != nil {
		return nil, err
	}
	quotes, err := pricing.QuotePlans(conditions)
	if err != nil {
		return nil, fmt.Errorf("club %q: %w", club, err)
	}
	return quotes, nil
}
