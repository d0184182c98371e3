// Package model defines the data structures shared by the SDK: networks,
// contract descriptors, membership statuses, token gates and the club
// records read from the membership contracts.
package model

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Network is an immutable description of a chain the SDK talks to.
type Network struct {
	ChainID     uint64 `json:"chain_id"`
	Name        string `json:"name"`
	RPCURL      string `json:"rpc_url"`
	ExplorerURL string `json:"explorer_url,omitempty"`
}

// TxURL returns the explorer link for a transaction hash, or "" when no
// explorer is configured.
func (n Network) TxURL(hash common.Hash) string {
	if n.ExplorerURL == "" {
		return ""
	}
	return strings.TrimRight(n.ExplorerURL, "/") + "/tx/" + hash.Hex()
}

// AddressURL returns the explorer link for an address, or "" when no
// explorer is configured.
func (n Network) AddressURL(addr common.Address) string {
	if n.ExplorerURL == "" {
		return ""
	}
	return strings.TrimRight(n.ExplorerURL, "/") + "/address/" + addr.Hex()
}

// ContractDescriptor binds a logical contract name to its deployment on one
// network. Fragment lists the method signatures in ABI declaration order.
type ContractDescriptor struct {
	Name     string
	ChainID  uint64
	Address  common.Address
	ABI      abi.ABI
	Fragment []string
}

// MembershipKind classifies how an account holds access to a club.
type MembershipKind uint8

const (
	KindNone MembershipKind = iota
	KindPermanent
	KindTemporary
	KindTokenBased
	KindCrossChain
)

// Precedence lists the member kinds from strongest to weakest. When several
// mechanisms grant access the first one in this order is reported.
var Precedence = []MembershipKind{KindPermanent, KindTemporary, KindTokenBased, KindCrossChain}

func (k MembershipKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindPermanent:
		return "permanent"
	case KindTemporary:
		return "temporary"
	case KindTokenBased:
		return "token"
	case KindCrossChain:
		return "cross-chain"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k MembershipKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *MembershipKind) UnmarshalText(text []byte) error {
	for _, c := range append([]MembershipKind{KindNone}, Precedence...) {
		if c.String() == string(text) {
			*k = c
			return nil
		}
	}
	return fmt.Errorf("unknown membership kind %q", text)
}

// MembershipStatus is the normalized answer to "is this account a member of
// this club". ExpiresAt is nil for non-expiring access.
type MembershipStatus struct {
	IsMember  bool           `json:"is_member"`
	Kind      MembershipKind `json:"kind"`
	ExpiresAt *time.Time     `json:"expires_at,omitempty"`
}

// NotMember is the status of an account without access.
var NotMember = MembershipStatus{IsMember: false, Kind: KindNone}

// Active reports whether the status grants access at the given instant.
func (s MembershipStatus) Active(at time.Time) bool {
	if !s.IsMember {
		return false
	}
	return s.ExpiresAt == nil || at.Before(*s.ExpiresAt)
}

func (s MembershipStatus) String() string {
	if !s.IsMember {
		return "not a member"
	}
	if s.ExpiresAt != nil {
		return fmt.Sprintf("%s member until %s", s.Kind, s.ExpiresAt.UTC().Format(time.RFC3339))
	}
	return s.Kind.String() + " member"
}

// TokenKind is the asset standard a token gate checks. Values match the
// uint8 encoding used by the TokenGate contract.
type TokenKind uint8

const (
	TokenERC20 TokenKind = iota
	TokenERC721
	TokenERC1155
	TokenCrossChain
)

func (k TokenKind) String() string {
	switch k {
	case TokenERC20:
		return "ERC20"
	case TokenERC721:
		return "ERC721"
	case TokenERC1155:
		return "ERC1155"
	case TokenCrossChain:
		return "CrossChain"
	default:
		return fmt.Sprintf("token(%d)", uint8(k))
	}
}

// TokenGate grants access to holders of at least RequiredAmount of a token.
// TokenID is set for ERC1155 gates only, ChainID for cross-chain gates only.
type TokenGate struct {
	TokenAddress   common.Address `json:"token_address"`
	Kind           TokenKind      `json:"kind"`
	RequiredAmount *big.Int       `json:"required_amount"`
	TokenID        *big.Int       `json:"token_id,omitempty"`
	ChainID        *uint64        `json:"chain_id,omitempty"`
}

// ClubDetails is the club record returned by getClubDetails.
type ClubDetails struct {
	Name        string         `json:"name"`
	Admin       common.Address `json:"admin"`
	Active      bool           `json:"active"`
	MemberCount *big.Int       `json:"member_count"`
}

// MembershipConditions is the pricing and gate summary returned by
// getClubMembershipConditions. Prices are in wei, Duration in seconds.
type MembershipConditions struct {
	MonthlyPrice     *big.Int `json:"monthly_price"`
	QuarterPrice     *big.Int `json:"quarter_price"`
	YearPrice        *big.Int `json:"year_price"`
	Duration         *big.Int `json:"duration"`
	TokenGateEnabled bool     `json:"token_gate_enabled"`
	TokenGateCount   *big.Int `json:"token_gate_count"`
}

// Plan is a purchasable subscription length.
type Plan uint8

const (
	PlanMonthly Plan = iota
	PlanQuarterly
	PlanYearly
)

// Plans lists every plan in display order.
var Plans = []Plan{PlanMonthly, PlanQuarterly, PlanYearly}

// Units returns how many monthly periods the plan covers.
func (p Plan) Units() int64 {
	switch p {
	case PlanQuarterly:
		return 3
	case PlanYearly:
		return 12
	default:
		return 1
	}
}

func (p Plan) String() string {
	switch p {
	case PlanMonthly:
		return "monthly"
	case PlanQuarterly:
		return "quarterly"
	case PlanYearly:
		return "yearly"
	default:
		return fmt.Sprintf("plan(%d)", uint8(p))
	}
}

// ParsePlan parses a plan name as printed by Plan.String.
func ParsePlan(s string) (Plan, error) {
	for _, p := range Plans {
		if strings.EqualFold(p.String(), s) {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown plan %q", s)
}

// Price returns the on-chain price of the plan.
func (c MembershipConditions) Price(p Plan) *big.Int {
	switch p {
	case PlanQuarterly:
		return c.QuarterPrice
	case PlanYearly:
		return c.YearPrice
	default:
		return c.MonthlyPrice
	}
}

// CacheEntry is a membership status together with the time it was read.
type CacheEntry struct {
	Status    MembershipStatus `json:"status"`
	FetchedAt time.Time        `json:"fetched_at"`
}

// Fresh reports whether the entry is younger than ttl at the given instant.
func (e CacheEntry) Fresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.FetchedAt) < ttl
}

// MarshalJSON keeps big integers readable as decimal strings.
func (g TokenGate) MarshalJSON() ([]byte, error) {
	type alias struct {
		TokenAddress   string  `json:"token_address"`
		Kind           string  `json:"kind"`
		RequiredAmount string  `json:"required_amount"`
		TokenID        string  `json:"token_id,omitempty"`
		ChainID        *uint64 `json:"chain_id,omitempty"`
	}
	out := alias{
		TokenAddress: g.TokenAddress.Hex(),
		Kind:         g.Kind.String(),
		ChainID:      g.ChainID,
	}
	if g.RequiredAmount != nil {
		out.RequiredAmount = g.RequiredAmount.String()
	}
	if g.TokenID != nil {
		out.TokenID = g.TokenID.String()
	}
	return json.Marshal(out)
}
