// Package model defines the data structures that flow through the clubs SDK.
//
// # Membership Status
//
// MembershipStatus is the single answer a membership check produces:
//
//	type MembershipStatus struct {
//		IsMember  bool
//		Kind      MembershipKind // None, Permanent, Temporary, TokenBased, CrossChain
//		ExpiresAt *time.Time     // nil = non-expiring
//	}
//
// An account may satisfy several mechanisms at once. Exactly one Kind is
// reported, chosen by Precedence: Permanent > Temporary > TokenBased >
// CrossChain. ExpiresAt is only set for Temporary memberships.
//
// # Token Gates
//
// TokenGate mirrors one entry of the on-chain gate table of a club. The
// TokenKind values match the uint8 encoding used by the TokenGate contract:
//
//	0 ERC20, 1 ERC721, 2 ERC1155, 3 CrossChain
//
// # Club Records
//
// ClubDetails and MembershipConditions hold the raw values read from the
// membership contracts; prices are wei amounts and durations are seconds.
// Use package pricing to turn them into display values.
//
// # Contract Descriptors
//
// ContractDescriptor binds a logical contract name to an address and parsed
// ABI on a specific chain. Descriptors are produced by package registry and
// never mutated afterwards.
package model
