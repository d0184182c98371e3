// Package membership resolves whether an account belongs to a club.
//
// A club can grant access through four independent mechanisms:
//
//   - a permanent pass (PermanentMembership.isMember)
//   - a time-limited subscription (TemporaryMembership.checkUserMembership)
//   - holding ERC20, ERC721 or ERC1155 tokens on the home network
//   - holding a token on another network (cross-chain gates)
//
// Resolver.Resolve queries all of them concurrently and reports the
// strongest one in model.Precedence order. A mechanism that fails is read as
// "not a member" so that one misconfigured gate does not block the others.
// When no mechanism could be reached at all the resolver returns
// *AggregateQueryError; paywalls must treat it as "access undetermined" and
// deny.
//
// If the caller's context expires, sub-queries still running are abandoned
// and the answers collected so far are combined under the same rules.
package membership
