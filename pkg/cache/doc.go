// Package cache keeps recently resolved membership statuses in memory.
//
// Entries live for a short TTL (30 seconds by default), so a subscription
// that just ended may keep granting access for a few seconds. Purchases
// call Invalidate once the transaction is mined so that a fresh "member"
// answer is not hidden behind a cached "not a member".
//
//	c := cache.New(resolver, cache.Options{ChainID: 11155111})
//	status, err := c.Get(ctx, "builders.eth", account)
package cache
