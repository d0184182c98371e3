package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/clubs-network/clubs-sdk-go/pkg/model"
	"github.com/ethereum/go-ethereum/common"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Resolver is the source of truth behind the cache, usually a
// *membership.Resolver.
type Resolver interface {
	Resolve(ctx context.Context, club string, account common.Address) (model.MembershipStatus, error)
}

// Options tunes a MembershipCache.
type Options struct {
	// ChainID of the home network, part of every key.
	ChainID uint64
	// TTL is how long a resolved status is served. Default: 30s.
	TTL time.Duration
	// CleanupInterval is how often expired entries are dropped. Default: 1m.
	CleanupInterval time.Duration
	// ResolveTimeout bounds a shared resolution. Default: 15s.
	ResolveTimeout time.Duration
	// Now is the clock used for freshness checks.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.TTL <= 0 {
		o.TTL = 30 * time.Second
	}
	if o.CleanupInterval <= 0 {
		o.CleanupInterval = time.Minute
	}
	if o.ResolveTimeout <= 0 {
		o.ResolveTimeout = 15 * time.Second
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// MembershipCache is a read-through cache of membership statuses. Concurrent
// misses for the same key share one resolution. Errors are never cached.
type MembershipCache struct {
	resolver Resolver
	store    *gocache.Cache
	group    singleflight.Group
	opts     Options

	// mu orders stores against Invalidate and Purge. A resolution stores
	// its result only if neither its key's generation nor the epoch moved
	// since it started.
	mu    sync.Mutex
	epoch uint64
	gens  map[string]uint64
}

// version identifies the invalidation state a resolution started from.
type version struct {
	epoch, gen uint64
}

// New creates a cache in front of resolver.
func New(resolver Resolver, opts Options) *MembershipCache {
	opts = opts.withDefaults()
	zap.L().Debug("Initialized membership cache",
		zap.Uint64("chainID", opts.ChainID),
		zap.Duration("ttl", opts.TTL),
		zap.Duration("cleanupInterval", opts.CleanupInterval))
	return &MembershipCache{
		resolver: resolver,
		store:    gocache.New(opts.TTL, opts.CleanupInterval),
		opts:     opts,
		gens:     make(map[string]uint64),
	}
}

// Get returns the membership status of account in club, resolving it on a
// miss or when the cached entry is older than the TTL.
//
// The shared resolution is not canceled when one waiting caller gives up;
// it is bounded by ResolveTimeout instead. Each caller still returns as soon
// as its own ctx is done.
func (c *MembershipCache) Get(ctx context.Context, club string, account common.Address) (model.MembershipStatus, error) {
	key := c.key(club, account)
	if status, ok := c.lookup(key); ok {
		zap.L().Debug("Membership cache hit", zap.String("key", key))
		return status, nil
	}
	zap.L().Debug("Membership cache miss", zap.String("key", key))

	ch := c.group.DoChan(key, func() (any, error) {
		started := c.version(key)
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.opts.ResolveTimeout)
		defer cancel()

		status, err := c.resolver.Resolve(rctx, club, account)
		if err != nil {
			return nil, err
		}
		c.save(key, started, model.CacheEntry{Status: status, FetchedAt: c.opts.Now()})
		return status, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return model.MembershipStatus{}, res.Err
		}
		return res.Val.(model.MembershipStatus), nil
	case <-ctx.Done():
		return model.MembershipStatus{}, ctx.Err()
	}
}

// lookup returns a cached status that is still fresh. A membership whose
// subscription ended is stale even within the TTL.
func (c *MembershipCache) lookup(key string) (model.MembershipStatus, bool) {
	x, found := c.store.Get(key)
	if !found {
		return model.MembershipStatus{}, false
	}
	entry, ok := x.(model.CacheEntry)
	if !ok {
		zap.L().Warn("Membership cache data type mismatch for key",
			zap.String("key", key),
			zap.String("type", fmt.Sprintf("%T", x)))
		return model.MembershipStatus{}, false
	}
	now := c.opts.Now()
	if !entry.Fresh(now, c.opts.TTL) {
		return model.MembershipStatus{}, false
	}
	if entry.Status.IsMember && !entry.Status.Active(now) {
		return model.MembershipStatus{}, false
	}
	return entry.Status, true
}

func (c *MembershipCache) version(key string) version {
	c.mu.Lock()
	defer c.mu.Unlock()
	return version{epoch: c.epoch, gen: c.gens[key]}
}

// save saves entry unless key was invalidated after started was taken.
func (c *MembershipCache) save(key string, started version, entry model.CacheEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if started != (version{epoch: c.epoch, gen: c.gens[key]}) {
		zap.L().Debug("Membership cache dropped result invalidated in flight", zap.String("key", key))
		return
	}
	c.store.Set(key, entry, c.opts.TTL)
}

// Invalidate drops the entry for account in club so that the next Get
// resolves again, e.g. right after a purchase is confirmed. A resolution of
// that key already in flight is not stored; other keys are unaffected.
func (c *MembershipCache) Invalidate(club string, account common.Address) {
	key := c.key(club, account)
	c.mu.Lock()
	c.gens[key]++
	c.group.Forget(key)
	c.store.Delete(key)
	c.mu.Unlock()
	zap.L().Debug("Membership cache invalidated", zap.String("key", key))
}

// Purge drops every entry and discards every resolution in flight.
func (c *MembershipCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	// the epoch bump outdates every version taken so far
	c.gens = make(map[string]uint64)
	c.store.Flush()
}

// Len returns the number of stored entries, including expired ones not yet
// cleaned up.
func (c *MembershipCache) Len() int {
	return c.store.ItemCount()
}

func (c *MembershipCache) key(club string, account common.Address) string {
	return fmt.Sprintf("%d:%s:%s", c.opts.ChainID, club, strings.ToLower(account.Hex()))
}
