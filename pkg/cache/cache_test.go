package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/clubs-network/clubs-sdk-go/pkg/model"
	"github.com/ethereum/go-ethereum/common"
)

var (
	account = common.HexToAddress("0x00000000000000000000000000000000000000c1")
	member  = model.MembershipStatus{IsMember: true, Kind: model.KindPermanent}
)

type countingResolver struct {
	calls   atomic.Int64
	release chan struct{}
	status  model.MembershipStatus
	err     error
}

func (r *countingResolver) Resolve(ctx context.Context, _ string, _ common.Address) (model.MembershipStatus, error) {
	r.calls.Add(1)
	if r.release != nil {
		select {
		case <-r.release:
		case <-ctx.Done():
			return model.MembershipStatus{}, ctx.Err()
		}
	}
	return r.status, r.err
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newCache(r Resolver) (*MembershipCache, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	return New(r, Options{ChainID: 1, Now: clock.Now}), clock
}

func TestGet_CachesWithinTTL(t *testing.T) {
	r := &countingResolver{status: member}
	c, clock := newCache(r)
	ctx := context.Background()

	for range 2 {
		status, err := c.Get(ctx, "club", account)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if status != member {
			t.Fatalf("got %+v", status)
		}
		clock.Advance(10 * time.Second)
	}
	if got := r.calls.Load(); got != 1 {
		t.Fatalf("expected 1 resolution, got %d", got)
	}
	if c.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", c.Len())
	}

	clock.Advance(25 * time.Second)
	if _, err := c.Get(ctx, "club", account); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got := r.calls.Load(); got != 2 {
		t.Fatalf("expired entry must be refreshed, got %d resolutions", got)
	}
}

func TestGet_KeysAreDistinct(t *testing.T) {
	r := &countingResolver{status: member}
	c, _ := newCache(r)
	ctx := context.Background()
	other := common.HexToAddress("0x00000000000000000000000000000000000000c2")

	_, _ = c.Get(ctx, "club", account)
	_, _ = c.Get(ctx, "club", other)
	_, _ = c.Get(ctx, "other-club", account)
	if got := r.calls.Load(); got != 3 {
		t.Fatalf("expected 3 resolutions, got %d", got)
	}
}

func TestInvalidate_ForcesResolution(t *testing.T) {
	r := &countingResolver{status: model.NotMember}
	c, _ := newCache(r)
	ctx := context.Background()

	if _, err := c.Get(ctx, "club", account); err != nil {
		t.Fatalf("Get: %v", err)
	}
	r.status = member
	c.Invalidate("club", account)

	status, err := c.Get(ctx, "club", account)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !status.IsMember {
		t.Fatalf("expected fresh member status, got %+v", status)
	}
	if got := r.calls.Load(); got != 2 {
		t.Fatalf("expected 2 resolutions, got %d", got)
	}

	c.Purge()
	if c.Len() != 0 {
		t.Fatalf("expected empty cache after Purge, got %d", c.Len())
	}
}

// hookedCache runs hook on the first clock read made while storing a
// resolution, after the resolver returned and before the entry is saved.
func hookedCache(r Resolver, hook func(c *MembershipCache)) *MembershipCache {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	var (
		c    *MembershipCache
		once sync.Once
	)
	c = New(r, Options{ChainID: 1, Now: func() time.Time {
		once.Do(func() { hook(c) })
		return clock.Now()
	}})
	return c
}

func TestInvalidate_DuringResolutionIsNotLost(t *testing.T) {
	other := common.HexToAddress("0x00000000000000000000000000000000000000c2")
	tests := []struct {
		name       string
		hook       func(c *MembershipCache)
		resolution int64
	}{
		{"same key", func(c *MembershipCache) { c.Invalidate("club", account) }, 2},
		{"purge", func(c *MembershipCache) { c.Purge() }, 2},
		{"other key", func(c *MembershipCache) { c.Invalidate("club", other) }, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &countingResolver{status: model.NotMember}
			c := hookedCache(r, tt.hook)
			ctx := context.Background()

			// the purchase confirms while the pre-purchase answer is being stored
			status, err := c.Get(ctx, "club", account)
			if err != nil || status.IsMember {
				t.Fatalf("first Get: %+v, %v", status, err)
			}
			r.status = member

			status, err = c.Get(ctx, "club", account)
			if err != nil {
				t.Fatalf("second Get: %v", err)
			}
			if got := r.calls.Load(); got != tt.resolution {
				t.Fatalf("expected %d resolutions, got %d", tt.resolution, got)
			}
			if tt.resolution == 2 && !status.IsMember {
				t.Fatalf("invalidated result was served: %+v", status)
			}
		})
	}
}

func TestGet_DeduplicatesConcurrentMisses(t *testing.T) {
	r := &countingResolver{status: member, release: make(chan struct{})}
	c, _ := newCache(r)

	const callers = 10
	var wg sync.WaitGroup
	var started sync.WaitGroup
	errs := make(chan error, callers)
	started.Add(callers)
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			started.Done()
			status, err := c.Get(context.Background(), "club", account)
			if err == nil && status != member {
				err = errors.New("unexpected status")
			}
			errs <- err
		}()
	}
	started.Wait()
	// give every caller time to join the in-flight resolution
	time.Sleep(50 * time.Millisecond)
	close(r.release)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
	}
	if got := r.calls.Load(); got != 1 {
		t.Fatalf("expected 1 resolution, got %d", got)
	}
}

func TestGet_ErrorsAreNotCached(t *testing.T) {
	boom := errors.New("membership undetermined")
	r := &countingResolver{err: boom}
	c, _ := newCache(r)
	ctx := context.Background()

	if _, err := c.Get(ctx, "club", account); !errors.Is(err, boom) {
		t.Fatalf("expected resolver error, got %v", err)
	}
	r.err = nil
	r.status = member
	status, err := c.Get(ctx, "club", account)
	if err != nil || status != member {
		t.Fatalf("got %+v, %v", status, err)
	}
	if got := r.calls.Load(); got != 2 {
		t.Fatalf("expected 2 resolutions, got %d", got)
	}
}

func TestGet_CallerCancellationDoesNotAbortSharedResolution(t *testing.T) {
	r := &countingResolver{status: member, release: make(chan struct{})}
	c, _ := newCache(r)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := c.Get(ctx, "club", account); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected caller deadline, got %v", err)
	}

	close(r.release)
	status, err := c.Get(context.Background(), "club", account)
	if err != nil || status != member {
		t.Fatalf("got %+v, %v", status, err)
	}
	if got := r.calls.Load(); got != 1 {
		t.Fatalf("second caller should reuse the detached resolution, got %d", got)
	}
}

func TestGet_ExpiredSubscriptionIsStale(t *testing.T) {
	clockStart := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	expires := clockStart.Add(5 * time.Second)
	r := &countingResolver{status: model.MembershipStatus{IsMember: true, Kind: model.KindTemporary, ExpiresAt: &expires}}
	c, clock := newCache(r)
	ctx := context.Background()

	_, _ = c.Get(ctx, "club", account)
	clock.Advance(6 * time.Second)
	_, _ = c.Get(ctx, "club", account)
	if got := r.calls.Load(); got != 2 {
		t.Fatalf("expected re-resolution after subscription end, got %d", got)
	}
}
