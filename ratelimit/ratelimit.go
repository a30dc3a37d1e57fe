package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/innkeep/enquiry/logger"
	"github.com/innkeep/enquiry/store"
)

const (
	forwardPrefix  = "rate:"
	dispatchPrefix = "notify:"
)

// Limiter caps successful booking forwards per tenant per window, with a
// second independent ceiling for notification dispatches. The counter is a
// fixed-TTL bucket, not a true sliding window: the bucket expires one
// window after its first increment and the count restarts. The stored value
// carries the bucket-open timestamp so later increments shrink the
// remaining TTL instead of refreshing it. Read-then-write with no
// atomicity; a store failure counts as "not limited" so a storage outage
// never becomes a booking outage.
type Limiter struct {
	store  store.Store
	window time.Duration
	now    func() time.Time
}

func New(s store.Store, window time.Duration) *Limiter {
	return &Limiter{store: s, window: window, now: time.Now}
}

// SetClock overrides the limiter's clock. Test hook.
func (l *Limiter) SetClock(now func() time.Time) {
	l.now = now
}

// bucket is the decoded counter value: "count:openedAtUnix".
type bucket struct {
	count  int
	opened time.Time
}

func (b bucket) encode() string {
	return fmt.Sprintf("%d:%d", b.count, b.opened.Unix())
}

func decodeBucket(raw string) (bucket, bool) {
	countStr, openedStr, ok := strings.Cut(raw, ":")
	if !ok {
		return bucket{}, false
	}
	count, err := strconv.Atoi(countStr)
	if err != nil {
		return bucket{}, false
	}
	opened, err := strconv.ParseInt(openedStr, 10, 64)
	if err != nil {
		return bucket{}, false
	}
	return bucket{count: count, opened: time.Unix(opened, 0)}, true
}

// read returns the live bucket for a key. A missing key, an unreadable
// value, or a bucket older than the window all count as an empty bucket.
func (l *Limiter) read(ctx context.Context, key string) bucket {
	raw, err := l.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			logger.ErrorLogger.Errorf("Rate counter read failed, treating as zero: %v", err)
		}
		return bucket{}
	}
	b, ok := decodeBucket(raw)
	if !ok {
		return bucket{}
	}
	// Belt and braces against a store whose expiry lagged.
	if l.now().Sub(b.opened) >= l.window {
		return bucket{}
	}
	return b
}

func (l *Limiter) bump(ctx context.Context, key string) {
	now := l.now()
	b := l.read(ctx, key)
	if b.count == 0 {
		b.opened = now
	}
	b.count++

	remaining := l.window - now.Sub(b.opened)
	if remaining <= 0 {
		b = bucket{count: 1, opened: now}
		remaining = l.window
	}
	if err := l.store.Put(ctx, key, b.encode(), remaining); err != nil {
		logger.ErrorLogger.Errorf("Rate counter write failed: %v", err)
	}
}

// IsLimited reports whether the tenant already hit its forward ceiling in
// the current window.
func (l *Limiter) IsLimited(ctx context.Context, slug string, ceiling int) bool {
	return l.read(ctx, forwardPrefix+slug).count >= ceiling
}

// Increment bumps the forward counter. Called only after a successful
// forward, mirroring the dedup guard.
func (l *Limiter) Increment(ctx context.Context, slug string) {
	l.bump(ctx, forwardPrefix+slug)
}

// DispatchLimited reports whether the tenant hit the secondary notification
// ceiling; callers bump it with DispatchIncrement per dispatched set.
func (l *Limiter) DispatchLimited(ctx context.Context, slug string, ceiling int) bool {
	return l.read(ctx, dispatchPrefix+slug).count >= ceiling
}

func (l *Limiter) DispatchIncrement(ctx context.Context, slug string) {
	l.bump(ctx, dispatchPrefix+slug)
}
