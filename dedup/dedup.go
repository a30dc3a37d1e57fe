package dedup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/innkeep/enquiry/logger"
	"github.com/innkeep/enquiry/store"
)

const markerPrefix = "dedup:"

// Guard blocks identical resubmissions of the same enquiry within the
// marker TTL. Markers are written only after a booking actually completes,
// and a store failure is treated as "not seen": a guard outage must not
// block legitimate bookings. Two identical concurrent requests can both
// pass the check before either reserves the marker; the underlying store
// has no compare-and-swap, so that at-most-one duplicate is accepted.
type Guard struct {
	store store.Store
	ttl   time.Duration
}

func New(s store.Store, ttl time.Duration) *Guard {
	return &Guard{store: s, ttl: ttl}
}

// Fingerprint derives the stable dedup key for an enquiry. The identifier
// prefers email over phone; a missing stay date still fingerprints so
// dateless enquiries dedup too.
func Fingerprint(slug, email, phone, checkIn string) string {
	identifier := email
	if identifier == "" {
		identifier = phone
	}
	if identifier == "" {
		identifier = "unknown"
	}
	date := checkIn
	if date == "" {
		date = "nodate"
	}

	raw := strings.ToLower(slug + ":" + identifier + ":" + date)
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Seen reports whether a marker exists for the fingerprint.
func (g *Guard) Seen(ctx context.Context, fingerprint string) bool {
	_, err := g.store.Get(ctx, markerPrefix+fingerprint)
	if err == nil {
		return true
	}
	if !errors.Is(err, store.ErrNotFound) {
		logger.ErrorLogger.Errorf("Dedup lookup failed, treating as fresh: %v", err)
	}
	return false
}

// Reserve writes the marker. Called only after a successful forward.
func (g *Guard) Reserve(ctx context.Context, fingerprint string) {
	if err := g.store.Put(ctx, markerPrefix+fingerprint, "1", g.ttl); err != nil {
		logger.ErrorLogger.Errorf("Failed to write dedup marker: %v", err)
	}
}
