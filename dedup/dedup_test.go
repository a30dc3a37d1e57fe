package dedup

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/innkeep/enquiry/logger"
	"github.com/innkeep/enquiry/store"
)

func init() {
	logger.InitLoggers()
}

func TestFingerprintStableAndCaseInsensitive(t *testing.T) {
	a := Fingerprint("Lakeview", "Asha@Example.com", "", "2026-05-01")
	b := Fingerprint("lakeview", "asha@example.com", "", "2026-05-01")
	assert.Equal(t, a, b)

	c := Fingerprint("lakeview", "asha@example.com", "", "2026-05-02")
	assert.NotEqual(t, a, c, "different stay date must change the fingerprint")
}

func TestFingerprintFallsBackToPhoneThenUnknown(t *testing.T) {
	phoneOnly := Fingerprint("lakeview", "", "+911234567890", "2026-05-01")
	assert.Equal(t, phoneOnly, Fingerprint("lakeview", "", "+911234567890", "2026-05-01"))
	assert.NotEqual(t, phoneOnly, Fingerprint("lakeview", "", "unknown", "2026-05-01"))

	noContact := Fingerprint("lakeview", "", "", "")
	assert.Equal(t, noContact, Fingerprint("lakeview", "", "", ""))
}

func TestSeenAndReserve(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	guard := New(mem, time.Hour)

	fp := Fingerprint("lakeview", "asha@example.com", "", "2026-05-01")
	require.False(t, guard.Seen(ctx, fp), "fresh fingerprint must not be seen")

	guard.Reserve(ctx, fp)
	assert.True(t, guard.Seen(ctx, fp))
}

func TestMarkerExpires(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	guard := New(mem, time.Hour)

	fp := Fingerprint("lakeview", "asha@example.com", "", "2026-05-01")
	guard.Reserve(ctx, fp)

	now := time.Now()
	mem.SetClock(func() time.Time { return now.Add(61 * time.Minute) })
	assert.False(t, guard.Seen(ctx, fp), "marker must expire after its TTL")
}
