package forward

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/innkeep/enquiry/logger"
	"github.com/innkeep/enquiry/models/booking_models"
	"github.com/innkeep/enquiry/store"
)

func init() {
	logger.InitLoggers()
}

func sampleBooking() *booking_models.EnrichedBooking {
	return &booking_models.EnrichedBooking{
		BookingID:     "0190a7b2-0000-7000-8000-000000000001",
		ReceivedAt:    time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC),
		Name:          "Asha",
		Phone:         "+911234567890",
		Slug:          "lakeview",
		PropertyName:  "Lakeview Homestay",
		CheckIn:       "2026-05-01",
		Guests:        2,
		OwnerAddress:  "owner@lakeview.example",
		ConfigVersion: 3,
	}
}

func TestSignatureIsDeterministic(t *testing.T) {
	secret := []byte("shared-secret")
	b := sampleBooking()

	c1, err := CanonicalJSON(b)
	require.NoError(t, err)
	c2, err := CanonicalJSON(b)
	require.NoError(t, err)
	assert.Equal(t, c1, c2, "canonical encoding must be stable")
	assert.Equal(t, Sign(secret, c1), Sign(secret, c2))
}

func TestSignatureChangesWithAnyField(t *testing.T) {
	secret := []byte("shared-secret")

	base := sampleBooking()
	c1, err := CanonicalJSON(base)
	require.NoError(t, err)

	changed := sampleBooking()
	changed.Guests = 3
	c2, err := CanonicalJSON(changed)
	require.NoError(t, err)

	assert.NotEqual(t, Sign(secret, c1), Sign(secret, c2))
}

func TestSignatureChangesWithSecret(t *testing.T) {
	c, err := CanonicalJSON(sampleBooking())
	require.NoError(t, err)
	assert.NotEqual(t, Sign([]byte("a"), c), Sign([]byte("b"), c))
}

func TestForwardSendsSignatureBothWays(t *testing.T) {
	secret := "shared-secret"
	booking := sampleBooking()

	var gotQuerySig, gotHeaderSig, gotQueryPartition, gotHeaderPartition string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuerySig = r.URL.Query().Get("sig")
		gotHeaderSig = r.Header.Get("X-Signature")
		gotQueryPartition = r.URL.Query().Get("partition")
		gotHeaderPartition = r.Header.Get("X-Partition-Name")
		gotBody, _ = io.ReadAll(r.Body)
		json.NewEncoder(w).Encode(Ack{Success: true})
	}))
	defer srv.Close()

	registry := NewRegistry(store.NewMemoryStore(), srv.URL, "bookings")
	f := New(registry, secret, 5*time.Second)

	require.NoError(t, f.Forward(context.Background(), booking))

	canonical, err := CanonicalJSON(booking)
	require.NoError(t, err)
	wantSig := Sign([]byte(secret), canonical)

	assert.Equal(t, wantSig, gotQuerySig)
	assert.Equal(t, wantSig, gotHeaderSig)
	assert.Equal(t, "bookings", gotQueryPartition)
	assert.Equal(t, "bookings", gotHeaderPartition)
	assert.Equal(t, canonical, gotBody, "body must be the exact signed bytes")
}

func TestForwardRejectsBadAcks(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"non-2xx", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}},
		{"success false", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(Ack{Success: false, Message: "nope"})
		}},
		{"non-json body", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html>ok</html>"))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			registry := NewRegistry(store.NewMemoryStore(), srv.URL, "bookings")
			f := New(registry, "secret", 5*time.Second)
			assert.Error(t, f.Forward(context.Background(), sampleBooking()))
		})
	}
}

func TestRegistryResolution(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	registry := NewRegistry(mem, "https://default.example/hook", "bookings")

	t.Run("missing record falls back", func(t *testing.T) {
		route := registry.Resolve(ctx, "lakeview")
		assert.Equal(t, "https://default.example/hook", route.Endpoint)
		assert.Equal(t, "bookings", route.Partition)
	})

	t.Run("active record routes to its workspace", func(t *testing.T) {
		rec := `{"endpoint":"https://shard2.example/hook","partition":"lakeview-bookings"}`
		require.NoError(t, mem.Put(ctx, "workspace:lakeview", rec, 0))

		route := registry.Resolve(ctx, "lakeview")
		assert.Equal(t, "https://shard2.example/hook", route.Endpoint)
		assert.Equal(t, "lakeview-bookings", route.Partition)
	})

	t.Run("disabled record falls back", func(t *testing.T) {
		rec := `{"endpoint":"https://shard2.example/hook","partition":"x","disabled":true}`
		require.NoError(t, mem.Put(ctx, "workspace:hillside", rec, 0))

		route := registry.Resolve(ctx, "hillside")
		assert.Equal(t, "https://default.example/hook", route.Endpoint)
	})
}
