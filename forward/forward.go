package forward

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/innkeep/enquiry/logger"
	"github.com/innkeep/enquiry/models/booking_models"
)

// Ack is the durable sink's response body. Anything that does not decode to
// this shape with Success=true is treated as a rejection.
type Ack struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Forwarder signs enriched bookings and delivers them to the durable sink.
type Forwarder struct {
	registry *Registry
	secret   []byte
	client   *http.Client
}

func New(registry *Registry, secret string, timeout time.Duration) *Forwarder {
	return &Forwarder{
		registry: registry,
		secret:   []byte(secret),
		client:   &http.Client{Timeout: timeout},
	}
}

// CanonicalJSON produces a stable encoding of the booking: the struct is
// flattened into a map so keys are emitted in sorted order regardless of
// field layout. Signing the same booking twice must yield identical bytes.
func CanonicalJSON(enriched *booking_models.EnrichedBooking) ([]byte, error) {
	raw, err := json.Marshal(enriched)
	if err != nil {
		return nil, fmt.Errorf("failed to encode booking: %w", err)
	}
	var flat map[string]any
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil, fmt.Errorf("failed to canonicalize booking: %w", err)
	}
	canonical, err := json.Marshal(flat)
	if err != nil {
		return nil, fmt.Errorf("failed to re-encode booking: %w", err)
	}
	return canonical, nil
}

// Sign computes the lowercase hex HMAC-SHA256 of the canonical bytes.
func Sign(secret, canonical []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(canonical)
	return hex.EncodeToString(mac.Sum(nil))
}

// Forward canonicalizes, signs and delivers the booking to the tenant's
// sink endpoint. The signature and partition ride as query parameters and
// as header mirrors, because some sink hosts drop custom headers. A
// transport failure or any response that is not a 2xx `{"success":true}`
// fails the booking end-to-end; the caller must not mark dedup or rate
// state in that case.
func (f *Forwarder) Forward(ctx context.Context, enriched *booking_models.EnrichedBooking) error {
	canonical, err := CanonicalJSON(enriched)
	if err != nil {
		return err
	}
	sig := Sign(f.secret, canonical)

	route := f.registry.Resolve(ctx, enriched.Slug)

	u, err := url.Parse(route.Endpoint)
	if err != nil {
		return fmt.Errorf("invalid sink endpoint %q: %w", route.Endpoint, err)
	}
	q := u.Query()
	q.Set("sig", sig)
	q.Set("partition", route.Partition)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(canonical))
	if err != nil {
		return fmt.Errorf("failed to build sink request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Signature", sig)
	req.Header.Set("X-Partition-Name", route.Partition)

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("sink request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // cap at 1MB

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		logger.ErrorLogger.Errorf("Sink returned %d for booking %s: %s", resp.StatusCode, enriched.BookingID, string(body))
		return fmt.Errorf("sink returned status %d", resp.StatusCode)
	}

	var ack Ack
	if err := json.Unmarshal(body, &ack); err != nil {
		return fmt.Errorf("unreadable sink acknowledgment: %w", err)
	}
	if !ack.Success {
		return fmt.Errorf("sink rejected booking: %s", ack.Message)
	}

	logger.InfoLogger.Infof("Booking %s forwarded to partition %s", enriched.BookingID, route.Partition)
	return nil
}
