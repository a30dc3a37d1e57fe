package booking_models

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/innkeep/enquiry/models/property_models"
)

// BookingRequest is the raw browser submission. It lives for one request
// only and is never persisted in this service.
type BookingRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Slug     string `json:"slug"`
	CheckIn  string `json:"checkIn"`
	CheckOut string `json:"checkOut"`
	Guests   int    `json:"guests"`
	RoomType string `json:"roomType"`
	Notes    string `json:"notes"`
}

// Provenance is best-effort network metadata attached for audit on the sink
// side. It is forwarded to the durable sink only, never to channel providers.
type Provenance struct {
	ClientIP  string `json:"client_ip"`
	UserAgent string `json:"user_agent"`
}

// EnrichedBooking is the immutable unit that gets signed and forwarded.
// Retries must rebuild it rather than mutate it.
type EnrichedBooking struct {
	BookingID     string     `json:"booking_id"`
	ReceivedAt    time.Time  `json:"received_at"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Phone         string     `json:"phone"`
	Slug          string     `json:"slug"`
	PropertyName  string     `json:"property_name"`
	CheckIn       string     `json:"check_in"`
	CheckOut      string     `json:"check_out"`
	Guests        int        `json:"guests"`
	RoomType      string     `json:"room_type"`
	Notes         string     `json:"notes"`
	OwnerAddress  string     `json:"owner_address"`
	ConfigVersion int        `json:"config_version"`
	Provenance    Provenance `json:"provenance"`
}

// NewEnrichedBooking builds the forwardable booking from a validated request
// and the tenant's config. The owner address is resolved for the
// always-available channel: per-channel override, then generic contact.
func NewEnrichedBooking(req *BookingRequest, cfg *property_models.PropertyConfig, clientIP, userAgent string) (*EnrichedBooking, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate booking ID: %w", err)
	}

	return &EnrichedBooking{
		BookingID:     id.String(),
		ReceivedAt:    time.Now().UTC(),
		Name:          req.Name,
		Email:         req.Email,
		Phone:         req.Phone,
		Slug:          req.Slug,
		PropertyName:  cfg.DisplayName,
		CheckIn:       req.CheckIn,
		CheckOut:      req.CheckOut,
		Guests:        req.Guests,
		RoomType:      req.RoomType,
		Notes:         req.Notes,
		OwnerAddress:  cfg.OwnerAddress(property_models.ChannelEmail),
		ConfigVersion: cfg.Version,
		Provenance: Provenance{
			ClientIP:  clientIP,
			UserAgent: userAgent,
		},
	}, nil
}
