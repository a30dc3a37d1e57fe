package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/innkeep/enquiry/models/booking_models"
)

func validRequest() *booking_models.BookingRequest {
	return &booking_models.BookingRequest{
		Name:    "Asha",
		Phone:   "+911234567890",
		Slug:    "lakeview",
		CheckIn: "2026-05-01",
	}
}

func TestValidateAcceptsCompleteRequest(t *testing.T) {
	require.Nil(t, Validate(validRequest()))
}

func TestValidateRejectsMissingFields(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *booking_models.BookingRequest)
		field   string
	}{
		{"missing name", func(r *booking_models.BookingRequest) { r.Name = "" }, "name"},
		{"blank name", func(r *booking_models.BookingRequest) { r.Name = "   " }, "name"},
		{"name too long", func(r *booking_models.BookingRequest) { r.Name = strings.Repeat("a", 101) }, "name"},
		{"missing slug", func(r *booking_models.BookingRequest) { r.Slug = "" }, "slug"},
		{"no contact at all", func(r *booking_models.BookingRequest) { r.Phone = "" }, "contact"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)
			ferr := Validate(req)
			require.NotNil(t, ferr)
			assert.Equal(t, tt.field, ferr.Field)
			assert.NotEmpty(t, ferr.Reason)
		})
	}
}

func TestValidateNameLengthCountsRunes(t *testing.T) {
	req := validRequest()

	// 50 Devanagari characters are 150 bytes but well under the limit.
	req.Name = strings.Repeat("अ", 50)
	assert.Nil(t, Validate(req))

	req.Name = strings.Repeat("अ", 100)
	assert.Nil(t, Validate(req))

	req.Name = strings.Repeat("अ", 101)
	ferr := Validate(req)
	require.NotNil(t, ferr)
	assert.Equal(t, "name", ferr.Field)
}

func TestValidateEmailPattern(t *testing.T) {
	req := validRequest()
	req.Phone = ""

	req.Email = "asha@example.com"
	assert.Nil(t, Validate(req))

	req.Email = "not-an-email"
	ferr := Validate(req)
	require.NotNil(t, ferr)
	assert.Equal(t, "email", ferr.Field)
}

func TestValidatePhonePattern(t *testing.T) {
	tests := []struct {
		phone string
		ok    bool
	}{
		{"+911234567890", true},
		{"1234567", true},
		{"(022) 555-0101", true},
		{"123456", false},        // too short
		{"abc1234567", false},    // letters
		{strings.Repeat("1", 25), false}, // too long
	}

	for _, tt := range tests {
		req := validRequest()
		req.Phone = tt.phone
		ferr := Validate(req)
		if tt.ok {
			assert.Nilf(t, ferr, "expected %q to be accepted", tt.phone)
		} else {
			require.NotNilf(t, ferr, "expected %q to be rejected", tt.phone)
			assert.Equal(t, "phone", ferr.Field)
		}
	}
}
