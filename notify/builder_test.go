package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/innkeep/enquiry/models/booking_models"
	"github.com/innkeep/enquiry/models/property_models"
	"github.com/innkeep/enquiry/quota"
)

func enrichedFixture() *booking_models.EnrichedBooking {
	return &booking_models.EnrichedBooking{
		BookingID:    "bk-1",
		Name:         "Asha",
		Email:        "asha@example.com",
		Phone:        "+911234567890",
		Slug:         "lakeview",
		PropertyName: "Lakeview Homestay",
		CheckIn:      "2026-05-01",
		Guests:       2,
	}
}

func configFixture() *property_models.PropertyConfig {
	return &property_models.PropertyConfig{
		Slug:        "lakeview",
		DisplayName: "Lakeview Homestay",
		Language:    "en",
		EnabledChannels: []property_models.Channel{
			property_models.ChannelEmail,
			property_models.ChannelWhatsApp,
		},
		OwnerContacts: map[property_models.Channel]string{
			property_models.ChannelEmail:    "owner@lakeview.example",
			property_models.ChannelWhatsApp: "+919999999999",
		},
	}
}

func allowAll() *quota.Evaluation {
	return &quota.Evaluation{AllowedChannels: []property_models.Channel{
		property_models.ChannelEmail,
		property_models.ChannelWhatsApp,
		property_models.ChannelSMS,
	}}
}

func TestBuildRendersOwnerAndGuest(t *testing.T) {
	set := BuildInstructions(enrichedFixture(), configFixture(), allowAll())

	owner := set.Instructions[RoleOwner]
	require.Contains(t, owner, property_models.ChannelEmail)
	assert.Equal(t, "owner@lakeview.example", owner[property_models.ChannelEmail].Address)
	assert.Contains(t, owner[property_models.ChannelEmail].Subject, "Lakeview Homestay")

	guest := set.Instructions[RoleGuest]
	require.Contains(t, guest, property_models.ChannelEmail)
	assert.Equal(t, "asha@example.com", guest[property_models.ChannelEmail].Address)
	require.Contains(t, guest, property_models.ChannelWhatsApp)
	assert.Equal(t, "+911234567890", guest[property_models.ChannelWhatsApp].Address)
}

func TestBuildSkipsQuotaDisallowedChannels(t *testing.T) {
	eval := &quota.Evaluation{AllowedChannels: []property_models.Channel{property_models.ChannelEmail}}
	set := BuildInstructions(enrichedFixture(), configFixture(), eval)

	assert.NotContains(t, set.Instructions[RoleOwner], property_models.ChannelWhatsApp)
	assert.NotContains(t, set.Instructions[RoleGuest], property_models.ChannelWhatsApp)
}

func TestBuildSkipsDisabledChannels(t *testing.T) {
	cfg := configFixture()
	cfg.EnabledChannels = []property_models.Channel{property_models.ChannelEmail}

	set := BuildInstructions(enrichedFixture(), cfg, allowAll())
	assert.NotContains(t, set.Instructions[RoleOwner], property_models.ChannelWhatsApp)
}

func TestBuildNeverEmitsWithoutAddress(t *testing.T) {
	t.Run("guest without phone gets no messaging instruction", func(t *testing.T) {
		b := enrichedFixture()
		b.Phone = ""
		set := BuildInstructions(b, configFixture(), allowAll())
		assert.NotContains(t, set.Instructions[RoleGuest], property_models.ChannelWhatsApp)
		assert.Contains(t, set.Instructions[RoleGuest], property_models.ChannelEmail)
	})

	t.Run("owner without any address gets nothing", func(t *testing.T) {
		cfg := configFixture()
		cfg.OwnerContacts = nil
		cfg.GenericContact = ""
		set := BuildInstructions(enrichedFixture(), cfg, allowAll())
		assert.Empty(t, set.Instructions[RoleOwner])
	})
}

func TestBuildOwnerAddressPrecedence(t *testing.T) {
	cfg := configFixture()
	cfg.GenericContact = "generic@lakeview.example"
	delete(cfg.OwnerContacts, property_models.ChannelEmail)

	set := BuildInstructions(enrichedFixture(), cfg, allowAll())
	assert.Equal(t, "generic@lakeview.example", set.Instructions[RoleOwner][property_models.ChannelEmail].Address)
}

func TestBuildLocalization(t *testing.T) {
	cfg := configFixture()
	cfg.Language = "hi"
	set := BuildInstructions(enrichedFixture(), cfg, allowAll())
	assert.Contains(t, set.Instructions[RoleGuest][property_models.ChannelEmail].Subject, "mil gayi hai")

	cfg.Language = "fr" // unsupported, falls back to English
	set = BuildInstructions(enrichedFixture(), cfg, allowAll())
	assert.Contains(t, set.Instructions[RoleGuest][property_models.ChannelEmail].Subject, "We received")
}

func TestBuildEscapesHTMLInEmailBody(t *testing.T) {
	b := enrichedFixture()
	b.Name = "<script>alert(1)</script>"
	set := BuildInstructions(b, configFixture(), allowAll())
	assert.NotContains(t, set.Instructions[RoleOwner][property_models.ChannelEmail].HTML, "<script>")
}

func TestChannelsAndEmpty(t *testing.T) {
	set := BuildInstructions(enrichedFixture(), configFixture(), allowAll())
	assert.ElementsMatch(t, []property_models.Channel{
		property_models.ChannelEmail,
		property_models.ChannelWhatsApp,
	}, set.Channels())
	assert.False(t, set.Empty())

	empty := BuildInstructions(enrichedFixture(), &property_models.PropertyConfig{Slug: "x"}, allowAll())
	assert.True(t, empty.Empty())
}
