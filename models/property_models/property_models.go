package property_models

// Channel identifies a notification channel.
type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelWhatsApp Channel = "whatsapp"
	ChannelSMS      Channel = "sms"
)

// Plan tiers. Trial and starter are entry tiers restricted to e-mail; the
// paid tiers meter the messaging channels monthly.
const (
	TierTrial    = "trial"
	TierStarter  = "starter"
	TierStandard = "standard"
	TierPremium  = "premium"
)

const (
	StatusActive      = "active"
	StatusInactive    = "inactive"
	StatusMaintenance = "maintenance"
)

// ChannelQuota is the monthly allowance and usage for one metered channel.
type ChannelQuota struct {
	Limit int `json:"limit"`
	Used  int `json:"used"`
}

func (q ChannelQuota) Remaining() int {
	r := q.Limit - q.Used
	if r < 0 {
		return 0
	}
	return r
}

// PaymentSettings marks tenants that have switched their site to a paid
// booking flow this service does not implement.
type PaymentSettings struct {
	Enabled bool `json:"enabled"`
}

// PropertyConfig is a tenant's record in the property directory. The
// pipeline reads it on every request and writes back only the quota usage
// counters and the quota month marker; concurrent writers are
// last-writer-wins by design.
type PropertyConfig struct {
	Slug        string `json:"slug"`
	DisplayName string `json:"display_name"`
	Status      string `json:"status"`
	PlanTier    string `json:"plan_tier"`

	// Monthly metered-channel quotas, keyed by channel name, and the
	// YYYY-MM marker of the month the counters belong to.
	Quotas     map[Channel]*ChannelQuota `json:"quotas"`
	QuotaMonth string                    `json:"quota_month"`

	// Channels the tenant has switched on, regardless of quota state.
	EnabledChannels []Channel `json:"enabled_channels"`

	// Owner contact routing: per-channel addresses take precedence over the
	// generic contact address.
	OwnerContacts  map[Channel]string `json:"owner_contacts"`
	GenericContact string             `json:"generic_contact"`

	// Published contact details returned to guests when the pipeline has to
	// hand them off to a manual channel.
	PublicPhone string `json:"public_phone"`
	PublicEmail string `json:"public_email"`

	Language    string          `json:"language"`
	RateCeiling int             `json:"rate_ceiling"`
	Payment     PaymentSettings `json:"payment"`

	// Bumped by the dashboard on every config edit; stamped into forwarded
	// bookings so the sink side can tell which config produced them.
	Version int `json:"version"`
}

// OwnerAddress resolves the owner's address for a channel: explicit
// per-channel override first, then the generic contact, then none.
func (c *PropertyConfig) OwnerAddress(ch Channel) string {
	if addr, ok := c.OwnerContacts[ch]; ok && addr != "" {
		return addr
	}
	return c.GenericContact
}

// ContactFallback renders the tenant's published contact details for
// user-facing failure messages. Empty when the tenant published nothing.
func (c *PropertyConfig) ContactFallback() string {
	switch {
	case c.PublicPhone != "" && c.PublicEmail != "":
		return c.PublicPhone + " / " + c.PublicEmail
	case c.PublicPhone != "":
		return c.PublicPhone
	default:
		return c.PublicEmail
	}
}
