package quota

import (
	"time"

	"github.com/innkeep/enquiry/models/property_models"
)

// ChannelSnapshot is the user-facing view of one metered channel's budget.
type ChannelSnapshot struct {
	Limit     int `json:"limit"`
	Used      int `json:"used"`
	Remaining int `json:"remaining"`
}

// Evaluation is the outcome of a quota check: which channels may fire right
// now, the budget snapshot behind that decision, and an optional upgrade
// hint when a metered channel is exhausted. It never blocks the booking
// itself; quota governs notifications only.
type Evaluation struct {
	AllowedChannels []property_models.Channel                    `json:"allowed_channels"`
	Snapshot        map[property_models.Channel]*ChannelSnapshot `json:"snapshot"`
	UpgradeHint     string                                       `json:"upgrade_hint,omitempty"`
	Reason          string                                       `json:"reason"`
}

// Allowed reports whether the evaluation permits a channel.
func (e *Evaluation) Allowed(ch property_models.Channel) bool {
	for _, a := range e.AllowedChannels {
		if a == ch {
			return true
		}
	}
	return false
}

// MonthMarker formats t as the YYYY-MM marker stored on the config.
func MonthMarker(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// ResetIfNewMonth zeroes the usage counters when the stored quota month no
// longer matches now. Returns true when a reset happened, in which case the
// caller must persist the config before evaluating. Running it again in the
// same month is a no-op, so the reset happens exactly once per boundary.
func ResetIfNewMonth(cfg *property_models.PropertyConfig, now time.Time) bool {
	marker := MonthMarker(now)
	if cfg.QuotaMonth == marker {
		return false
	}
	for _, q := range cfg.Quotas {
		q.Used = 0
	}
	cfg.QuotaMonth = marker
	return true
}

func entryTier(tier string) bool {
	return tier == property_models.TierTrial || tier == property_models.TierStarter
}

// Evaluate decides which notification channels the tenant's plan currently
// affords. Entry tiers get the always-available channel and nothing else,
// with no quota math. Paid tiers get each metered channel while its monthly
// budget has headroom.
func Evaluate(cfg *property_models.PropertyConfig, now time.Time) *Evaluation {
	if entryTier(cfg.PlanTier) {
		return &Evaluation{
			AllowedChannels: []property_models.Channel{property_models.ChannelEmail},
			Snapshot:        map[property_models.Channel]*ChannelSnapshot{},
			UpgradeHint:     "Upgrade your plan to notify guests over WhatsApp and SMS.",
			Reason:          "plan includes email notifications only",
		}
	}

	eval := &Evaluation{
		AllowedChannels: []property_models.Channel{property_models.ChannelEmail},
		Snapshot:        map[property_models.Channel]*ChannelSnapshot{},
		Reason:          "within monthly quota",
	}

	exhausted := false
	for _, ch := range []property_models.Channel{property_models.ChannelWhatsApp, property_models.ChannelSMS} {
		q, ok := cfg.Quotas[ch]
		if !ok {
			continue
		}
		eval.Snapshot[ch] = &ChannelSnapshot{
			Limit:     q.Limit,
			Used:      q.Used,
			Remaining: q.Remaining(),
		}
		if q.Remaining() > 0 {
			eval.AllowedChannels = append(eval.AllowedChannels, ch)
		} else {
			exhausted = true
		}
	}

	if exhausted {
		eval.UpgradeHint = "A messaging channel hit its monthly limit. Upgrade for a higher allowance."
		eval.Reason = "one or more channels exhausted this month"
	}
	return eval
}
