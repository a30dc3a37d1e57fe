package notify

import (
	"fmt"
	"html/template"

	"github.com/innkeep/enquiry/models/booking_models"
	"github.com/innkeep/enquiry/models/property_models"
	"github.com/innkeep/enquiry/quota"
)

// Role identifies who a rendered instruction is addressed to.
type Role string

const (
	RoleOwner Role = "owner"
	RoleGuest Role = "guest"
)

// Instruction is one fully rendered message for one recipient on one
// channel. Email instructions carry subject + HTML body; messaging channels
// carry plain text.
type Instruction struct {
	Channel property_models.Channel `json:"channel"`
	Address string                  `json:"address"`
	Subject string                  `json:"subject,omitempty"`
	HTML    string                  `json:"html,omitempty"`
	Text    string                  `json:"text,omitempty"`
}

// InstructionSet maps recipient role to the per-channel instructions for
// that recipient. Derived deterministically, never persisted.
type InstructionSet struct {
	Slug         string
	BookingID    string
	Instructions map[Role]map[property_models.Channel]Instruction
}

type catalog struct {
	ownerSubject func(b *booking_models.EnrichedBooking) string
	ownerText    func(b *booking_models.EnrichedBooking) string
	guestSubject func(b *booking_models.EnrichedBooking) string
	guestText    func(b *booking_models.EnrichedBooking) string
}

var catalogs = map[string]catalog{
	"en": {
		ownerSubject: func(b *booking_models.EnrichedBooking) string {
			return fmt.Sprintf("New booking enquiry for %s", b.PropertyName)
		},
		ownerText: func(b *booking_models.EnrichedBooking) string {
			return fmt.Sprintf("New enquiry from %s (%s) for %s, check-in %s, %d guest(s). Ref %s.",
				b.Name, contactOf(b), b.PropertyName, orDash(b.CheckIn), b.Guests, b.BookingID)
		},
		guestSubject: func(b *booking_models.EnrichedBooking) string {
			return fmt.Sprintf("We received your enquiry for %s", b.PropertyName)
		},
		guestText: func(b *booking_models.EnrichedBooking) string {
			return fmt.Sprintf("Hi %s, thanks for your enquiry for %s (check-in %s). The property will contact you shortly. Ref %s.",
				b.Name, b.PropertyName, orDash(b.CheckIn), b.BookingID)
		},
	},
	"hi": {
		ownerSubject: func(b *booking_models.EnrichedBooking) string {
			return fmt.Sprintf("%s ke liye nayi booking enquiry", b.PropertyName)
		},
		ownerText: func(b *booking_models.EnrichedBooking) string {
			return fmt.Sprintf("%s (%s) ne %s ke liye enquiry bheji hai, check-in %s, %d mehmaan. Ref %s.",
				b.Name, contactOf(b), b.PropertyName, orDash(b.CheckIn), b.Guests, b.BookingID)
		},
		guestSubject: func(b *booking_models.EnrichedBooking) string {
			return fmt.Sprintf("%s ke liye aapki enquiry mil gayi hai", b.PropertyName)
		},
		guestText: func(b *booking_models.EnrichedBooking) string {
			return fmt.Sprintf("Namaste %s, %s ke liye aapki enquiry mil gayi hai (check-in %s). Property jald sampark karegi. Ref %s.",
				b.Name, b.PropertyName, orDash(b.CheckIn), b.BookingID)
		},
	},
}

func contactOf(b *booking_models.EnrichedBooking) string {
	if b.Email != "" {
		return b.Email
	}
	return b.Phone
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// guestAddress returns the guest's address for a channel, or "" when the
// guest cannot be reached on it.
func guestAddress(b *booking_models.EnrichedBooking, ch property_models.Channel) string {
	switch ch {
	case property_models.ChannelEmail:
		return b.Email
	case property_models.ChannelWhatsApp, property_models.ChannelSMS:
		return b.Phone
	default:
		return ""
	}
}

// BuildInstructions renders the notification set for a forwarded booking.
// A channel is rendered only when it sits in the intersection of
// tenant-enabled channels, quota-allowed channels, and channels the
// recipient has a usable address for. Pure function, no I/O.
func BuildInstructions(b *booking_models.EnrichedBooking, cfg *property_models.PropertyConfig, eval *quota.Evaluation) *InstructionSet {
	lang := cfg.Language
	cat, ok := catalogs[lang]
	if !ok {
		cat = catalogs["en"]
	}

	set := &InstructionSet{
		Slug:      cfg.Slug,
		BookingID: b.BookingID,
		Instructions: map[Role]map[property_models.Channel]Instruction{
			RoleOwner: {},
			RoleGuest: {},
		},
	}

	for _, ch := range cfg.EnabledChannels {
		if !eval.Allowed(ch) {
			continue
		}

		if addr := cfg.OwnerAddress(ch); addr != "" {
			set.Instructions[RoleOwner][ch] = render(cat.ownerSubject(b), cat.ownerText(b), ch, addr)
		}
		if addr := guestAddress(b, ch); addr != "" {
			set.Instructions[RoleGuest][ch] = render(cat.guestSubject(b), cat.guestText(b), ch, addr)
		}
	}

	return set
}

func render(subject, text string, ch property_models.Channel, addr string) Instruction {
	ins := Instruction{Channel: ch, Address: addr}
	if ch == property_models.ChannelEmail {
		ins.Subject = subject
		ins.HTML = fmt.Sprintf("<p>%s</p>", template.HTMLEscapeString(text))
	} else {
		ins.Text = text
	}
	return ins
}

// Channels lists the distinct channels the set will touch, for quota
// accounting by the caller.
func (s *InstructionSet) Channels() []property_models.Channel {
	seen := map[property_models.Channel]bool{}
	var out []property_models.Channel
	for _, byChannel := range s.Instructions {
		for ch := range byChannel {
			if !seen[ch] {
				seen[ch] = true
				out = append(out, ch)
			}
		}
	}
	return out
}

// Empty reports whether the set carries no instructions at all.
func (s *InstructionSet) Empty() bool {
	for _, byChannel := range s.Instructions {
		if len(byChannel) > 0 {
			return false
		}
	}
	return true
}
