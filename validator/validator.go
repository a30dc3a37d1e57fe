package validator

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/innkeep/enquiry/models/booking_models"
)

const maxNameLength = 100

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phonePattern = regexp.MustCompile(`^\+?\(?[0-9][0-9\s\-().]{5,18}[0-9]$`)
)

// FieldError names the offending field and why it was rejected. It is the
// only failure shape validation produces; malformed input never panics.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Validate structurally checks a booking request. Pure function, no I/O.
func Validate(req *booking_models.BookingRequest) *FieldError {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return &FieldError{Field: "name", Reason: "name is required"}
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return &FieldError{Field: "name", Reason: "name must be 100 characters or fewer"}
	}

	if strings.TrimSpace(req.Slug) == "" {
		return &FieldError{Field: "slug", Reason: "property is required"}
	}

	email := strings.TrimSpace(req.Email)
	phone := strings.TrimSpace(req.Phone)
	if email == "" && phone == "" {
		return &FieldError{Field: "contact", Reason: "an email address or phone number is required"}
	}
	if email != "" && !emailPattern.MatchString(email) {
		return &FieldError{Field: "email", Reason: "email address is not valid"}
	}
	if phone != "" && !phonePattern.MatchString(phone) {
		return &FieldError{Field: "phone", Reason: "phone number is not valid"}
	}

	return nil
}
