package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/innkeep/enquiry/logger"
)

// LoadEnv loads the .env file if one is present. Missing files are fine in
// deployed environments where config comes from the process environment.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		logger.InfoLogger.Info("No .env file found, using process environment")
	}
}

// Config carries every setting the intake pipeline needs. It is built once
// in main and handed to the controller at construction; pipeline packages
// never read the environment themselves.
type Config struct {
	// Durable sink
	SinkEndpoint     string
	SinkSecret       string
	DefaultPartition string
	SinkTimeout      time.Duration

	// Per-tenant booking-forward ceiling used when a tenant config does not
	// set its own, and the TTL of the window bucket.
	DefaultRateCeiling int
	RateWindow         time.Duration

	// Duplicate-submission marker lifetime.
	DedupTTL time.Duration

	// Secondary ceiling applied by the notification dispatcher, independent
	// of the booking-forward ceiling.
	DispatchCeiling int
	DispatchTimeout time.Duration

	// SMTP settings for the e-mail channel provider.
	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	SMTPFrom string

	// Provider webhook endpoints for the messaging channels.
	WhatsAppEndpoint string
	SMSEndpoint      string
}

// FromEnv builds a Config from the environment, applying defaults for
// everything that is safe to default. The sink endpoint and secret have no
// defaults; main refuses to start without them.
func FromEnv() Config {
	return Config{
		SinkEndpoint:     os.Getenv("SINK_ENDPOINT"),
		SinkSecret:       os.Getenv("SINK_SECRET"),
		DefaultPartition: envOr("SINK_PARTITION", "bookings"),
		SinkTimeout:      10 * time.Second,

		DefaultRateCeiling: envIntOr("RATE_CEILING", 10),
		RateWindow:         time.Hour,

		DedupTTL: time.Hour,

		DispatchCeiling: envIntOr("DISPATCH_CEILING", 20),
		DispatchTimeout: 8 * time.Second,

		SMTPHost: os.Getenv("SMTP_HOST"),
		SMTPPort: envIntOr("SMTP_PORT", 587),
		SMTPUser: os.Getenv("SMTP_USER"),
		SMTPPass: os.Getenv("SMTP_PASS"),
		SMTPFrom: envOr("SMTP_FROM", "bookings@innkeep.app"),

		WhatsAppEndpoint: os.Getenv("WHATSAPP_PROVIDER_URL"),
		SMSEndpoint:      os.Getenv("SMS_PROVIDER_URL"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logger.ErrorLogger.Errorf("Invalid integer for %s: %q, using default %d", key, v, fallback)
		return fallback
	}
	return n
}
