package config

import (
	"os"
	"strconv"
	"time"
)

// Config carries all runtime settings, loaded once from the environment in
// main and handed to components at construction.
type Config struct {
	Port       string
	AWSRegion  string
	JWTSecret  string
	SessionTTL time.Duration

	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string
}

// Load reads configuration from the environment, applying dev defaults.
func Load() Config {
	return Config{
		Port:             envOr("PORT", "8080"),
		AWSRegion:        os.Getenv("AWS_REGION"),
		JWTSecret:        envOr("JWT_SECRET", "dev-secret-change-me"),
		SessionTTL:       time.Duration(envInt("SESSION_TTL_HOURS", 24)) * time.Hour,
		TwilioAccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFromNumber: os.Getenv("TWILIO_PHONE_NUMBER"),
	}
}

// SMSConfigured reports whether a real SMS sender can be built.
func (c Config) SMSConfigured() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != "" && c.TwilioFromNumber != ""
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
