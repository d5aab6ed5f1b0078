package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	// MissingBookingAccept makes the payment webhook acknowledge
	// notifications for unknown bookings without writing anything, so the
	// notifier does not keep retrying. MissingBookingReject returns 404
	// instead.
	MissingBookingAccept = "accept"
	MissingBookingReject = "reject"
)

type Config struct {
	Port                 string
	DBUrl                string
	JWTSecret            string
	AppEnv               string
	PaymentProvider      string
	WebhookSecret        string
	MissingBookingPolicy string
	NotifierURL          string
	NotifierAPIKey       string
	DefaultCurrency      string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	jwtSecret, exists := os.LookupEnv("JWT_SECRET")
	if !exists || jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	policy := strings.ToLower(strings.TrimSpace(getEnv("WEBHOOK_MISSING_BOOKING_POLICY", MissingBookingAccept)))
	if policy != MissingBookingAccept && policy != MissingBookingReject {
		return nil, fmt.Errorf("WEBHOOK_MISSING_BOOKING_POLICY must be %q or %q", MissingBookingAccept, MissingBookingReject)
	}

	return &Config{
		Port:                 getEnv("PORT", "8080"),
		DBUrl:                getEnv("DB_URL", ""),
		JWTSecret:            jwtSecret,
		AppEnv:               normalizeEnv(getEnv("APP_ENV", "production")),
		PaymentProvider:      getEnv("PAYMENT_PROVIDER", "mock"),
		WebhookSecret:        getEnv("PAYMENT_WEBHOOK_SECRET", ""),
		MissingBookingPolicy: policy,
		NotifierURL:          getEnv("NOTIFIER_URL", ""),
		NotifierAPIKey:       getEnv("NOTIFIER_API_KEY", ""),
		DefaultCurrency:      strings.ToLower(getEnv("DEFAULT_CURRENCY", "usd")),
	}, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func normalizeEnv(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "dev", "develop", "development", "local":
		return "development"
	case "prod", "production":
		return "production"
	case "stage", "staging":
		return "staging"
	case "test", "testing":
		return "test"
	default:
		return strings.ToLower(strings.TrimSpace(value))
	}
}
