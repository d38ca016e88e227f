package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Enrollment workflow modes.
const (
	EnrollmentTransactional = "transactional"
	EnrollmentSequential    = "sequential"
)

var ErrMissingSecret = errors.New("ACCESS_TOKEN_SECRET is required")

// Config holds application configuration
type Config struct {
	Port string

	DBDriver string // postgres, mysql or sqlite
	DBDSN    string

	TokenSecret string
	TokenTTL    time.Duration

	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	CorsOrigins     string

	EnrollmentMode string

	StripeSecretKey string
	StripeApiURL    string
	PaymentCurrency string

	SendgridApiKey string
	EmailSender    string
}

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	cfg := &Config{
		Port: getEnv("PORT", "5000"),

		DBDriver: strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DBDSN:    getEnv("DB_DSN", ""),

		TokenSecret: getEnv("ACCESS_TOKEN_SECRET", ""),
		TokenTTL:    getEnvDuration("TOKEN_TTL", 5*time.Hour),

		RequestTimeout:  getEnvDuration("REQUEST_TIMEOUT", 10*time.Second),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		CorsOrigins:     getEnv("CORS_ORIGINS", "*"),

		EnrollmentMode: strings.ToLower(getEnv("ENROLLMENT_MODE", EnrollmentTransactional)),

		StripeSecretKey: getEnv("STRIPE_SECRET_KEY", ""),
		StripeApiURL:    getEnv("STRIPE_API_URL", "https://api.stripe.com/v1"),
		PaymentCurrency: getEnv("PAYMENT_CURRENCY", "usd"),

		SendgridApiKey: getEnv("SENDGRID_API_KEY", ""),
		EmailSender:    getEnv("EMAIL_SENDER", "no-reply@languagevio.com"),
	}

	if cfg.DBDSN == "" && cfg.DBDriver == "postgres" {
		cfg.DBDSN = fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			getEnv("DB_HOST", "localhost"),
			getEnv("DB_USER", "postgres"),
			getEnv("DB_PASSWORD", ""),
			getEnv("DB_NAME", "languagevio"),
			getEnv("DB_PORT", "5432"),
		)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if cfg.StripeSecretKey == "" {
		log.Println("Warning: STRIPE_SECRET_KEY not set. Payment intents will be rejected by the gateway.")
	}
	if cfg.SendgridApiKey == "" {
		log.Println("Warning: SENDGRID_API_KEY not set. Enrollment emails are disabled.")
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.TokenSecret == "" {
		return ErrMissingSecret
	}
	switch c.DBDriver {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.DBDSN == "" {
		return fmt.Errorf("DB_DSN is required for driver %s", c.DBDriver)
	}
	switch c.EnrollmentMode {
	case EnrollmentTransactional, EnrollmentSequential:
	default:
		return fmt.Errorf("unsupported ENROLLMENT_MODE %q", c.EnrollmentMode)
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}

// getEnvDuration accepts Go durations ("5h", "90s") or a bare number of seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs := getEnvInt(key, -1); secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	log.Printf("Error converting environment variable %s to duration, using %s", key, defaultValue)
	return defaultValue
}
