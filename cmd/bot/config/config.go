package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/c2h5oh/datasize"
	"github.com/joho/godotenv"
)

const (
	ModePolling = "polling"
	ModeWebhook = "webhook"
)

type Config struct {
	Port string

	TelegramToken string
	BotMode       string
	WebhookURL    string
	WebhookSecret string
	MaxUploadSize datasize.ByteSize

	AWSRegion       string
	ImageID         string
	SubnetID        string
	SSHUser         string
	CPUWindow       time.Duration
	CPUPeriod       time.Duration
	ProviderTimeout time.Duration

	JwtSecret string
	NatsURL   string

	OtelEnabled     bool
	OtelEndpoint    string
	OtelServiceName string
	OtelInsecure    bool
	Version         string
}

// Load loads configuration from environment variables
// Automatically loads .env file if present
func Load() (*Config, error) {
	// Try to load .env file (fail silently if not present)
	_ = godotenv.Load()

	var errs []error

	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		TelegramToken:   getEnv("TELEGRAM_BOT_TOKEN", ""),
		BotMode:         getEnv("BOT_MODE", ModePolling),
		WebhookURL:      getEnv("WEBHOOK_URL", ""),
		WebhookSecret:   getEnv("WEBHOOK_SECRET", ""),
		AWSRegion:       getEnv("AWS_REGION", ""),
		ImageID:         getEnv("AMI_ID", "ami-08b782cba29b6fee3"),
		SubnetID:        getEnv("SUBNET_ID", "subnet-0a540844da375355b"),
		SSHUser:         getEnv("SSH_USER", "ec2-user"),
		JwtSecret:       getEnv("JWT_SECRET", ""),
		NatsURL:         getEnv("NATS_URL", ""),
		OtelEndpoint:    getEnv("OTEL_ENDPOINT", "localhost:4317"),
		OtelServiceName: getEnv("OTEL_SERVICE_NAME", "awsbot"),
		Version:         getEnv("VERSION", "dev"),
	}

	cfg.CPUWindow = getDuration("CPU_WINDOW", time.Hour, &errs)
	cfg.CPUPeriod = getDuration("CPU_PERIOD", 5*time.Minute, &errs)
	cfg.ProviderTimeout = getDuration("PROVIDER_TIMEOUT", 30*time.Second, &errs)
	cfg.OtelEnabled = getBool("OTEL_ENABLED", false, &errs)
	cfg.OtelInsecure = getBool("OTEL_INSECURE", true, &errs)

	if err := cfg.MaxUploadSize.UnmarshalText([]byte(getEnv("MAX_UPLOAD_SIZE", "10MB"))); err != nil {
		errs = append(errs, fmt.Errorf("MAX_UPLOAD_SIZE: %w", err))
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings needed to serve chat traffic.
func (c *Config) Validate() error {
	var errs []error

	if c.TelegramToken == "" {
		errs = append(errs, errors.New("TELEGRAM_BOT_TOKEN is required"))
	}
	switch c.BotMode {
	case ModePolling:
	case ModeWebhook:
		if c.WebhookURL == "" {
			errs = append(errs, errors.New("WEBHOOK_URL is required in webhook mode"))
		}
		if c.WebhookSecret == "" {
			errs = append(errs, errors.New("WEBHOOK_SECRET is required in webhook mode"))
		}
	default:
		errs = append(errs, fmt.Errorf("BOT_MODE must be %q or %q, got %q", ModePolling, ModeWebhook, c.BotMode))
	}
	errs = append(errs, c.ValidateCommands())

	return errors.Join(errs...)
}

// ValidateCommands checks the settings the command handlers use.
func (c *Config) ValidateCommands() error {
	var errs []error

	if c.ImageID == "" {
		errs = append(errs, errors.New("AMI_ID must not be empty"))
	}
	if c.SubnetID == "" {
		errs = append(errs, errors.New("SUBNET_ID must not be empty"))
	}
	if c.CPUWindow <= 0 {
		errs = append(errs, errors.New("CPU_WINDOW must be positive"))
	}
	if c.CPUPeriod < time.Minute || c.CPUPeriod%time.Minute != 0 {
		errs = append(errs, errors.New("CPU_PERIOD must be a whole number of minutes"))
	}
	if c.ProviderTimeout <= 0 {
		errs = append(errs, errors.New("PROVIDER_TIMEOUT must be positive"))
	}

	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration, errs *[]error) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return defaultValue
	}
	return d
}

func getBool(key string, defaultValue bool, errs *[]error) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return defaultValue
	}
	return b
}
