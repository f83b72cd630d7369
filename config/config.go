package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

var loadOnce sync.Once

// LoadEnv loads variables from a .env file if one exists. Real environment
// variables always win over the file.
func LoadEnv() {
	loadOnce.Do(func() {
		_ = godotenv.Load()
	})
}

// Config holds everything the service reads from the environment.
type Config struct {
	Port        string
	DatabaseURL string
	RedisURL    string
	JWTSecret   string

	// Payment processor credentials. SecretKey signs client-side payment
	// confirmations and authenticates API calls, WebhookSecret authenticates
	// asynchronous deliveries.
	ProcessorKeyID         string
	ProcessorSecretKey     string
	ProcessorWebhookSecret string
	ProcessorTimeout       time.Duration

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromEmail    string

	AllowedOrigins []string
	CacheTTL       time.Duration
	// BadWordsFile is an optional word list screened against guest free text.
	BadWordsFile string
}

// Load reads Config from the environment and validates the required keys.
func Load() (*Config, error) {
	LoadEnv()

	cfg := &Config{
		Port:                   getEnv("PORT", "8081"),
		DatabaseURL:            os.Getenv("DATABASE_URL"),
		RedisURL:               os.Getenv("REDIS_URL"),
		JWTSecret:              os.Getenv("JWT_SECRET"),
		ProcessorKeyID:         os.Getenv("PROCESSOR_KEY_ID"),
		ProcessorSecretKey:     os.Getenv("PROCESSOR_SECRET_KEY"),
		ProcessorWebhookSecret: os.Getenv("PROCESSOR_WEBHOOK_SECRET"),
		ProcessorTimeout:       getDuration("PROCESSOR_TIMEOUT", 15*time.Second),
		SMTPHost:               os.Getenv("SMTP_HOST"),
		SMTPPort:               getInt("SMTP_PORT", 587),
		SMTPUsername:           os.Getenv("SMTP_USERNAME"),
		SMTPPassword:           os.Getenv("SMTP_PASSWORD"),
		FromEmail:              os.Getenv("FROM_EMAIL"),
		AllowedOrigins:         splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		CacheTTL:               getDuration("CACHE_TTL", 2*time.Minute),
		BadWordsFile:           os.Getenv("BADWORDS_FILE"),
	}

	var missing []string
	for key, val := range map[string]string{
		"DATABASE_URL":             cfg.DatabaseURL,
		"JWT_SECRET":               cfg.JWTSecret,
		"PROCESSOR_KEY_ID":         cfg.ProcessorKeyID,
		"PROCESSOR_SECRET_KEY":     cfg.ProcessorSecretKey,
		"PROCESSOR_WEBHOOK_SECRET": cfg.ProcessorWebhookSecret,
	} {
		if val == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

// MailEnabled reports whether SMTP settings are complete enough to send mail.
func (c *Config) MailEnabled() bool {
	return c.SMTPHost != "" && c.FromEmail != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
