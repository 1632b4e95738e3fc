package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	Environment string

	// Integration Endpoint webhooks
	TicketWebhookURL     string
	ClientDataWebhookURL string
	WebhookTimeout       time.Duration

	// Session handling
	RedisURL        string
	JWTSecret       string
	SessionIdleTTL  time.Duration
	SweepInterval   time.Duration
	ReconcileDelay  time.Duration
	MockFallback    bool
	AllowedOrigins  []string
}

func Load() *Config {
	return &Config{
		Port:        getEnv("API_PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),

		TicketWebhookURL:     getEnv("TICKET_WEBHOOK_URL", ""),
		ClientDataWebhookURL: getEnv("CLIENT_DATA_WEBHOOK_URL", ""),
		WebhookTimeout:       getEnvDuration("WEBHOOK_TIMEOUT", 10*time.Second),

		RedisURL:       getEnv("REDIS_URL", ""),
		JWTSecret:      getEnv("JWT_SECRET", "your-secret-key"),
		SessionIdleTTL: getEnvDuration("SESSION_IDLE_TTL", 30*time.Minute),
		SweepInterval:  getEnvDuration("SESSION_SWEEP_INTERVAL", time.Minute),
		ReconcileDelay: getEnvDuration("RECONCILE_DELAY", time.Second),
		MockFallback:   getEnvBool("MOCK_FALLBACK", true),
		AllowedOrigins: []string{getEnv("FRONTEND_URL", "http://localhost:5173")},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}
