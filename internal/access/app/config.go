package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Issuer        string // Issuer claim of grant tokens (default: careshare-access)
	InternalToken string // Required: bearer token of the service-to-service routes

	OwnerJWKSURL string // Optional: JWKS endpoint of the identity provider issuing owner tokens
	OwnerIssuer  string // Optional: expected issuer of owner tokens (empty accepts any)

	SigningKeyFile string // Optional: Ed25519 PEM for grant tokens, ephemeral when unset
	MasterKeyFile  string // Optional: seals the signing key file with AES-256-GCM
	PolicyFile     string // Optional: YAML lockout policy overriding the defaults
	DatabaseFile   string // Optional: path to SQLite database file (default: ./access.db)
	PepperFile     string // Optional: path to file containing the hashing pepper (default: ./pepper)

	GuardBackend  string // Attempt counter backend (sqlite, redis) (default: sqlite)
	RedisAddr     string // Redis address when GuardBackend is redis (default: localhost:6379)
	RedisPassword string // Optional: Redis password
	RedisDB       int    // Redis database number (default: 0)

	DeliveryWebhookURL string        // Optional: gateway receiving OTP messages, logged when unset
	DeliveryTimeout    time.Duration // Bound on a single OTP delivery (default: 5s)
	OTPTTL             time.Duration // Lifetime of an OTP challenge (default: 10m)
	GrantTTL           time.Duration // Lifetime of a viewer grant token (default: 30m)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

func LoadConfig() Config {
	return Config{
		Issuer:        getEnvOrDefault("ACCESS_ISSUER", "careshare-access"),
		InternalToken: os.Getenv("ACCESS_INTERNAL_TOKEN"),

		OwnerJWKSURL: os.Getenv("ACCESS_OWNER_JWKS_URL"),
		OwnerIssuer:  os.Getenv("ACCESS_OWNER_ISSUER"),

		SigningKeyFile: os.Getenv("ACCESS_SIGNING_KEY_FILE"),
		MasterKeyFile:  os.Getenv("ACCESS_MASTER_KEY_FILE"),
		PolicyFile:     os.Getenv("ACCESS_POLICY_FILE"),
		DatabaseFile:   getEnvOrDefault("ACCESS_DATABASE_FILE", "access.db"),
		PepperFile:     getEnvOrDefault("ACCESS_PEPPER_FILE", "pepper"),

		GuardBackend:  getEnvOrDefault("ACCESS_GUARD_BACKEND", "sqlite"),
		RedisAddr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvIntOrDefault("REDIS_DB", 0),

		DeliveryWebhookURL: os.Getenv("ACCESS_DELIVERY_WEBHOOK_URL"),
		DeliveryTimeout:    getEnvDurationOrDefault("ACCESS_DELIVERY_TIMEOUT", 5*time.Second),
		OTPTTL:             getEnvDurationOrDefault("ACCESS_OTP_TTL", 10*time.Minute),
		GrantTTL:           getEnvDurationOrDefault("ACCESS_GRANT_TTL", 30*time.Minute),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer seconds
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
