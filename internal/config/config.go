package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Defaults applied when the environment provides no override.
const (
	DefaultAPIBaseURL     = "https://bastion-backend.vercel.app"
	DefaultRequestTimeout = 30 * time.Second
)

// LoadEnv loads variables from a .env file if present.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file found: %v", err)
	}
}

// GetEnv returns an environment variable or a default value.
func GetEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultVal
}

// GetIntEnv returns an int environment variable or a default value.
func GetIntEnv(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// GetDurationEnv returns a duration environment variable or a default value.
func GetDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

// APIBaseURL resolves the backend base URL once at startup.
func APIBaseURL() string {
	return GetEnv("BASTION_API_URL", DefaultAPIBaseURL)
}

// APIKey returns the key sent in the X-API-Key header, empty if unset.
func APIKey() string {
	return GetEnv("BASTION_API_KEY", "")
}

// RequestTimeout returns the per-request timeout for outbound API calls.
func RequestTimeout() time.Duration {
	return GetDurationEnv("BASTION_REQUEST_TIMEOUT", DefaultRequestTimeout)
}

// IsProduction checks if the app runs in production mode.
func IsProduction() bool {
	return GetEnv("ENV", "development") == "production"
}
