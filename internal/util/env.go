package util

import (
	"os"
	"strconv"

	"github.com/FaiyazAwsaf/space-biology-engine/pkg/logger"

	"github.com/joho/godotenv"
)

// LoadEnv loads a .env file when one is present. Deployed environments rely
// on the process environment alone.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file found, using system environment variables")
	}
}

// GetEnv returns the value of key, or the empty string when unset.
func GetEnv(key string) string {
	return os.Getenv(key)
}

// GetEnvString returns the value of key, or fallback when unset. An empty
// value set explicitly is returned as-is.
func GetEnvString(key string, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// GetEnvNumeric parses key as a float, falling back when unset or unparsable.
func GetEnvNumeric(key string, fallback int) float64 {
	value, ok := os.LookupEnv(key)
	if !ok {
		return float64(fallback)
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return float64(fallback)
	}
	return parsed
}

// GetEnvBool interprets key as a boolean flag. Anything other than the
// literals "true" and "false" yields the fallback.
func GetEnvBool(key string, fallback bool) bool {
	switch os.Getenv(key) {
	case "true":
		return true
	case "false":
		return false
	default:
		return fallback
	}
}
