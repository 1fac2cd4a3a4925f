package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// Persistence
	PersistenceBackend string
	DataDir            string
	DatabaseURL        string
	RedisAddr          string
	RedisPassword      string
	RedisTLS           bool
	RedisKeyPrefix     string
	S3Bucket           string
	S3Prefix           string

	// AWS
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	// Confirmation messages
	ConfirmationProvider string
	GeminiAPIKey         string
	GeminiModelID        string
	BedrockModelID       string
	ConfirmationTimeout  time.Duration

	// HTTP
	CORSAllowedOrigins  []string
	WriteRateLimitRPS   float64
	WriteRateLimitBurst int
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		PersistenceBackend: strings.ToLower(strings.TrimSpace(getEnv("PERSISTENCE_BACKEND", "file"))),
		DataDir:            getEnv("DATA_DIR", "./data"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		RedisAddr:          getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisTLS:           getEnvAsBool("REDIS_TLS", false),
		RedisKeyPrefix:     getEnv("REDIS_KEY_PREFIX", "chamber:"),
		S3Bucket:           getEnv("S3_BUCKET", ""),
		S3Prefix:           getEnv("S3_PREFIX", "scheduler/"),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		ConfirmationProvider: strings.ToLower(strings.TrimSpace(getEnv("CONFIRMATION_PROVIDER", "gemini"))),
		GeminiAPIKey:         getEnv("GEMINI_API_KEY", getEnv("API_KEY", "")),
		GeminiModelID:        getEnv("GEMINI_MODEL_ID", "gemini-2.5-flash"),
		BedrockModelID:       getEnv("BEDROCK_MODEL_ID", ""),
		ConfirmationTimeout:  getEnvAsDuration("CONFIRMATION_TIMEOUT", 0),

		CORSAllowedOrigins:  getEnvAsList("CORS_ALLOWED_ORIGINS"),
		WriteRateLimitRPS:   getEnvAsFloat("WRITE_RATE_LIMIT_RPS", 0),
		WriteRateLimitBurst: getEnvAsInt("WRITE_RATE_LIMIT_BURST", 10),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma separated variable, dropping blanks.
func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, ""), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
