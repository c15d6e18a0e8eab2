package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	LogLevel      string
	DatabaseURL   string
	JWTSecret     string
	GeminiAPIKey  string
	GeminiModelID string

	// AI advisory request budget; the call fails fast once exceeded.
	AdvisoryTimeout time.Duration

	// Free-tier ceiling per metered service per calendar month.
	FreeTierMonthlyLimit int

	RedisAddr        string
	RedisPassword    string
	DoctorCacheTTL   time.Duration
	SendGridAPIKey   string
	SendGridFrom     string
	SendGridFromName string

	CORSAllowedOrigins string
	RateLimitPerSec    float64
	RateLimitBurst     int
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:                 getEnv("PORT", "8080"),
		Env:                  getEnv("ENV", "development"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		JWTSecret:            getEnv("JWT_SECRET", ""),
		GeminiAPIKey:         getEnv("GEMINI_API_KEY", ""),
		GeminiModelID:        getEnv("GEMINI_MODEL_ID", "gemini-2.5-flash"),
		AdvisoryTimeout:      getEnvAsDuration("ADVISORY_TIMEOUT", 30*time.Second),
		FreeTierMonthlyLimit: getEnvAsInt("FREE_TIER_MONTHLY_LIMIT", 3),
		RedisAddr:            getEnv("REDIS_ADDR", ""),
		RedisPassword:        getEnv("REDIS_PASSWORD", ""),
		DoctorCacheTTL:       getEnvAsDuration("DOCTOR_CACHE_TTL", 5*time.Minute),
		SendGridAPIKey:       getEnv("SENDGRID_API_KEY", ""),
		SendGridFrom:         getEnv("SENDGRID_FROM_EMAIL", "noreply@sensidoc.com"),
		SendGridFromName:     getEnv("SENDGRID_FROM_NAME", "SensiDoc"),
		CORSAllowedOrigins:   getEnv("CORS_ALLOWED_ORIGINS", "*"),
		RateLimitPerSec:      getEnvAsFloat("RATE_LIMIT_PER_SEC", 10),
		RateLimitBurst:       getEnvAsInt("RATE_LIMIT_BURST", 20),
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
