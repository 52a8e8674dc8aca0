package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/Annany2002/nebula-seeder/internal/logger"
)

var (
	customLog = logger.NewLogger()
)

// Defaults for the generation collaborator and the platform.
const (
	DefaultAuthorityURL   = "https://login.microsoftonline.com"
	DefaultLLMBaseURL     = "https://api.openai.com/v1/chat/completions"
	DefaultLLMModel       = "gpt-4o-mini"
	DefaultLLMTemperature = 0.7
	DefaultLLMMaxTokens   = 500
	DefaultMaxRowCount    = 100
	DefaultRateLimit      = 30
)

// Config holds application configuration values
type Config struct {
	ServerPort           string
	JWTSecret            string
	JWTExpiration        time.Duration
	OperatorPasswordHash string

	// AuthorityURL is the OAuth2 authority base URL.
	AuthorityURL string
	// HTTPTimeout applies to platform calls. Zero means no client timeout.
	HTTPTimeout time.Duration

	LLMBaseURL     string
	LLMModel       string
	LLMTemperature float64
	LLMMaxTokens   int

	MaxRowCount int

	// CORSAllowedOrigins lists browser origins for the operator API; "*" allows all.
	CORSAllowedOrigins []string
	// RateLimitPerMinute is the per-IP request budget of the operator API.
	RateLimitPerMinute int
}

// LoadConfig loads configuration from environment variables.
// It uses a .env file for local development if present (ignores it for production).
func LoadConfig() (*Config, error) {
	customLog.Println("Loading configuration from environment variables...")

	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			customLog.Warnf("Warning: Error loading .env file: %v", err)
		}
	}

	port := getEnv("SERVER_PORT", "8080")
	jwtSecret := getEnv("JWT_SECRET", "")
	jwtExpHoursStr := getEnv("JWT_EXPIRATION_HOURS", "8")
	authority := getEnv("AUTHORITY_URL", DefaultAuthorityURL)

	jwtExpHours, err := strconv.Atoi(jwtExpHoursStr)
	if err != nil || jwtExpHours <= 0 {
		customLog.Warnf("Invalid JWT_EXPIRATION_HOURS '%s'. Using default 8h. Error: %v", jwtExpHoursStr, err)
		jwtExpHours = 8
	}

	cfg := &Config{
		ServerPort:           port,
		JWTSecret:            jwtSecret,
		JWTExpiration:        time.Hour * time.Duration(jwtExpHours),
		OperatorPasswordHash: getEnv("OPERATOR_PASSWORD_HASH", ""),
		AuthorityURL:         authority,
		HTTPTimeout:          time.Duration(getEnvInt("HTTP_TIMEOUT_SECONDS", 0)) * time.Second,
		LLMBaseURL:           getEnv("LLM_BASE_URL", DefaultLLMBaseURL),
		LLMModel:             getEnv("LLM_MODEL", DefaultLLMModel),
		LLMTemperature:       getEnvFloat("LLM_TEMPERATURE", DefaultLLMTemperature),
		LLMMaxTokens:         getEnvInt("LLM_MAX_TOKENS", DefaultLLMMaxTokens),
		MaxRowCount:          getEnvInt("MAX_ROW_COUNT", DefaultMaxRowCount),
		CORSAllowedOrigins:   splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		RateLimitPerMinute:   getEnvInt("RATE_LIMIT_PER_MINUTE", DefaultRateLimit),
	}

	if cfg.MaxRowCount <= 0 {
		customLog.Warnf("Invalid MAX_ROW_COUNT %d. Using default %d.", cfg.MaxRowCount, DefaultMaxRowCount)
		cfg.MaxRowCount = DefaultMaxRowCount
	}
	if cfg.RateLimitPerMinute <= 0 {
		customLog.Warnf("Invalid RATE_LIMIT_PER_MINUTE %d. Using default %d.", cfg.RateLimitPerMinute, DefaultRateLimit)
		cfg.RateLimitPerMinute = DefaultRateLimit
	}

	customLog.Printf("Configuration loaded successfully. Port: %s, Authority: %s, Model: %s", cfg.ServerPort, cfg.AuthorityURL, cfg.LLMModel)
	return cfg, nil
}

// ValidateServer checks the settings only the operator API needs.
func (c *Config) ValidateServer() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET environment variable must be set")
	}
	if c.OperatorPasswordHash == "" {
		return errors.New("OPERATOR_PASSWORD_HASH environment variable must be set")
	}
	return nil
}

// getEnv reads an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	raw, exists := os.LookupEnv(key)
	if !exists || raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		customLog.Warnf("Invalid %s '%s'. Using default %d.", key, raw, fallback)
		return fallback
	}
	return v
}

func getEnvFloat(key string, fallback float64) float64 {
	raw, exists := os.LookupEnv(key)
	if !exists || raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		customLog.Warnf("Invalid %s '%s'. Using default %v.", key, raw, fallback)
		return fallback
	}
	return v
}

// splitList parses a comma separated value, dropping empty entries.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
