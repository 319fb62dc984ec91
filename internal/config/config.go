// Package config loads server and CLI settings from the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Data backends.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

var (
	validBackends   = []string{BackendSQLite, BackendPostgres, BackendMemory}
	validStrategies = []string{"gemini", "prompt", "pattern"}
)

type Config struct {
	// HTTP server
	Port string

	// Storage
	DataBackend string
	DBPath      string
	PostgresDSN string

	// Normalizer
	NormalizerStrategies string
	NormalizerTimeout    time.Duration

	GeminiAPIKey   string
	GeminiModel    string
	GeminiEndpoint string

	LLMAPIKey  string
	LLMBaseURL string
	LLMModel   string

	// Auth
	JWTSecret string

	// Rate limiting, per user
	RateLimitRPS   float64
	RateLimitBurst int

	// AMQP events; disabled when AMQPURL is empty
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Logging
	LogLevel  string
	LogFormat string
}

// Load reads .env (if present) and then the process environment.
// Variables already set in the environment win over .env.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port: getEnv("PORT", "8080"),

		DataBackend: strings.ToLower(getEnv("DATA_BACKEND", BackendSQLite)),
		DBPath:      getEnv("DB_PATH", "./data/expenses.db"),
		PostgresDSN: getEnv("POSTGRES_DSN", ""),

		NormalizerStrategies: getEnv("NORMALIZER_STRATEGIES", "pattern"),
		NormalizerTimeout:    getEnvDuration("NORMALIZER_TIMEOUT", 15*time.Second),

		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		GeminiModel:    getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiEndpoint: getEnv("GEMINI_ENDPOINT", ""),

		LLMAPIKey:  getEnv("LLM_API_KEY", ""),
		LLMBaseURL: getEnv("LLM_BASE_URL", "https://api.openai.com/v1"),
		LLMModel:   getEnv("LLM_MODEL", "gpt-4o-mini"),

		JWTSecret: getEnv("JWT_SECRET", ""),

		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 1),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 5),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "expensecmd"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "command_events"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}
}

// Strategies returns the configured normalizer strategies in priority order.
func (c *Config) Strategies() []string {
	var out []string
	for _, part := range strings.Split(c.NormalizerStrategies, ",") {
		if name := strings.ToLower(strings.TrimSpace(part)); name != "" {
			out = append(out, name)
		}
	}
	return out
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.DataBackend {
	case BackendSQLite:
		if c.DBPath == "" {
			errs = append(errs, "DB_PATH cannot be empty when using sqlite backend")
		}
	case BackendPostgres:
		if c.PostgresDSN == "" {
			errs = append(errs, "POSTGRES_DSN is required when using postgres backend")
		}
	case BackendMemory:
	default:
		errs = append(errs, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	strategies := c.Strategies()
	if len(strategies) == 0 {
		errs = append(errs, "NORMALIZER_STRATEGIES must name at least one strategy")
	}
	for _, s := range strategies {
		switch s {
		case "gemini":
			if c.GeminiAPIKey == "" {
				errs = append(errs, "GEMINI_API_KEY is required for the gemini strategy")
			}
		case "prompt":
			if c.LLMAPIKey == "" {
				errs = append(errs, "LLM_API_KEY is required for the prompt strategy")
			}
			if u, err := url.Parse(c.LLMBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
				errs = append(errs, fmt.Sprintf("invalid LLM base URL '%s'", c.LLMBaseURL))
			}
		case "pattern":
		default:
			errs = append(errs, fmt.Sprintf("invalid normalizer strategy '%s': must be one of %v", s, validStrategies))
		}
	}

	if c.NormalizerTimeout < time.Second || c.NormalizerTimeout > 2*time.Minute {
		errs = append(errs, fmt.Sprintf("invalid normalizer timeout %v: must be between 1s and 2m", c.NormalizerTimeout))
	}

	if c.JWTSecret == "" {
		errs = append(errs, "JWT_SECRET is required")
	}

	if c.RateLimitRPS <= 0 {
		errs = append(errs, fmt.Sprintf("invalid rate limit %v: must be positive", c.RateLimitRPS))
	}
	if c.RateLimitBurst < 1 {
		errs = append(errs, fmt.Sprintf("invalid rate limit burst %d: must be at least 1", c.RateLimitBurst))
	}

	if c.AMQPURL != "" {
		if u, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if u.Scheme != "amqp" && u.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", u.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Sprintf("invalid log format '%s': must be 'text' or 'json'", c.LogFormat))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
