package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Port:                 "8080",
		DataBackend:          BackendSQLite,
		DBPath:               "./data/test.db",
		NormalizerStrategies: "pattern",
		NormalizerTimeout:    15 * time.Second,
		JWTSecret:            "secret",
		RateLimitRPS:         1,
		RateLimitBurst:       5,
		LogFormat:            "text",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		modify      func(c *Config)
		wantErr     bool
		errorString string
	}{
		{
			name:    "valid sqlite config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:        "invalid port - non-numeric",
			modify:      func(c *Config) { c.Port = "abc" },
			wantErr:     true,
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name:        "invalid port - out of range",
			modify:      func(c *Config) { c.Port = "70000" },
			wantErr:     true,
			errorString: "invalid port 70000: must be between 1 and 65535",
		},
		{
			name:        "invalid data backend",
			modify:      func(c *Config) { c.DataBackend = "mysql" },
			wantErr:     true,
			errorString: "invalid data backend 'mysql'",
		},
		{
			name: "postgres without DSN",
			modify: func(c *Config) {
				c.DataBackend = BackendPostgres
			},
			wantErr:     true,
			errorString: "POSTGRES_DSN is required",
		},
		{
			name: "valid memory backend with gemini and pattern",
			modify: func(c *Config) {
				c.DataBackend = BackendMemory
				c.NormalizerStrategies = "gemini, pattern"
				c.GeminiAPIKey = "key"
			},
			wantErr: false,
		},
		{
			name:        "gemini without key",
			modify:      func(c *Config) { c.NormalizerStrategies = "gemini" },
			wantErr:     true,
			errorString: "GEMINI_API_KEY is required",
		},
		{
			name: "prompt with bad base URL",
			modify: func(c *Config) {
				c.NormalizerStrategies = "prompt"
				c.LLMAPIKey = "key"
				c.LLMBaseURL = "not a url"
			},
			wantErr:     true,
			errorString: "invalid LLM base URL",
		},
		{
			name:        "unknown strategy",
			modify:      func(c *Config) { c.NormalizerStrategies = "regex" },
			wantErr:     true,
			errorString: "invalid normalizer strategy 'regex'",
		},
		{
			name:        "no strategies",
			modify:      func(c *Config) { c.NormalizerStrategies = " , " },
			wantErr:     true,
			errorString: "must name at least one strategy",
		},
		{
			name:        "timeout too short",
			modify:      func(c *Config) { c.NormalizerTimeout = 10 * time.Millisecond },
			wantErr:     true,
			errorString: "invalid normalizer timeout",
		},
		{
			name:        "missing JWT secret",
			modify:      func(c *Config) { c.JWTSecret = "" },
			wantErr:     true,
			errorString: "JWT_SECRET is required",
		},
		{
			name:        "bad AMQP scheme",
			modify:      func(c *Config) { c.AMQPURL = "http://localhost:5672/" },
			wantErr:     true,
			errorString: "invalid AMQP URL scheme 'http'",
		},
		{
			name:        "bad log format",
			modify:      func(c *Config) { c.LogFormat = "xml" },
			wantErr:     true,
			errorString: "invalid log format 'xml'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(&cfg)

			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Expected error but got nil")
				}
				if !strings.Contains(err.Error(), tt.errorString) {
					t.Errorf("Expected error containing '%s', got '%s'", tt.errorString, err.Error())
				}
				return
			}
			if err != nil {
				t.Errorf("Expected no error but got: %v", err)
			}
		})
	}
}

func TestConfig_ValidateCollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Port = "abc"
	cfg.JWTSecret = ""
	cfg.RateLimitBurst = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Expected error but got nil")
	}
	for _, want := range []string{"invalid port", "JWT_SECRET", "burst"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Expected error to mention %q, got %q", want, err.Error())
		}
	}
}

func TestLoad_Defaults(t *testing.T) {
	// Run in an empty directory so no .env is picked up.
	t.Chdir(t.TempDir())
	for _, key := range []string{"PORT", "DATA_BACKEND", "NORMALIZER_STRATEGIES", "NORMALIZER_TIMEOUT", "RATE_LIMIT_RPS"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Port != "8080" {
		t.Errorf("Port = %s, want 8080", cfg.Port)
	}
	if cfg.DataBackend != BackendSQLite {
		t.Errorf("DataBackend = %s, want sqlite", cfg.DataBackend)
	}
	if cfg.NormalizerTimeout != 15*time.Second {
		t.Errorf("NormalizerTimeout = %v, want 15s", cfg.NormalizerTimeout)
	}
	if cfg.RateLimitRPS != 1 {
		t.Errorf("RateLimitRPS = %v, want 1", cfg.RateLimitRPS)
	}
	if got := cfg.Strategies(); len(got) != 1 || got[0] != "pattern" {
		t.Errorf("Strategies = %v, want [pattern]", got)
	}
}

func TestLoad_FromEnvAndDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("DATA_BACKEND=memory\nRATE_LIMIT_BURST=9\n"), 0o600); err != nil {
		t.Fatalf("Failed to write .env: %v", err)
	}
	// godotenv never overrides a variable that is set, even to "".
	for _, key := range []string{"DATA_BACKEND", "RATE_LIMIT_BURST"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	t.Setenv("NORMALIZER_STRATEGIES", "Gemini,pattern")
	t.Setenv("NORMALIZER_TIMEOUT", "20s")

	cfg := Load()
	if cfg.DataBackend != BackendMemory {
		t.Errorf("DataBackend = %s, want memory", cfg.DataBackend)
	}
	if cfg.RateLimitBurst != 9 {
		t.Errorf("RateLimitBurst = %d, want 9", cfg.RateLimitBurst)
	}
	if cfg.NormalizerTimeout != 20*time.Second {
		t.Errorf("NormalizerTimeout = %v, want 20s", cfg.NormalizerTimeout)
	}
	if got := cfg.Strategies(); len(got) != 2 || got[0] != "gemini" {
		t.Errorf("Strategies = %v, want [gemini pattern]", got)
	}
}
