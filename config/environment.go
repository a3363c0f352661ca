package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds the server configuration. Values come from the process
// environment, which main populates from .env outside production.
type Config struct {
	Port           string `env:"PORT" env-default:"8080"`
	Environment    string `env:"ENVIRONMENT" env-default:"development"`
	AllowedOrigins string `env:"ALLOWED_ORIGINS" env-default:"http://localhost:3000"`

	Database DatabaseConfig
	LLM      LLMConfig
	Auth     AuthConfig
	Limits   LimitsConfig
}

// DatabaseConfig selects the gorm dialector.
type DatabaseConfig struct {
	Driver string `env:"DB_DRIVER" env-default:"postgres"`
	// URL is a postgres DSN, or a file name / ":memory:" DSN for sqlite.
	URL string `env:"DB_URL"`
}

// LLMConfig configures the OpenAI-compatible provider. The defaults point at Groq.
type LLMConfig struct {
	BaseURL            string        `env:"LLM_BASE_URL" env-default:"https://api.groq.com/openai/v1"`
	APIKey             string        `env:"LLM_API_KEY"`
	GroqAPIKey         string        `env:"GROQ_API_KEY"`
	NodeModel          string        `env:"LLM_NODE_MODEL" env-default:"openai/gpt-oss-120b"`
	FlashcardModel     string        `env:"LLM_FLASHCARD_MODEL" env-default:"compound-beta"`
	Temperature        float64       `env:"LLM_TEMPERATURE" env-default:"0.7"`
	FlashcardMaxTokens int           `env:"LLM_FLASHCARD_MAX_TOKENS" env-default:"500"`
	StreamTimeout      time.Duration `env:"LLM_STREAM_TIMEOUT" env-default:"2m"`
}

// Key returns the configured API key, preferring LLM_API_KEY over GROQ_API_KEY.
func (c LLMConfig) Key() string {
	if c.APIKey != "" {
		return c.APIKey
	}
	return c.GroqAPIKey
}

// AuthConfig controls bearer token validation.
type AuthConfig struct {
	Enabled   bool   `env:"AUTH_ENABLED" env-default:"false"`
	SecretKey string `env:"JWT_SECRET_KEY"`
	Issuer    string `env:"JWT_ISSUER" env-default:"learntree-api"`
	Audience  string `env:"JWT_AUDIENCE" env-default:"learntree-app"`
}

// LimitsConfig bounds node creation per user.
type LimitsConfig struct {
	NodesPerMinute float64 `env:"NODE_RATE_PER_MINUTE" env-default:"6"`
	NodeBurst      int     `env:"NODE_RATE_BURST" env-default:"3"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsProduction reports whether the server runs in production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Origins splits AllowedOrigins on commas.
func (c *Config) Origins() []string {
	var origins []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("DB_DRIVER must be %q or %q, got %q", DriverPostgres, DriverSQLite, c.Database.Driver)
	}
	if c.Auth.Enabled && c.Auth.SecretKey == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required when AUTH_ENABLED is true")
	}
	if c.Limits.NodesPerMinute <= 0 || c.Limits.NodeBurst <= 0 {
		return fmt.Errorf("node rate limits must be positive")
	}
	return nil
}
