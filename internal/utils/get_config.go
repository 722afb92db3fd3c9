package utils

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	// Server
	Port              string `yaml:"PORT"`
	LogLevel          string `yaml:"LOG_LEVEL"`
	RateLimitPerSec   int    `yaml:"RATE_LIMIT_PER_SECOND"`
	EnablePrintRoutes bool   `yaml:"ENABLE_PRINT_ROUTES"`

	// Database configuration
	DBUser     string `yaml:"DB_USER"`
	DBName     string `yaml:"DB_NAME"`
	DBPassword string `yaml:"DB_PASSWORD"`
	DBPort     string `yaml:"DB_PORT"`
	DBHost     string `yaml:"DB_HOST"`
	DBTimeZone string `yaml:"DB_TIMEZONE"`
	DBMigrate  bool   `yaml:"DB_MIGRATE"`

	// LLM provider
	LLMProvider       string `yaml:"LLM_PROVIDER"`
	AnthropicAPIKey   string `yaml:"ANTHROPIC_API_KEY"`
	AnthropicModel    string `yaml:"ANTHROPIC_MODEL"`
	GeminiAPIKey      string `yaml:"GEMINI_API_KEY"`
	GeminiModel       string `yaml:"GEMINI_MODEL"`
	LLMMaxTokens      int    `yaml:"LLM_MAX_TOKENS"`
	LLMTimeoutSeconds int    `yaml:"LLM_TIMEOUT_SECONDS"`
	LLMMaxRetries     int    `yaml:"LLM_MAX_RETRIES"`
	LLMCacheEnabled   bool   `yaml:"LLM_CACHE_ENABLED"`
	LLMCacheTTLHours  int    `yaml:"LLM_CACHE_TTL_HOURS"`

	// Retention
	RecipeRetentionDays    int `yaml:"RECIPE_RETENTION_DAYS"`
	JanitorIntervalMinutes int `yaml:"JANITOR_INTERVAL_MINUTES"`

	// Mailing configuration
	SMTPHost         string `yaml:"SMTP_HOST"`
	SMTPPort         string `yaml:"SMTP_PORT"`
	SMTPSenderName   string `yaml:"SMTP_SENDER_NAME"`
	SMTPAuthEmail    string `yaml:"SMTP_AUTH_EMAIL"`
	SMTPAuthPassword string `yaml:"SMTP_AUTH_PASSWORD"`
	SupportEmail     string `yaml:"SUPPORT_EMAIL"`

	// AWS S3 configuration
	AWSS3Bucket  string `yaml:"AWS_S3_BUCKET"`
	AWSS3Region  string `yaml:"AWS_S3_REGION"`
	AWSAccessKey string `yaml:"AWS_ACCESS_KEY"`
	AWSSecretKey string `yaml:"AWS_SECRET_KEY"`
}

// LoadConfig reads the YAML file at path. A missing file yields defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}

	file, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err == nil {
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Port == "" {
		c.Port = "8080"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.RateLimitPerSec <= 0 {
		c.RateLimitPerSec = 10
	}
	if c.DBTimeZone == "" {
		c.DBTimeZone = "UTC"
	}
	if c.LLMProvider == "" {
		c.LLMProvider = "anthropic"
	}
	if c.LLMMaxTokens <= 0 {
		c.LLMMaxTokens = 4096
	}
	if c.LLMTimeoutSeconds <= 0 {
		c.LLMTimeoutSeconds = 60
	}
	// unset means 2 retries; a negative value turns retrying off
	switch {
	case c.LLMMaxRetries == 0:
		c.LLMMaxRetries = 2
	case c.LLMMaxRetries < 0:
		c.LLMMaxRetries = 0
	}
	if c.LLMCacheTTLHours <= 0 {
		c.LLMCacheTTLHours = 168
	}
	if c.RecipeRetentionDays <= 0 {
		c.RecipeRetentionDays = 7
	}
	if c.JanitorIntervalMinutes <= 0 {
		c.JanitorIntervalMinutes = 60
	}
}

func (c *Config) validate() error {
	switch c.LLMProvider {
	case "anthropic", "gemini":
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLMProvider)
	}
	return nil
}

func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLMTimeoutSeconds) * time.Second
}

func (c *Config) LLMCacheTTL() time.Duration {
	return time.Duration(c.LLMCacheTTLHours) * time.Hour
}

func (c *Config) JanitorInterval() time.Duration {
	return time.Duration(c.JanitorIntervalMinutes) * time.Minute
}

func (c *Config) S3Enabled() bool {
	return c.AWSS3Bucket != ""
}

func (c *Config) MailEnabled() bool {
	return c.SMTPHost != "" && c.SupportEmail != ""
}
