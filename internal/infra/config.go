package infra

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config represents application configuration loaded from the environment.
// REPLICATE_API_TOKEN is optional: a credential typed into the form wins.
type Config struct {
	AppEnv          string `mapstructure:"APP_ENV" validate:"required,oneof=development production test"`
	Port            string `mapstructure:"PORT" validate:"required,numeric"`
	ReplicateToken  string `mapstructure:"REPLICATE_API_TOKEN"`
	ReplicateBase   string `mapstructure:"REPLICATE_BASE_URL" validate:"required,url"`
	OutputDir       string `mapstructure:"OUTPUT_DIR" validate:"required"`
	PromptsDir      string `mapstructure:"PROMPTS_DIR" validate:"required"`
	DefaultLocale   string `mapstructure:"DEFAULT_LOCALE" validate:"required,oneof=en id"`
	ReadyAttempts   int    `mapstructure:"READY_MAX_ATTEMPTS" validate:"gte=1,lte=100"`
	ReadyDelaySecs  int    `mapstructure:"READY_DELAY_SECONDS" validate:"gte=0,lte=60"`
	PollIntervalMs  int    `mapstructure:"PREDICTION_POLL_INTERVAL_MS" validate:"gte=100"`
	MaxPolls        int    `mapstructure:"PREDICTION_MAX_POLLS" validate:"gte=1"`
	RemoteTimeout   int    `mapstructure:"REMOTE_TIMEOUT_SECONDS" validate:"gte=1"`
	ReadTimeoutSecs int    `mapstructure:"HTTP_READ_TIMEOUT_SECONDS" validate:"gte=1"`
	// Generation holds the connection open for the whole remote job, so the
	// write timeout is generous.
	WriteTimeoutSecs int `mapstructure:"HTTP_WRITE_TIMEOUT_SECONDS" validate:"gte=1"`
	IdleTimeoutSecs  int `mapstructure:"HTTP_IDLE_TIMEOUT_SECONDS" validate:"gte=1"`
	SessionTTLMins   int `mapstructure:"SESSION_TTL_MINUTES" validate:"gte=1"`
	MaxUploadMB      int `mapstructure:"MAX_UPLOAD_MB" validate:"gte=1,lte=512"`
	// GenerateRateLimit caps submissions per session per minute; 0 disables it.
	GenerateRateLimit int    `mapstructure:"GENERATE_RATE_LIMIT_PER_MINUTE" validate:"gte=0"`
	CORSOrigins       string `mapstructure:"CORS_ALLOWED_ORIGINS"`
}

var defaults = map[string]any{
	"APP_ENV":                        "development",
	"PORT":                           "8080",
	"REPLICATE_API_TOKEN":            "",
	"REPLICATE_BASE_URL":             "https://api.replicate.com/v1",
	"OUTPUT_DIR":                     "output",
	"PROMPTS_DIR":                    "prompts",
	"DEFAULT_LOCALE":                 "en",
	"READY_MAX_ATTEMPTS":             10,
	"READY_DELAY_SECONDS":            2,
	"PREDICTION_POLL_INTERVAL_MS":    1000,
	"PREDICTION_MAX_POLLS":           300,
	"REMOTE_TIMEOUT_SECONDS":         60,
	"HTTP_READ_TIMEOUT_SECONDS":      15,
	"HTTP_WRITE_TIMEOUT_SECONDS":     900,
	"HTTP_IDLE_TIMEOUT_SECONDS":      60,
	"SESSION_TTL_MINUTES":            120,
	"MAX_UPLOAD_MB":                  20,
	"GENERATE_RATE_LIMIT_PER_MINUTE": 30,
	"CORS_ALLOWED_ORIGINS":           "",
}

// LoadConfig reads .env files when present, then the process environment.
func LoadConfig() (*Config, error) {
	// Missing .env files are fine.
	_ = godotenv.Load(".env", ".env.local")

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	cfg.ReplicateToken = strings.TrimSpace(cfg.ReplicateToken)
	cfg.ReplicateBase = strings.TrimRight(strings.TrimSpace(cfg.ReplicateBase), "/")

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) ReadyDelay() time.Duration {
	return time.Duration(c.ReadyDelaySecs) * time.Second
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

func (c *Config) RemoteRequestTimeout() time.Duration {
	return time.Duration(c.RemoteTimeout) * time.Second
}

func (c *Config) HTTPReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutSecs) * time.Second
}

func (c *Config) HTTPWriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeoutSecs) * time.Second
}

func (c *Config) HTTPIdleTimeout() time.Duration {
	return time.Duration(c.IdleTimeoutSecs) * time.Second
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMins) * time.Minute
}

func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// AllowedOrigins splits CORS_ALLOWED_ORIGINS on commas.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, origin := range strings.Split(c.CORSOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			out = append(out, origin)
		}
	}
	return out
}
