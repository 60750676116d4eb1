package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

type Config struct {
	AppPort  int    `mapstructure:"APP_PORT"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	DatabasePath string `mapstructure:"DATABASE_PATH"`
	StoreDriver  string `mapstructure:"STORE_DRIVER"`
	RedisAddr    string `mapstructure:"REDIS_ADDR"`

	LLMBaseURL        string `mapstructure:"LLM_BASE_URL"`
	LLMAPIKey         string `mapstructure:"LLM_API_KEY"`
	DefaultChatModel  string `mapstructure:"DEFAULT_CHAT_MODEL"`
	ChatModels        string `mapstructure:"CHAT_MODELS"`
	ImageModels       string `mapstructure:"IMAGE_MODELS"`
	DefaultImageModel string `mapstructure:"DEFAULT_IMAGE_MODEL"`
	VideoModel        string `mapstructure:"VIDEO_MODEL"`

	RAGWebhookURL  string `mapstructure:"RAG_WEBHOOK_URL"`
	MediaDir       string `mapstructure:"MEDIA_DIR"`
	MediaPublicURL string `mapstructure:"MEDIA_PUBLIC_URL"`

	RateLimitRPS        float64 `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst      int     `mapstructure:"RATE_LIMIT_BURST"`
	HistoryRestoreLimit int     `mapstructure:"HISTORY_RESTORE_LIMIT"`
}

func LoadConfig() (*Config, error) {
	viper.SetDefault("APP_PORT", 8000)
	viper.SetDefault("LOG_LEVEL", "INFO")
	viper.SetDefault("DATABASE_PATH", "/data/flow-chat.db")
	viper.SetDefault("STORE_DRIVER", DriverSQLite)
	viper.SetDefault("REDIS_ADDR", "redis:6379")
	viper.SetDefault("LLM_BASE_URL", "https://api.a4f.co/v1")
	viper.SetDefault("LLM_API_KEY", "")
	viper.SetDefault("DEFAULT_CHAT_MODEL", "provider-5/gpt-4o")
	viper.SetDefault("CHAT_MODELS", "provider-5/gpt-4o,provider-3/gpt-4.1-mini,provider-6/gemini-2.5-flash,provider-2/claude-3.5-sonnet")
	viper.SetDefault("IMAGE_MODELS", "provider-1/FLUX.1-dev,provider-2/dall-e-3,provider-3/FLUX.1-schnell,provider-6/sana-1.5")
	viper.SetDefault("DEFAULT_IMAGE_MODEL", "provider-2/dall-e-3")
	viper.SetDefault("VIDEO_MODEL", "provider-6/wan-2.1")
	viper.SetDefault("RAG_WEBHOOK_URL", "")
	viper.SetDefault("MEDIA_DIR", "/data/media")
	viper.SetDefault("MEDIA_PUBLIC_URL", "http://localhost:8000/media")
	viper.SetDefault("RATE_LIMIT_RPS", 2)
	viper.SetDefault("RATE_LIMIT_BURST", 5)
	viper.SetDefault("HISTORY_RESTORE_LIMIT", 100)

	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./backend")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverSQLite:
		if c.DatabasePath == "" {
			return fmt.Errorf("config: DATABASE_PATH must be set")
		}
	case DriverRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("config: REDIS_ADDR must be set when STORE_DRIVER=redis")
		}
		// Settings always live in SQLite.
		if c.DatabasePath == "" {
			return fmt.Errorf("config: DATABASE_PATH must be set")
		}
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.RateLimitRPS < 0 || c.RateLimitBurst < 0 {
		return fmt.Errorf("config: rate limit values must not be negative")
	}
	return nil
}

// List splits a comma-separated config value, dropping blanks.
func List(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
