package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/Adda-Baaj/link-meta/internal/extractor"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`
	HTTPAddr string `mapstructure:"http_addr"`

	ExtractTimeoutSeconds  int64         `mapstructure:"extract_timeout_seconds"`
	ExtractTimeout         time.Duration `mapstructure:"-"`
	MaxBodyBytes           int64         `mapstructure:"max_body_bytes"`
	UserAgent              string        `mapstructure:"user_agent"`
	AcceptLanguage         string        `mapstructure:"accept_language"`
	CORSAllowedOriginsRaw  string        `mapstructure:"cors_allowed_origins"`
	CORSAllowedOrigins     []string      `mapstructure:"-"`
	ShutdownTimeoutSeconds int64         `mapstructure:"shutdown_timeout_seconds"`
	ShutdownTimeout        time.Duration `mapstructure:"-"`

	PublishersFile string `mapstructure:"publishers_file"`
	EventQueueSize int    `mapstructure:"event_queue_size"`

	StorageType            string        `mapstructure:"storage_type"`
	BBoltPath              string        `mapstructure:"bbolt_path"`
	StorageTTLSeconds      int64         `mapstructure:"storage_ttl_seconds"`
	StorageCleanupSeconds  int64         `mapstructure:"storage_cleanup_interval_seconds"`
	StorageTTL             time.Duration `mapstructure:"-"`
	StorageCleanupInterval time.Duration `mapstructure:"-"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return unmarshal(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_name", "link-meta")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("extract_timeout_seconds", 10)
	v.SetDefault("max_body_bytes", 1<<20)
	v.SetDefault("user_agent", extractor.DefaultUserAgent)
	v.SetDefault("accept_language", "en-US,en;q=0.9")
	v.SetDefault("cors_allowed_origins", "")
	v.SetDefault("shutdown_timeout_seconds", 10)
	v.SetDefault("publishers_file", "")
	v.SetDefault("event_queue_size", 256)
	v.SetDefault("storage_type", "none")
	v.SetDefault("bbolt_path", "./data/events.db")
	v.SetDefault("storage_ttl_seconds", int64((24*time.Hour)/time.Second))
	v.SetDefault("storage_cleanup_interval_seconds", int64((6*time.Hour)/time.Second))
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.ExtractTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid extract_timeout_seconds (must be positive seconds)")
	}
	cfg.ExtractTimeout = time.Duration(cfg.ExtractTimeoutSeconds) * time.Second

	if cfg.MaxBodyBytes <= 0 {
		return nil, fmt.Errorf("invalid max_body_bytes (must be positive)")
	}
	if cfg.ShutdownTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid shutdown_timeout_seconds (must be positive seconds)")
	}
	cfg.ShutdownTimeout = time.Duration(cfg.ShutdownTimeoutSeconds) * time.Second

	if cfg.EventQueueSize <= 0 {
		return nil, fmt.Errorf("invalid event_queue_size (must be positive)")
	}

	if cfg.StorageTTLSeconds <= 0 {
		return nil, fmt.Errorf("invalid storage_ttl_seconds (must be positive seconds)")
	}
	if cfg.StorageCleanupSeconds <= 0 {
		return nil, fmt.Errorf("invalid storage_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.StorageTTL = time.Duration(cfg.StorageTTLSeconds) * time.Second
	cfg.StorageCleanupInterval = time.Duration(cfg.StorageCleanupSeconds) * time.Second

	cfg.UserAgent = strings.TrimSpace(cfg.UserAgent)
	if cfg.UserAgent == "" {
		cfg.UserAgent = extractor.DefaultUserAgent
	}
	cfg.CORSAllowedOrigins = splitList(cfg.CORSAllowedOriginsRaw)

	return &cfg, nil
}

// splitList turns a comma separated env value into a trimmed slice.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
