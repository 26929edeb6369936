package config

import (
	"fmt"
	"math"
	"net"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	BridgeAddr           string   `mapstructure:"bridge_addr"`
	BridgeToken          string   `mapstructure:"bridge_token" json:"-"`
	BridgeAllowedOrigins []string `mapstructure:"bridge_allowed_origins"`
	MaxRequestBytes      int64    `mapstructure:"max_request_bytes"`

	RequestTimeoutSeconds int64         `mapstructure:"request_timeout_seconds"`
	RequestTimeout        time.Duration `mapstructure:"-"`
	HTTPProxy             string        `mapstructure:"http_proxy"`
	ClientCacheSize       int           `mapstructure:"client_cache_size"`
	ClientIdentityEnabled bool          `mapstructure:"client_identity_enabled"`

	StorageType            string        `mapstructure:"storage_type"`
	BBoltPath              string        `mapstructure:"bbolt_path"`
	StorageTTLSeconds      int64         `mapstructure:"storage_ttl_seconds"`
	StorageCleanupSeconds  int64         `mapstructure:"storage_cleanup_interval_seconds"`
	StorageTTL             time.Duration `mapstructure:"-"`
	StorageCleanupInterval time.Duration `mapstructure:"-"`

	SinksFile string `mapstructure:"sinks_file"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	_ = v.Unmarshal(&cfg)
	_ = cfg.normalize()
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_name", "samvad-api-helper")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("bridge_addr", "127.0.0.1:7878")
	v.SetDefault("bridge_token", "")
	v.SetDefault("bridge_allowed_origins", []string{"tauri://localhost", "http://tauri.localhost", "https://tauri.localhost"})
	v.SetDefault("max_request_bytes", 8<<20)
	v.SetDefault("request_timeout_seconds", 30)
	v.SetDefault("http_proxy", "")
	v.SetDefault("client_cache_size", 16)
	v.SetDefault("client_identity_enabled", false)
	v.SetDefault("storage_type", "none")
	v.SetDefault("bbolt_path", "./data/history.db")
	v.SetDefault("storage_ttl_seconds", int64((7*24*time.Hour)/time.Second))
	v.SetDefault("storage_cleanup_interval_seconds", int64((12*time.Hour)/time.Second))
	v.SetDefault("sinks_file", "")
}

// maxDurationSeconds is the largest whole-second value a time.Duration holds.
const maxDurationSeconds = math.MaxInt64 / int64(time.Second)

func (cfg *Config) normalize() error {
	cfg.BridgeAddr = strings.TrimSpace(cfg.BridgeAddr)
	cfg.BridgeToken = strings.TrimSpace(cfg.BridgeToken)
	origins := cfg.BridgeAllowedOrigins[:0]
	for _, o := range cfg.BridgeAllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	cfg.BridgeAllowedOrigins = origins
	cfg.HTTPProxy = strings.TrimSpace(cfg.HTTPProxy)
	cfg.SinksFile = strings.TrimSpace(cfg.SinksFile)

	host, _, err := net.SplitHostPort(cfg.BridgeAddr)
	if err != nil {
		return fmt.Errorf("invalid bridge_addr %q: %w", cfg.BridgeAddr, err)
	}
	if ip := net.ParseIP(host); host != "localhost" && (ip == nil || !ip.IsLoopback()) {
		return fmt.Errorf("bridge_addr %q must bind a loopback address", cfg.BridgeAddr)
	}

	if cfg.RequestTimeoutSeconds < 0 || cfg.RequestTimeoutSeconds > maxDurationSeconds {
		return fmt.Errorf("invalid request_timeout_seconds (must be between 0 and %d seconds)", maxDurationSeconds)
	}
	cfg.RequestTimeout = time.Duration(cfg.RequestTimeoutSeconds) * time.Second

	if cfg.ClientCacheSize <= 0 {
		return fmt.Errorf("invalid client_cache_size (must be positive)")
	}
	if cfg.MaxRequestBytes <= 0 {
		return fmt.Errorf("invalid max_request_bytes (must be positive)")
	}

	if cfg.StorageTTLSeconds > maxDurationSeconds || cfg.StorageCleanupSeconds > maxDurationSeconds {
		return fmt.Errorf("storage durations must not exceed %d seconds", maxDurationSeconds)
	}
	if cfg.StorageTTLSeconds <= 0 {
		return fmt.Errorf("invalid storage_ttl_seconds (must be positive seconds)")
	}
	if cfg.StorageCleanupSeconds <= 0 {
		return fmt.Errorf("invalid storage_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.StorageTTL = time.Duration(cfg.StorageTTLSeconds) * time.Second
	cfg.StorageCleanupInterval = time.Duration(cfg.StorageCleanupSeconds) * time.Second

	return nil
}
