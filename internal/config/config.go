package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	EnvDev  = "dev"
	EnvProd = "prod"

	DefaultHeartbeatInterval = 60 * time.Second
	// DefaultHTTPAddr is loopback-only: /v1/status answers without the
	// approval check, so exposing it is an explicit operator choice.
	DefaultHTTPAddr = "127.0.0.1:8080"
)

var (
	ErrMissingReportChat   = errors.New("config: CHAT_ID_TO_REPORT is required")
	ErrMissingStoreAddress = errors.New("config: REDIS_ADDRESS is required")
	ErrMissingBotToken     = errors.New("config: BOT_TOKEN is required")
	ErrMissingAdmin        = errors.New("config: ADMIN_USER_ID is required")
	ErrInvalidValue        = errors.New("config: invalid value")
)

type Config struct {
	ReportChatID int64  `yaml:"chat_id_to_report"`
	StoreAddress string `yaml:"redis_address"`
	BotToken     string `yaml:"bot_token"`
	AdminUserID  int64  `yaml:"admin_user_id"`

	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`

	// Ops surfaces; empty disables.
	HTTPAddr string `yaml:"http_addr"`
	GRPCAddr string `yaml:"grpc_addr"`

	Env string `yaml:"env"` // "dev" | "prod"
}

// Debug reports whether Telegram request logging should be on.
func (c Config) Debug() bool { return c.Env == EnvDev }

// Load reads the environment, then overlays the YAML file named by
// POWERWATCH_CONFIG when set, then validates.
func Load() (Config, error) {
	var cfg Config
	var err error

	if cfg.ReportChatID, err = getenvInt64("CHAT_ID_TO_REPORT"); err != nil {
		return cfg, err
	}
	if cfg.AdminUserID, err = getenvInt64("ADMIN_USER_ID"); err != nil {
		return cfg, err
	}
	if cfg.HeartbeatInterval, err = getenvDuration("POWERWATCH_HEARTBEAT_INTERVAL", DefaultHeartbeatInterval); err != nil {
		return cfg, err
	}
	cfg.StoreAddress = strings.TrimSpace(os.Getenv("REDIS_ADDRESS"))
	cfg.BotToken = strings.TrimSpace(os.Getenv("BOT_TOKEN"))
	cfg.HTTPAddr = getenvAllowEmpty("POWERWATCH_HTTP_ADDR", DefaultHTTPAddr)
	cfg.GRPCAddr = strings.TrimSpace(os.Getenv("POWERWATCH_GRPC_ADDR"))
	cfg.Env = strings.ToLower(getenvDefault("POWERWATCH_ENV", EnvProd))

	if path := os.Getenv("POWERWATCH_CONFIG"); path != "" {
		if err := overlayFile(&cfg, path); err != nil {
			return cfg, err
		}
	}

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch {
	case c.ReportChatID == 0:
		return ErrMissingReportChat
	case c.StoreAddress == "":
		return ErrMissingStoreAddress
	case c.BotToken == "":
		return ErrMissingBotToken
	case c.AdminUserID == 0:
		return ErrMissingAdmin
	case c.HeartbeatInterval <= 0:
		return fmt.Errorf("%w: heartbeat_interval must be positive, got %s", ErrInvalidValue, c.HeartbeatInterval)
	case c.Env != EnvDev && c.Env != EnvProd:
		return fmt.Errorf("%w: env must be %q or %q, got %q", ErrInvalidValue, EnvDev, EnvProd, c.Env)
	}
	return nil
}

func overlayFile(cfg *Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.Env = strings.ToLower(cfg.Env)
	return nil
}

func getenvDefault(key, def string) string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

// getenvAllowEmpty distinguishes unset (def) from set-but-empty ("").
func getenvAllowEmpty(key, def string) string {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	return strings.TrimSpace(v)
}

func getenvInt64(key string) (int64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidValue, key, v)
	}
	return n, nil
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidValue, key, v)
	}
	return d, nil
}
