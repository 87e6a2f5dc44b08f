// Package config loads CLI settings from an optional screengraph.yaml,
// SCREENGRAPH_* environment variables and command line flags, in increasing
// order of precedence.
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	configFileName = "screengraph"
	configFileType = "yaml"
	envPrefix      = "SCREENGRAPH"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// Config holds the settings shared by the CLI commands.
type Config struct {
	LogLevel      string        `mapstructure:"log_level"`
	VerifyTimeout time.Duration `mapstructure:"verify_timeout"`
	PollInterval  time.Duration `mapstructure:"poll_interval"`
	Port          int           `mapstructure:"port"`

	Store     string        `mapstructure:"store"`
	StoreDir  string        `mapstructure:"store_dir"`
	RedisAddr string        `mapstructure:"redis_addr"`
	RedisTTL  time.Duration `mapstructure:"redis_ttl"`
	LockTTL   time.Duration `mapstructure:"lock_ttl"`

	// EncryptionKey is a base64 encoded AES-256 key. When set, persisted
	// snapshots are sealed with it.
	EncryptionKey string `mapstructure:"encryption_key"`
	// MaskFields are regular expressions of user state fields masked
	// before a snapshot is persisted.
	MaskFields []string `mapstructure:"mask_fields"`
}

// flagKeys maps flag names to config keys.
var flagKeys = map[string]string{
	"log-level":      "log_level",
	"verify-timeout": "verify_timeout",
	"poll-interval":  "poll_interval",
	"port":           "port",
	"store":          "store",
	"store-dir":      "store_dir",
	"redis-addr":     "redis_addr",
}

// Load reads screengraph.yaml from dir when present, then the environment,
// then the flags of fs that were set. A missing file is not an error.
func Load(dir string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetDefault("log_level", "info")
	v.SetDefault("verify_timeout", 5*time.Second)
	v.SetDefault("poll_interval", 100*time.Millisecond)
	v.SetDefault("port", 8080)
	v.SetDefault("store", StoreMemory)
	v.SetDefault("store_dir", ".screengraph/sessions")
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("redis_ttl", 24*time.Hour)
	v.SetDefault("lock_ttl", 30*time.Second)
	v.SetDefault("encryption_key", "")
	v.SetDefault("mask_fields", []string{})

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	if dir != "" {
		v.AddConfigPath(dir)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %q: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Store {
	case StoreMemory, StoreFile, StoreRedis:
	default:
		return fmt.Errorf("unknown store %q (want memory, file or redis)", c.Store)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.EncryptionKey != "" {
		if _, err := c.Key(); err != nil {
			return err
		}
	}
	if c.VerifyTimeout < 0 {
		return fmt.Errorf("verify_timeout must not be negative")
	}
	return nil
}

// Key decodes EncryptionKey.
func (c *Config) Key() ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(c.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("invalid encryption_key: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("invalid encryption_key: want 32 bytes, got %d", len(key))
	}
	return key, nil
}

// Level returns the slog level named by LogLevel.
func (c *Config) Level() slog.Level {
	l, _ := parseLevel(c.LogLevel)
	return l
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
	return l, nil
}
