package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type PollConfig struct {
	Interval    time.Duration `yaml:"interval"`
	MaxAttempts int           `yaml:"max_attempts"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type RedisConfig struct {
	URL      string        `yaml:"url"` // empty disables draft persistence
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type HistoryConfig struct {
	Path string `yaml:"path"` // sqlite file, empty disables history
}

type IdentityConfig struct {
	HMACSecret string `yaml:"hmac_secret"`
}

type StubConfig struct {
	Port         int           `yaml:"port"`
	StepDuration time.Duration `yaml:"step_duration"` // wall time per 10% of progress
}

type Config struct {
	API      APIConfig      `yaml:"api"`
	Poll     PollConfig     `yaml:"poll"`
	Log      LogConfig      `yaml:"log"`
	Redis    RedisConfig    `yaml:"redis"`
	History  HistoryConfig  `yaml:"history"`
	Identity IdentityConfig `yaml:"identity"`
	Stub     StubConfig     `yaml:"stub"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case dev && os.IsNotExist(err):
		// Dev runs work off defaults alone; no config file required.
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	// defaults
	if cfg.API.Timeout <= 0 {
		cfg.API.Timeout = 10 * time.Second
	}
	if cfg.Poll.Interval <= 0 {
		cfg.Poll.Interval = 2 * time.Second
	}
	if cfg.Poll.MaxAttempts <= 0 {
		cfg.Poll.MaxAttempts = 60
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	cfg.Redis.TTL = normalizeTTL(cfg.Redis.TTL)
	if cfg.Stub.Port <= 0 {
		cfg.Stub.Port = 8090
	}
	if cfg.Stub.StepDuration <= 0 {
		cfg.Stub.StepDuration = time.Second
	}

	// Minimal validation. The API base URL is not required in dev mode, where
	// the scripted adapter replaces the real backend.
	if cfg.API.BaseURL == "" && !dev {
		return nil, errors.New("api.base_url is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return 15 * time.Minute
	}
	return d
}
