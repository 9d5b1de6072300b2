package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds dealwatch settings.
type Config struct {
	API struct {
		BaseURL string        `yaml:"base_url"`
		Timeout time.Duration `yaml:"timeout"`
		// UserKey is the Bark key (or full Bark URL) identifying the user to the backend.
		UserKey string `yaml:"user_key"`
	} `yaml:"api"`
	Trend struct {
		CacheTTL time.Duration `yaml:"cache_ttl"`
		Timezone string        `yaml:"timezone"`
	} `yaml:"trend"`
	Watch struct {
		Cron string `yaml:"cron"`
	} `yaml:"watch"`
	Log struct {
		Env   string `yaml:"env"`
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	cfg := &Config{}
	cfg.API.BaseURL = "http://localhost:9000/api"
	cfg.API.Timeout = 10 * time.Second
	cfg.Trend.CacheTTL = time.Minute
	cfg.Trend.Timezone = "Asia/Shanghai"
	cfg.Watch.Cron = "0 */10 * * * *"
	return cfg
}

// Load reads .env (if present), then the YAML file at path (if present), then
// applies DEALWATCH_* environment overrides on top of the defaults.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("DEALWATCH_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("DEALWATCH_USER_KEY"); v != "" {
		c.API.UserKey = v
	}
	if v := os.Getenv("DEALWATCH_TIMEZONE"); v != "" {
		c.Trend.Timezone = v
	}
	if v := os.Getenv("DEALWATCH_WATCH_CRON"); v != "" {
		c.Watch.Cron = v
	}
	if v := os.Getenv("LOG_ENV"); v != "" {
		c.Log.Env = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("DEALWATCH_API_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse DEALWATCH_API_TIMEOUT: %w", err)
		}
		c.API.Timeout = d
	}
	if v := os.Getenv("DEALWATCH_TREND_CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse DEALWATCH_TREND_CACHE_TTL: %w", err)
		}
		c.Trend.CacheTTL = d
	}
	return nil
}

// Validate checks the settings that would otherwise fail late.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		return fmt.Errorf("api.base_url must be an http(s) URL, got %q", c.API.BaseURL)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive")
	}
	if c.Trend.CacheTTL < 0 {
		return fmt.Errorf("trend.cache_ttl must not be negative")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves the timezone in which "today" is evaluated.
func (c *Config) Location() (*time.Location, error) {
	if c.Trend.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Trend.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Trend.Timezone, err)
	}
	return loc, nil
}
