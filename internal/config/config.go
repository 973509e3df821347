package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

const (
	DefaultListenAddr     = ":8000"
	DefaultTimezone       = "Europe/Paris"
	DefaultMaxBodyBytes   = 1 << 20
	DefaultRequestTimeout = 10 * time.Second
	DefaultIFTTTBaseURL   = "https://maker.ifttt.com"
	DefaultTriggerPath    = "/trigger/{event}/with/key/{key}"
)

// Config models the optional YAML configuration file that drives the relay.
// Environment variables take precedence over file values.
type Config struct {
	ListenAddr    string        `yaml:"listen_addr"`
	Timezone      string        `yaml:"timezone"`
	StrictFields  bool          `yaml:"strict_fields"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes"`
	HTTPServer    HTTPServer    `yaml:"http_server"`
	Logging       Logging       `yaml:"logging"`
	Notifications Notifications `yaml:"notifications"`

	location *time.Location
}

// HTTPServer holds inbound server timeouts as Go duration strings.
type HTTPServer struct {
	ReadTimeout  string `yaml:"read_timeout"`
	WriteTimeout string `yaml:"write_timeout"`
	IdleTimeout  string `yaml:"idle_timeout"`
}

// Logging configures the local log stream.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Notifications holds the downstream integrations.
type Notifications struct {
	RequestTimeout string          `yaml:"request_timeout"`
	IFTTT          *IFTTTConfig    `yaml:"ifttt"`
	Telegram       *TelegramConfig `yaml:"telegram"`
}

// IFTTTConfig configures the Maker Webhooks trigger.
type IFTTTConfig struct {
	Event       string `yaml:"event"`
	Secret      string `yaml:"secret"`
	BaseURL     string `yaml:"base_url"`
	TriggerPath string `yaml:"trigger_path"`
}

// TelegramConfig configures Telegram bot notifications.
type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	ChatID   string `yaml:"chat_id"`
}

// Load reads the YAML file at path when one is given, applies environment
// overrides and defaults, and validates the result.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv(os.LookupEnv)
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	event, hasEvent := lookup("IFTTT_EVENT")
	secret, hasSecret := lookup("IFTTT_SECRET")
	if hasEvent || hasSecret {
		if c.Notifications.IFTTT == nil {
			c.Notifications.IFTTT = &IFTTTConfig{}
		}
		if hasEvent {
			c.Notifications.IFTTT.Event = event
		}
		if hasSecret {
			c.Notifications.IFTTT.Secret = secret
		}
	}
	if v, ok := lookup("RELAY_LISTEN_ADDR"); ok && v != "" {
		c.ListenAddr = v
	}
	if v, ok := lookup("RELAY_LOG_LEVEL"); ok && v != "" {
		c.Logging.Level = v
	}
	if v, ok := lookup("RELAY_LOG_FORMAT"); ok && v != "" {
		c.Logging.Format = v
	}
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.ListenAddr) == "" {
		c.ListenAddr = DefaultListenAddr
	}
	if strings.TrimSpace(c.Timezone) == "" {
		c.Timezone = DefaultTimezone
	}
	if c.MaxBodyBytes == 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "auto"
	}
	if ifttt := c.Notifications.IFTTT; ifttt != nil {
		if ifttt.BaseURL == "" {
			ifttt.BaseURL = DefaultIFTTTBaseURL
		}
		if ifttt.TriggerPath == "" {
			ifttt.TriggerPath = DefaultTriggerPath
		}
	}
}

// Validate checks the loaded values and resolves the display timezone.
func (c *Config) Validate() error {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	c.location = loc

	if c.MaxBodyBytes < 0 {
		return errors.New("max_body_bytes must not be negative")
	}

	durations := map[string]string{
		"http_server.read_timeout":      c.HTTPServer.ReadTimeout,
		"http_server.write_timeout":     c.HTTPServer.WriteTimeout,
		"http_server.idle_timeout":      c.HTTPServer.IdleTimeout,
		"notifications.request_timeout": c.Notifications.RequestTimeout,
	}
	for name, value := range durations {
		if _, err := parseDuration(value, time.Second); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	if ifttt := c.Notifications.IFTTT; ifttt != nil {
		if strings.TrimSpace(ifttt.Secret) == "" {
			return errors.New("ifttt.secret (or IFTTT_SECRET) is required")
		}
		if !strings.Contains(ifttt.TriggerPath, "{key}") {
			return errors.New("ifttt.trigger_path must contain {key}")
		}
		if strings.Contains(ifttt.TriggerPath, "{event}") && strings.TrimSpace(ifttt.Event) == "" {
			return errors.New("ifttt.event (or IFTTT_EVENT) is required by trigger_path")
		}
	}

	if tg := c.Notifications.Telegram; tg != nil {
		if tg.BotToken == "" {
			return errors.New("telegram.bot_token is required")
		}
		if tg.ChatID == "" {
			return errors.New("telegram.chat_id is required")
		}
	}

	return nil
}

// Location returns the zone used to render notification timestamps.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

// RequestTimeout returns the outbound HTTP client timeout.
func (c *Config) RequestTimeout() time.Duration {
	d, _ := parseDuration(c.Notifications.RequestTimeout, DefaultRequestTimeout)
	return d
}

// ServerTimeouts returns the read, write and idle timeouts for the inbound server.
func (c *Config) ServerTimeouts() (read, write, idle time.Duration) {
	read, _ = parseDuration(c.HTTPServer.ReadTimeout, 5*time.Second)
	write, _ = parseDuration(c.HTTPServer.WriteTimeout, 10*time.Second)
	idle, _ = parseDuration(c.HTTPServer.IdleTimeout, 60*time.Second)
	return read, write, idle
}

func parseDuration(v string, fallback time.Duration) (time.Duration, error) {
	if strings.TrimSpace(v) == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback, err
	}
	if d <= 0 {
		return fallback, fmt.Errorf("duration %q must be positive", v)
	}
	return d, nil
}
