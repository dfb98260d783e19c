// Package config loads daemon settings from a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Display DisplayConfig `yaml:"display"`
	MQTT    MQTTConfig    `yaml:"mqtt"`
	HTTP    HTTPConfig    `yaml:"http"`
	LED     LEDConfig     `yaml:"led"`
	History HistoryConfig `yaml:"history"`
	Console bool          `yaml:"console"`
}

// ---- DISPLAY ----

type DisplayConfig struct {
	DecimalPlaces    int   `yaml:"decimal_places"`
	Blinking         bool  `yaml:"blinking"`
	UpdateIntervalMs int64 `yaml:"update_interval_ms"`
}

// ---- MQTT ----

type MQTTConfig struct {
	Broker      string `yaml:"broker"`
	ClientID    string `yaml:"client_id"`
	TopicPrefix string `yaml:"topic_prefix"`
	BufferSize  int    `yaml:"buffer_size"`
}

// ---- HTTP ----

type HTTPConfig struct {
	Addr string `yaml:"addr"` // empty disables
}

// ---- LED ----

type LEDConfig struct {
	Pin int `yaml:"pin"` // 0 disables
}

// ---- HISTORY ----

type HistoryConfig struct {
	DSN           string `yaml:"dsn"` // empty disables
	RetentionDays int    `yaml:"retention_days"`
	Recording     bool   `yaml:"recording"`
}

// Environment variables read by ApplyEnv.
const (
	EnvBroker      = "MAMA_BROKER"
	EnvHTTPAddr    = "MAMA_HTTP_ADDR"
	EnvConfig      = "MAMA_CONFIG"
	EnvDatabaseURL = "DATABASE_URL"
)

// Default returns the factory settings.
func Default() *Config {
	return &Config{
		Display: DisplayConfig{
			DecimalPlaces:    2,
			Blinking:         true,
			UpdateIntervalMs: 1500,
		},
		MQTT: MQTTConfig{
			Broker:      "tcp://192.168.1.200:1883",
			ClientID:    "lambda-display",
			TopicPrefix: "mama",
			BufferSize:  100,
		},
		HTTP:    HTTPConfig{Addr: ":80"},
		History: HistoryConfig{RetentionDays: 30},
	}
}

// Load reads path over the defaults. Keys missing from the file keep their
// default values. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadDotEnv loads variables from the given .env files into the process
// environment without overriding variables already set. Missing files are
// ignored.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides cfg from MAMA_* variables and DATABASE_URL looked up
// with getenv.
func ApplyEnv(cfg *Config, getenv func(string) string) {
	if v := strings.TrimSpace(getenv(EnvBroker)); v != "" {
		cfg.MQTT.Broker = v
	}
	if v, ok := lookup(getenv, EnvHTTPAddr); ok {
		cfg.HTTP.Addr = v
	}
	if v := strings.TrimSpace(getenv(EnvDatabaseURL)); v != "" {
		cfg.History.DSN = v
	}
}

// Path returns the config file path named by MAMA_CONFIG, if any.
func Path(getenv func(string) string) string {
	return strings.TrimSpace(getenv(EnvConfig))
}

// lookup treats "off" as an explicit empty value so a listener can be
// disabled from the environment.
func lookup(getenv func(string) string, key string) (string, bool) {
	v := strings.TrimSpace(getenv(key))
	switch v {
	case "":
		return "", false
	case "off":
		return "", true
	}
	return v, true
}
