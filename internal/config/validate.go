package config

import (
	"fmt"
	"net/url"

	"github.com/sweeney/lambda-display/internal/display"
)

// Validate checks configuration correctness.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	d := cfg.Display
	if d.DecimalPlaces < 0 || d.DecimalPlaces > display.MaxDecimalPlaces {
		return fmt.Errorf("display.decimal_places must be 0..%d, got %d", display.MaxDecimalPlaces, d.DecimalPlaces)
	}
	if d.UpdateIntervalMs <= 0 {
		return fmt.Errorf("display.update_interval_ms must be positive, got %d", d.UpdateIntervalMs)
	}

	m := cfg.MQTT
	if m.Broker == "" {
		return fmt.Errorf("mqtt.broker is required")
	}
	u, err := url.Parse(m.Broker)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("mqtt.broker %q must be a URL like tcp://host:1883", m.Broker)
	}
	if m.BufferSize < 0 {
		return fmt.Errorf("mqtt.buffer_size must not be negative, got %d", m.BufferSize)
	}

	if cfg.LED.Pin < 0 {
		return fmt.Errorf("led.pin must not be negative, got %d", cfg.LED.Pin)
	}

	if cfg.History.DSN != "" && cfg.History.RetentionDays < 1 {
		return fmt.Errorf("history.retention_days must be at least 1, got %d", cfg.History.RetentionDays)
	}
	return nil
}
