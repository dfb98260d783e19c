package config

import "strings"

// Normalize applies post-validation normalization.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	cfg.MQTT.TopicPrefix = strings.Trim(cfg.MQTT.TopicPrefix, "/")
	if cfg.MQTT.TopicPrefix == "" {
		cfg.MQTT.TopicPrefix = "mama"
	}
	if cfg.MQTT.ClientID == "" {
		cfg.MQTT.ClientID = "lambda-display"
	}
}
