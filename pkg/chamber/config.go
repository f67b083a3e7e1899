// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package chamber

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the persisted chamberctl settings. Command-line flags
// override anything loaded from a file.
type Config struct {
	Serial   SerialConfig `yaml:"serial"`
	Bridge   BridgeConfig `yaml:"bridge"`
	Simulate bool         `yaml:"simulate"`
	Wake     WakeConfig   `yaml:"wake"`
}

// SerialConfig locates the chamber's serial port.
type SerialConfig struct {
	Port string `yaml:"port"`
	Baud int    `yaml:"baud"`
}

// BridgeConfig points at a WebSocket serial bridge for driving a chamber
// attached to a remote gateway.
type BridgeConfig struct {
	URL         string `yaml:"url"`
	Username    string `yaml:"username"`
	NoSSLVerify bool   `yaml:"no_ssl_verify"`
}

// WakeConfig tunes the post-power-on responsiveness probe.
type WakeConfig struct {
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// DefaultConfig returns a configuration with sensible values.
func DefaultConfig() *Config {
	return &Config{
		Serial: SerialConfig{
			Port: "/dev/ttyUSB0",
			Baud: DefaultBaudRate,
		},
		Wake: WakeConfig{
			TimeoutSeconds: 30,
		},
	}
}

// LoadConfig loads configuration from a YAML file. A missing file is not an
// error; defaults are returned.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()
	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ensureDefaults backfills fields a hand-edited file may have left empty.
func (c *Config) ensureDefaults() {
	if c.Serial.Baud == 0 {
		c.Serial.Baud = DefaultBaudRate
	}
	if c.Wake.TimeoutSeconds == 0 {
		c.Wake.TimeoutSeconds = 30
	}
}
