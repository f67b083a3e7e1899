// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package chamber

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, "/dev/ttyUSB0", cfg.Serial.Port)
	assert.Equal(t, DefaultBaudRate, cfg.Serial.Baud)
	assert.False(t, cfg.Simulate)
	assert.Equal(t, 30, cfg.Wake.TimeoutSeconds)
}

func TestLoadConfig_FileNotExists(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_ValidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chamberctl.yaml")
	content := `
serial:
  port: "/dev/ttyACM1"
  baud: 19200
bridge:
  url: "wss://lab-gw.example.com/chamber"
  username: "operator"
simulate: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyACM1", cfg.Serial.Port)
	assert.Equal(t, 19200, cfg.Serial.Baud)
	assert.Equal(t, "wss://lab-gw.example.com/chamber", cfg.Bridge.URL)
	assert.Equal(t, "operator", cfg.Bridge.Username)
	assert.True(t, cfg.Simulate)
	assert.Equal(t, 30, cfg.Wake.TimeoutSeconds, "missing fields fall back to defaults")
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("serial: ["), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestConfig_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chamberctl.yaml")

	cfg := DefaultConfig()
	cfg.Serial.Port = "/dev/ttyS3"
	cfg.Wake.TimeoutSeconds = 45
	require.NoError(t, cfg.Save(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
