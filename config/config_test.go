package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "server:\n  port: \":9090\"\n"))
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.Mode)
	assert.Equal(t, 600, cfg.Detection.FrameSize)
	assert.Equal(t, 8000.0, cfg.Detection.MinArea)
	assert.Equal(t, DefaultAllowList, cfg.Detection.AllowList)
	assert.Equal(t, DefaultCurrencyLabels, cfg.Currency.Labels)
	assert.Equal(t, 10*time.Minute, cfg.Redis.TTL)
}

func TestLoad_OverridesFromFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
detection:
  backend: remote
  frame_size: 900
  min_area: 12000
  allow_list: [car, person]
  request_timeout: 3s
face:
  tolerance: 0.5
`))
	require.NoError(t, err)

	assert.Equal(t, "remote", cfg.Detection.Backend)
	assert.Equal(t, 900, cfg.Detection.FrameSize)
	assert.Equal(t, 12000.0, cfg.Detection.MinArea)
	assert.Equal(t, []string{"car", "person"}, cfg.Detection.AllowList)
	assert.Equal(t, 3*time.Second, cfg.Detection.RequestTimeout)
	assert.InDelta(t, 0.5, cfg.Face.Tolerance, 1e-6)
}

func TestLoad_EnvironmentWins(t *testing.T) {
	t.Setenv("BLINDSIGHT_SMS_AUTH_TOKEN", "secret")
	t.Setenv("BLINDSIGHT_DETECTION_BACKEND", "remote")

	cfg, err := Load(writeConfig(t, "detection:\n  backend: dnn\n"))
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.SMS.AuthToken)
	assert.Equal(t, "remote", cfg.Detection.Backend)
}

func TestLoad_InvalidThresholdsFallBack(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"zero", "detection:\n  frame_size: 0\n  min_area: 0\n"},
		{"negative", "detection:\n  frame_size: -600\n  min_area: -1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tt.body))
			require.NoError(t, err)
			assert.Equal(t, 600, cfg.Detection.FrameSize)
			assert.Equal(t, 8000.0, cfg.Detection.MinArea)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestDefault_ListsAreCopies(t *testing.T) {
	cfg := Default()
	cfg.Detection.AllowList[0] = "boat"
	assert.Equal(t, "car", DefaultAllowList[0])
}
