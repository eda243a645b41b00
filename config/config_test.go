package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseYAML = `
logger:
  log_folder: /var/log/app
  level: info
  loggers:
    worker:
      level: warning
      handlers:
        - type: stream
          params:
            stream: /tmp/worker.log
          formatter:
            type: logstash
            params:
              application_name: billing
server:
  port: 8080
`

type serverConfig struct {
	Port    int    `mapstructure:"port" default:"80"`
	Host    string `mapstructure:"host" default:"localhost"`
	Timeout string `mapstructure:"timeout"`
}

type appConfig struct {
	Server serverConfig `mapstructure:"server"`
}

type validatedConfig struct {
	Server serverConfig `mapstructure:"server"`
}

func (c *validatedConfig) Validate() error {
	if c.Server.Port < 1024 {
		return errors.New("port must be unprivileged")
	}
	return nil
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestConfig(t *testing.T, dir string, mode Mode) *Config {
	t.Helper()
	c, err := NewConfig(ConfigOptions{BasePath: dir, FileName: "config", FileType: "yaml", Mode: mode})
	require.NoError(t, err)
	return c
}

func TestNewConfigMissingFiles(t *testing.T) {
	_, err := NewConfig(ConfigOptions{BasePath: t.TempDir(), FileName: "config", FileType: "yaml"})
	assert.Error(t, err)
}

func TestBindWithDefaults(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.yaml", baseYAML)
	c := newTestConfig(t, dir, DevMode)

	var cfg appConfig
	require.NoError(t, c.BindWithDefaults(&cfg))
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Empty(t, cfg.Server.Timeout)
}

func TestBindWithDefaultsValidates(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.yaml", "server:\n  port: 80\n")
	c := newTestConfig(t, dir, DevMode)

	var cfg validatedConfig
	assert.Error(t, c.BindWithDefaults(&cfg))
}

func TestOverlayChain(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.yaml", baseYAML)
	writeFile(t, dir, "config.local.yaml", "server:\n  host: local.example\n")
	writeFile(t, dir, "config.prod.yaml", "logger:\n  level: error\n")
	writeFile(t, dir, "config.test.yaml", "logger:\n  level: debug\n")

	c := newTestConfig(t, dir, ProMode)
	assert.Equal(t, []string{
		filepath.Join(dir, "config.yaml"),
		filepath.Join(dir, "config.local.yaml"),
		filepath.Join(dir, "config.prod.yaml"),
	}, c.Files())

	assert.Equal(t, "error", c.Get("logger.level"))
	assert.Equal(t, "/var/log/app", c.Get("logger.log_folder"))
	assert.Equal(t, "local.example", c.Get("server.host"))
}

func TestEnvOverride(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.yaml", baseYAML)
	t.Setenv("APP_LOGGER_LEVEL", "critical")

	c, err := NewConfig(ConfigOptions{BasePath: dir, FileName: "config", FileType: "yaml", EnvPrefix: "APP", Mode: DevMode})
	require.NoError(t, err)
	assert.Equal(t, "critical", c.Get("logger.level"))
}

func TestSection(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.yaml", baseYAML)
	c := newTestConfig(t, dir, DevMode)

	section := c.Section("logger")
	assert.Equal(t, "info", section["level"])
	assert.Contains(t, section, "loggers")
	assert.Empty(t, c.Section("missing"))

	var server serverConfig
	require.NoError(t, c.BindSection("server", &server))
	assert.Equal(t, 8080, server.Port)
}

func TestPluginConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.yaml", baseYAML+"audit:\n  enabled: false\n  retention_days: 30\n")
	c := newTestConfig(t, dir, DevMode)

	logger := c.PluginConfig("logger")
	assert.True(t, logger.IsEnabled())
	assert.Equal(t, "logger", logger.Name())
	assert.Equal(t, "info", logger.GetString("level", ""))

	var opts struct {
		LogFolder string `json:"log_folder"`
		Loggers   map[string]struct {
			Level    string `json:"level"`
			Handlers []struct {
				Type      string         `json:"type"`
				Params    map[string]any `json:"params"`
				Formatter struct {
					Type   string         `json:"type"`
					Params map[string]any `json:"params"`
				} `json:"formatter"`
			} `json:"handlers"`
		} `json:"loggers"`
	}
	require.NoError(t, logger.Bind(&opts))
	assert.Equal(t, "/var/log/app", opts.LogFolder)
	worker := opts.Loggers["worker"]
	assert.Equal(t, "warning", worker.Level)
	require.Len(t, worker.Handlers, 1)
	assert.Equal(t, "/tmp/worker.log", worker.Handlers[0].Params["stream"])
	assert.Equal(t, "billing", worker.Handlers[0].Formatter.Params["application_name"])

	audit := c.PluginConfig("audit")
	assert.False(t, audit.IsEnabled())
	assert.Equal(t, 30, audit.GetInt("retention_days", 0))
	_, ok := audit.Get("enabled")
	assert.False(t, ok)
}

func TestReload(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", baseYAML)
	writeFile(t, dir, "config.local.yaml", "server:\n  port: 9090\n")
	c := newTestConfig(t, dir, DevMode)
	assert.Equal(t, 9090, c.instance.GetInt("server.port"))

	require.NoError(t, os.WriteFile(path, []byte("logger:\n  level: error\nserver:\n  port: 1\n"), 0o644))
	require.NoError(t, c.Reload())

	assert.Equal(t, "error", c.Get("logger.level"))
	assert.Equal(t, 9090, c.instance.GetInt("server.port"), "overlays survive a reload")
}

func TestParseMode(t *testing.T) {
	tests := map[string]Mode{
		"":           DevMode,
		"dev":        DevMode,
		"PROD":       ProMode,
		" pro ":      ProMode,
		"production": ProMode,
		"testing":    TestMode,
		"staging":    DevMode,
	}
	for in, want := range tests {
		if got := ParseMode(in); got != want {
			t.Errorf("ParseMode(%q) = %q, want %q", in, got, want)
		}
	}
}
