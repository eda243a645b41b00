package plugin

import (
	"github.com/leeforge/logprovider/json"
	"github.com/spf13/cast"
)

// ConfigProvider gives plugins type-safe access to their scoped configuration.
type ConfigProvider interface {
	Get(key string) (any, bool)
	GetString(key string, defaultVal string) string
	GetInt(key string, defaultVal int) int
	GetBool(key string, defaultVal bool) bool
	Bind(target any) error
	IsEnabled() bool
}

// PluginConfigEntry represents a single plugin's configuration entry.
type PluginConfigEntry struct {
	name     string
	enabled  bool
	settings map[string]any
}

// NewPluginConfigEntry creates a plugin config entry.
func NewPluginConfigEntry(name string, enabled bool, settings map[string]any) *PluginConfigEntry {
	if settings == nil {
		settings = make(map[string]any)
	}
	return &PluginConfigEntry{name: name, enabled: enabled, settings: settings}
}

// Name returns the config section this entry was read from.
func (c *PluginConfigEntry) Name() string {
	return c.name
}

func (c *PluginConfigEntry) Get(key string) (any, bool) {
	v, ok := c.settings[key]
	return v, ok
}

func (c *PluginConfigEntry) GetString(key string, defaultVal string) string {
	v, ok := c.settings[key]
	if !ok {
		return defaultVal
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return defaultVal
	}
	return s
}

func (c *PluginConfigEntry) GetInt(key string, defaultVal int) int {
	v, ok := c.settings[key]
	if !ok {
		return defaultVal
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return defaultVal
	}
	return n
}

func (c *PluginConfigEntry) GetBool(key string, defaultVal bool) bool {
	v, ok := c.settings[key]
	if !ok {
		return defaultVal
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return defaultVal
	}
	return b
}

// Bind decodes the settings into target. Fields absent from the settings
// keep their `default` tag values.
func (c *PluginConfigEntry) Bind(target any) error {
	return json.Convert(c.settings, target)
}

func (c *PluginConfigEntry) IsEnabled() bool {
	return c.enabled
}

// NewMapConfigProvider creates a ConfigProvider from a settings map (always enabled).
func NewMapConfigProvider(settings map[string]any) *PluginConfigEntry {
	return NewPluginConfigEntry("", true, settings)
}

// emptyConfig is a ConfigProvider that returns defaults for everything.
type emptyConfig struct{}

func (e *emptyConfig) Get(string) (any, bool)              { return nil, false }
func (e *emptyConfig) GetString(_ string, d string) string { return d }
func (e *emptyConfig) GetInt(_ string, d int) int          { return d }
func (e *emptyConfig) GetBool(_ string, d bool) bool       { return d }
func (e *emptyConfig) Bind(target any) error               { return json.Convert(map[string]any{}, target) }
func (e *emptyConfig) IsEnabled() bool                     { return false }

// EmptyConfig returns a ConfigProvider that always returns defaults.
func EmptyConfig() ConfigProvider { return &emptyConfig{} }
