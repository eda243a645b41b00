package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/creasty/defaults"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/leeforge/logprovider/plugin"
)

func DefaultConfigOptions() ConfigOptions {
	basePath := os.Getenv("CONFIG_PATH")
	if basePath == "" {
		basePath = "config"
	}

	return ConfigOptions{
		BasePath: basePath,
		FileName: "config",
		FileType: "yaml",
	}
}

func DevConfigOptions() ConfigOptions {
	opts := DefaultConfigOptions()
	opts.WatchAble = true
	return opts
}

// NewConfig loads <FileName>.<FileType> from BasePath and merges the local
// and mode overlays found next to it. Environment variables override file
// values.
func NewConfig(optsArr ...ConfigOptions) (*Config, error) {
	var opts ConfigOptions
	if len(optsArr) == 0 {
		opts = DefaultConfigOptions()
	} else {
		opts = optsArr[0]
	}
	if opts.FileType == "" {
		opts.FileType = "yaml"
	}
	if opts.Mode == "" {
		opts.Mode = CurrentMode()
	}

	files := getConfigFilePaths(opts)
	if len(files) == 0 {
		return nil, fmt.Errorf("no configuration files found in path: %s", opts.BasePath)
	}

	c := &Config{instance: viper.New(), opts: opts, files: files}
	if err := c.load(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) load() error {
	v := c.instance
	v.SetConfigType(c.opts.FileType)
	for i, file := range c.files {
		v.SetConfigFile(file)
		read := v.MergeInConfig
		if i == 0 {
			read = v.ReadInConfig
		}
		if err := read(); err != nil {
			return fmt.Errorf("error reading config file %s: %w", file, err)
		}
	}
	// The base file is the one watched for changes.
	v.SetConfigFile(c.files[0])

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	if c.opts.EnvPrefix != "" {
		v.SetEnvPrefix(c.opts.EnvPrefix)
	}
	v.AutomaticEnv()
	applyEnvOverrides(v, c.opts.EnvPrefix)
	return nil
}

// Reload re-reads every file of the chain.
func (c *Config) Reload() error {
	c.watchMutex.Lock()
	defer c.watchMutex.Unlock()
	return c.load()
}

// Files returns the loaded files, base file first.
func (c *Config) Files() []string {
	return append([]string(nil), c.files...)
}

func (c *Config) Bind(instance any) error {
	if c == nil || c.instance == nil {
		return fmt.Errorf("config instance is nil")
	}
	if instance == nil {
		return fmt.Errorf("target instance is nil")
	}

	c.watchMutex.RLock()
	err := c.instance.Unmarshal(instance)
	c.watchMutex.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to unmarshal config (path: %s, file: %s.%s): %w",
			c.opts.BasePath, c.opts.FileName, c.opts.FileType, err)
	}

	c.watch()
	return nil
}

func (c *Config) BindWithDefaults(instance any) error {
	if err := defaults.Set(instance); err != nil {
		return fmt.Errorf("failed to set defaults: %w", err)
	}

	if err := c.Bind(instance); err != nil {
		return err
	}

	if err := defaults.Set(instance); err != nil {
		return fmt.Errorf("failed to set defaults after unmarshal: %w", err)
	}

	if v, ok := instance.(Validator); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("config validation failed: %w", err)
		}
	}
	return nil
}

// BindSection decodes the subtree under key into instance.
func (c *Config) BindSection(key string, instance any) error {
	c.watchMutex.RLock()
	defer c.watchMutex.RUnlock()

	if err := c.instance.UnmarshalKey(key, instance); err != nil {
		return fmt.Errorf("failed to unmarshal config section %q: %w", key, err)
	}
	return nil
}

// Section returns a copy of the subtree under key, or an empty map.
func (c *Config) Section(key string) map[string]any {
	c.watchMutex.RLock()
	defer c.watchMutex.RUnlock()

	section := c.instance.GetStringMap(key)
	if section == nil {
		return map[string]any{}
	}
	return section
}

// PluginConfig exposes the section named after a plugin as its
// ConfigProvider. A section with `enabled: false` is reported disabled.
func (c *Config) PluginConfig(name string) *plugin.PluginConfigEntry {
	settings := c.Section(name)
	enabled := true
	if v, ok := settings["enabled"]; ok {
		enabled = cast.ToBool(v)
		delete(settings, "enabled")
	}
	return plugin.NewPluginConfigEntry(name, enabled, settings)
}

func (c *Config) Get(key string) any {
	c.watchMutex.RLock()
	defer c.watchMutex.RUnlock()

	return c.instance.Get(key)
}

func (c *Config) Set(key string, value any) {
	c.watchMutex.Lock()
	defer c.watchMutex.Unlock()

	c.instance.Set(key, value)
}

// watch starts the file watcher once when WatchAble is set. On change the
// whole chain is reloaded before OnChange runs.
func (c *Config) watch() {
	if !c.opts.WatchAble {
		return
	}
	c.watchOnce.Do(func() {
		c.instance.OnConfigChange(func(e fsnotify.Event) {
			if err := c.Reload(); err != nil {
				fmt.Fprintf(os.Stderr, "config reload error: %v\n", err)
				return
			}
			if c.opts.OnChange != nil {
				c.opts.OnChange(e)
			}
		})
		c.instance.WatchConfig()
	})
}

// applyEnvOverrides checks all config keys and overrides with environment variables if they exist.
// This ensures environment variables have higher priority than config file values.
func applyEnvOverrides(v *viper.Viper, envPrefix string) {
	replacer := strings.NewReplacer(".", "_")

	for _, key := range v.AllKeys() {
		// Convert config key to env var name: logger.level -> LOGGER_LEVEL
		envKey := strings.ToUpper(replacer.Replace(key))
		if envPrefix != "" {
			envKey = envPrefix + "_" + envKey
		}

		if envValue := os.Getenv(envKey); envValue != "" {
			v.Set(key, envValue)
		}
	}
}

// getConfigFilePaths returns the existing files of the chain
// <name>, <name>.local, <name>.<mode>, <name>.<mode>.local for every alias
// of the mode.
func getConfigFilePaths(opts ConfigOptions) []string {
	fileNames := []string{opts.FileName, opts.FileName + ".local"}
	for _, alias := range opts.Mode.aliases() {
		fileNames = append(fileNames,
			fmt.Sprintf("%s.%s", opts.FileName, alias),
			fmt.Sprintf("%s.%s.local", opts.FileName, alias),
		)
	}

	var configFiles []string
	for _, fileName := range fileNames {
		file := filepath.Join(opts.BasePath, fmt.Sprintf("%s.%s", fileName, opts.FileType))
		if info, err := os.Stat(file); err == nil && !info.IsDir() {
			configFiles = append(configFiles, file)
		}
	}
	return configFiles
}
