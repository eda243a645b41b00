package provider

// Options is the "logger" configuration section.
type Options struct {
	// LogFolder is where default handlers write <name>.log.
	LogFolder string `mapstructure:"log_folder" json:"log_folder" yaml:"log_folder" default:"data/logs/"`

	// Level is used by loggers that do not declare one.
	Level string `mapstructure:"level" json:"level" yaml:"level" default:"debug"`

	// Strict rejects a second logger with an existing name instead of replacing it.
	Strict bool `mapstructure:"strict" json:"strict" yaml:"strict"`

	// Loggers are fabricated when the provider is enabled.
	Loggers map[string]LoggerSpec `mapstructure:"loggers" json:"loggers,omitempty" yaml:"loggers"`

	// RequestLogger names the logger used by the HTTP request middleware.
	// Empty disables the middleware.
	RequestLogger string `mapstructure:"request_logger" json:"request_logger" yaml:"request_logger"`

	// CloseReplacedAfter is a duration such as "30s". Loggers replaced by a
	// later fabrication, for example on config reload, are closed once it
	// has passed. Empty keeps them open.
	CloseReplacedAfter string `mapstructure:"close_replaced_after" json:"close_replaced_after" yaml:"close_replaced_after"`

	// RoutePrefix is where the logger listing is served.
	RoutePrefix string `mapstructure:"route_prefix" json:"route_prefix" yaml:"route_prefix" default:"/_loggers"`
}
