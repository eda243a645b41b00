package provider

// LoggerSpec declares one logger. The logger name is the key of the
// enclosing map. Without Handlers a default stream handler is synthesized.
type LoggerSpec struct {
	Level      string          `mapstructure:"level" json:"level,omitempty" yaml:"level"`
	Handlers   []HandlerSpec   `mapstructure:"handlers" json:"handlers,omitempty" yaml:"handlers"`
	Processors []ProcessorSpec `mapstructure:"processors" json:"processors,omitempty" yaml:"processors"`
}

// HandlerSpec names a catalog handler kind and its constructor parameters.
// A handler without a "level" parameter takes the logger's level.
type HandlerSpec struct {
	Type      string         `mapstructure:"type" json:"type" yaml:"type"`
	Params    map[string]any `mapstructure:"params" json:"params,omitempty" yaml:"params"`
	Formatter *FormatterSpec `mapstructure:"formatter" json:"formatter,omitempty" yaml:"formatter"`
}

// FormatterSpec names a catalog formatter kind and its parameters.
type FormatterSpec struct {
	Type   string         `mapstructure:"type" json:"type" yaml:"type"`
	Params map[string]any `mapstructure:"params" json:"params,omitempty" yaml:"params"`
}

// ProcessorSpec names a catalog processor kind and its parameters.
type ProcessorSpec struct {
	Type   string         `mapstructure:"type" json:"type" yaml:"type"`
	Params map[string]any `mapstructure:"params" json:"params,omitempty" yaml:"params"`
}
