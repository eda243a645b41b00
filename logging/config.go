package logging

import (
	"strings"

	"go.uber.org/zap/zapcore"
)

// FormatterConfig holds the encoder settings shared by every formatter.
type FormatterConfig struct {
	// MessageKey is the JSON key for the message field.
	MessageKey string `mapstructure:"message_key" json:"messageKey" yaml:"message_key" default:"message"`

	// LevelKey is the JSON key for the level field.
	LevelKey string `mapstructure:"level_key" json:"levelKey" yaml:"level_key" default:"level"`

	// TimeKey is the JSON key for the timestamp field.
	TimeKey string `mapstructure:"time_key" json:"timeKey" yaml:"time_key" default:"time"`

	// NameKey is the JSON key for the logger name (channel) field.
	NameKey string `mapstructure:"name_key" json:"nameKey" yaml:"name_key" default:"channel"`

	// CallerKey is the JSON key for the caller field.
	CallerKey string `mapstructure:"caller_key" json:"callerKey" yaml:"caller_key" default:"caller"`

	// StacktraceKey is the JSON key for the stacktrace field.
	StacktraceKey string `mapstructure:"stacktrace_key" json:"stacktraceKey" yaml:"stacktrace_key" default:"stacktrace"`

	// LineEnding is the line ending character(s). Empty means "\n".
	LineEnding string `mapstructure:"line_ending" json:"lineEnding" yaml:"line_ending"`

	// EncodeLevel is the level encoder type (lowercase, capital, lowercase_color, capital_color).
	EncodeLevel string `mapstructure:"encode_level" json:"encodeLevel" yaml:"encode_level" default:"lowercase" validate:"oneof=lowercase capital lowercase_color capital_color"`

	// Prefix is prepended to the timestamp.
	Prefix string `mapstructure:"prefix" json:"prefix" yaml:"prefix"`

	// TimeFormat is the time format string (uses Go time format).
	TimeFormat string `mapstructure:"time_format" json:"timeFormat" yaml:"time_format" default:"2006-01-02T15:04:05.000Z07:00"`
}

// DefaultFormatterConfig returns a FormatterConfig with every default applied.
func DefaultFormatterConfig() FormatterConfig {
	var cfg FormatterConfig
	cfg.applyDefaults()
	return cfg
}

// ZapEncodeLevel returns the zapcore.LevelEncoder based on EncodeLevel.
func (c FormatterConfig) ZapEncodeLevel() zapcore.LevelEncoder {
	switch strings.ToLower(c.EncodeLevel) {
	case "capital":
		return zapcore.CapitalLevelEncoder
	case "lowercase_color":
		return zapcore.LowercaseColorLevelEncoder
	case "capital_color":
		return zapcore.CapitalColorLevelEncoder
	default:
		return zapcore.LowercaseLevelEncoder
	}
}

// applyDefaults applies default values to empty fields.
func (c *FormatterConfig) applyDefaults() {
	if c.MessageKey == "" {
		c.MessageKey = "message"
	}
	if c.LevelKey == "" {
		c.LevelKey = "level"
	}
	if c.TimeKey == "" {
		c.TimeKey = "time"
	}
	if c.NameKey == "" {
		c.NameKey = "channel"
	}
	if c.CallerKey == "" {
		c.CallerKey = "caller"
	}
	if c.StacktraceKey == "" {
		c.StacktraceKey = "stacktrace"
	}
	if c.LineEnding == "" {
		c.LineEnding = zapcore.DefaultLineEnding
	}
	if c.EncodeLevel == "" {
		c.EncodeLevel = "lowercase"
	}
	if c.TimeFormat == "" {
		c.TimeFormat = "2006-01-02T15:04:05.000Z07:00"
	}
}
