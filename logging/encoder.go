package logging

import (
	"os"
	"time"

	"go.uber.org/zap/zapcore"
)

// Formatter converts a record into its serialized form before a handler writes it.
type Formatter interface {
	Encoder() zapcore.Encoder
}

// CusTimeEncoder creates a custom time encoder that adds the prefix and formats the time.
func CusTimeEncoder(config FormatterConfig) zapcore.TimeEncoder {
	return func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(config.Prefix + t.Format(config.TimeFormat))
	}
}

// getEncoderConfig creates a zapcore.EncoderConfig from the FormatterConfig.
func getEncoderConfig(config FormatterConfig) zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		MessageKey:     config.MessageKey,
		LevelKey:       config.LevelKey,
		TimeKey:        config.TimeKey,
		NameKey:        config.NameKey,
		CallerKey:      config.CallerKey,
		StacktraceKey:  config.StacktraceKey,
		LineEnding:     config.LineEnding,
		EncodeLevel:    config.ZapEncodeLevel(),
		EncodeTime:     CusTimeEncoder(config),
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeName:     zapcore.FullNameEncoder,
	}
}

// JSONFormatter writes one JSON object per record.
type JSONFormatter struct {
	config  FormatterConfig
	encoder zapcore.Encoder
}

func NewJSONFormatter(config FormatterConfig) *JSONFormatter {
	config.applyDefaults()
	return &JSONFormatter{
		config:  config,
		encoder: zapcore.NewJSONEncoder(getEncoderConfig(config)),
	}
}

func (f *JSONFormatter) Encoder() zapcore.Encoder { return f.encoder }
func (f *JSONFormatter) Config() FormatterConfig  { return f.config }

// LineFormatter writes tab-separated console lines.
type LineFormatter struct {
	config  FormatterConfig
	encoder zapcore.Encoder
}

func NewLineFormatter(config FormatterConfig) *LineFormatter {
	config.applyDefaults()
	return &LineFormatter{
		config:  config,
		encoder: zapcore.NewConsoleEncoder(getEncoderConfig(config)),
	}
}

func (f *LineFormatter) Encoder() zapcore.Encoder { return f.encoder }
func (f *LineFormatter) Config() FormatterConfig  { return f.config }

// LogstashOptions configures the logstash formatter. The shared encoder
// keys apply; the time key stays "@timestamp" unless set to something
// other than its default.
type LogstashOptions struct {
	FormatterConfig `mapstructure:",squash"`
	ApplicationName string `mapstructure:"application_name" json:"applicationName" yaml:"application_name" validate:"required"`
	SystemName      string `mapstructure:"system_name" json:"systemName" yaml:"system_name"`
	Version         int    `mapstructure:"version" json:"version" yaml:"version" default:"1"`
}

const logstashTimeKey = "@timestamp"

// LogstashFormatter writes JSON in the logstash event layout:
// @timestamp, @version, type (application) and host.
type LogstashFormatter struct {
	options LogstashOptions
	encoder zapcore.Encoder
}

func NewLogstashFormatter(options LogstashOptions) *LogstashFormatter {
	if options.SystemName == "" {
		options.SystemName, _ = os.Hostname()
	}
	if options.Version == 0 {
		options.Version = 1
	}
	options.FormatterConfig.applyDefaults()
	if options.TimeKey == DefaultFormatterConfig().TimeKey {
		options.TimeKey = logstashTimeKey
	}

	encoder := zapcore.NewJSONEncoder(getEncoderConfig(options.FormatterConfig))
	encoder.AddInt("@version", options.Version)
	encoder.AddString("type", options.ApplicationName)
	encoder.AddString("host", options.SystemName)

	return &LogstashFormatter{options: options, encoder: encoder}
}

func (f *LogstashFormatter) Encoder() zapcore.Encoder { return f.encoder }
func (f *LogstashFormatter) ApplicationName() string  { return f.options.ApplicationName }
func (f *LogstashFormatter) Options() LogstashOptions { return f.options }

// ColorOptions configures the color formatter.
type ColorOptions struct {
	FormatterConfig `mapstructure:",squash"`
	Scheme          string `mapstructure:"scheme" json:"scheme" yaml:"scheme" default:"default" validate:"oneof=default bold background"`
}

// ColorFormatter writes console lines with the level colored by a ColorScheme.
type ColorFormatter struct {
	scheme  ColorScheme
	encoder zapcore.Encoder
}

func NewColorFormatter(config FormatterConfig, scheme ColorScheme) *ColorFormatter {
	config.applyDefaults()
	if scheme == nil {
		scheme = NewDefaultColorScheme()
	}

	encoderConfig := getEncoderConfig(config)
	encoderConfig.EncodeLevel = func(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(Colorize(scheme.LevelColor(l), l.CapitalString()))
	}
	return &ColorFormatter{
		scheme:  scheme,
		encoder: zapcore.NewConsoleEncoder(encoderConfig),
	}
}

func (f *ColorFormatter) Encoder() zapcore.Encoder { return f.encoder }
func (f *ColorFormatter) Scheme() ColorScheme      { return f.scheme }

func newJSONFormatterFromParams(params map[string]any) (Formatter, error) {
	var config FormatterConfig
	if err := decodeParams(params, &config); err != nil {
		return nil, err
	}
	return NewJSONFormatter(config), nil
}

func newLineFormatterFromParams(params map[string]any) (Formatter, error) {
	var config FormatterConfig
	if err := decodeParams(params, &config); err != nil {
		return nil, err
	}
	return NewLineFormatter(config), nil
}

func newLogstashFormatterFromParams(params map[string]any) (Formatter, error) {
	var options LogstashOptions
	if err := decodeParams(params, &options); err != nil {
		return nil, err
	}
	return NewLogstashFormatter(options), nil
}

func newColorFormatterFromParams(params map[string]any) (Formatter, error) {
	var options ColorOptions
	if err := decodeParams(params, &options); err != nil {
		return nil, err
	}
	scheme, err := ColorSchemeByName(options.Scheme)
	if err != nil {
		return nil, err
	}
	return NewColorFormatter(options.FormatterConfig, scheme), nil
}
