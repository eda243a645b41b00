package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap/zapcore"
)

// ColorScheme maps log levels to terminal colors for the color formatter.
type ColorScheme interface {
	LevelColor(level zapcore.Level) Color
}

// DefaultColorScheme provides configurable level colors.
// Zero values fall back to the plain foreground defaults.
type DefaultColorScheme struct {
	LevelDebug    Color
	LevelInfo     Color
	LevelWarn     Color
	LevelError    Color
	LevelCritical Color // dpanic
	LevelAlert    Color // panic
	LevelFatal    Color
}

// NewDefaultColorScheme returns a scheme using foreground colors only.
func NewDefaultColorScheme() *DefaultColorScheme {
	return &DefaultColorScheme{
		LevelDebug:    Gray,
		LevelInfo:     Green,
		LevelWarn:     Yellow,
		LevelError:    Red,
		LevelCritical: Purple,
		LevelAlert:    BoldPurple,
		LevelFatal:    Combine(BoldWhite, BgRed),
	}
}

// NewBoldColorScheme returns a scheme with bold foreground colors.
func NewBoldColorScheme() *DefaultColorScheme {
	return &DefaultColorScheme{
		LevelDebug:    Gray,
		LevelInfo:     BoldGreen,
		LevelWarn:     BoldYellow,
		LevelError:    BoldRed,
		LevelCritical: BoldPurple,
		LevelAlert:    Combine(BoldWhite, BgPurple),
		LevelFatal:    Combine(BoldWhite, BgRed),
	}
}

// NewBackgroundColorScheme returns a scheme using background colors for emphasis.
func NewBackgroundColorScheme() *DefaultColorScheme {
	return &DefaultColorScheme{
		LevelDebug:    Gray,
		LevelInfo:     Combine(Black, BgGreen),
		LevelWarn:     Combine(Black, BgYellow),
		LevelError:    Combine(BoldWhite, BgRed),
		LevelCritical: Combine(BoldWhite, BgPurple),
		LevelAlert:    Combine(BoldWhite, BgPurple, Blink),
		LevelFatal:    Combine(BoldWhite, BgRed, Blink),
	}
}

// ColorSchemeByName returns one of the built-in schemes: default, bold or background.
func ColorSchemeByName(name string) (*DefaultColorScheme, error) {
	switch strings.ToLower(name) {
	case "", "default":
		return NewDefaultColorScheme(), nil
	case "bold":
		return NewBoldColorScheme(), nil
	case "background":
		return NewBackgroundColorScheme(), nil
	default:
		return nil, fmt.Errorf("unknown color scheme %q", name)
	}
}

// LevelColor returns the color for a log level.
func (s *DefaultColorScheme) LevelColor(level zapcore.Level) Color {
	switch level {
	case zapcore.DebugLevel:
		return s.withDefault(s.LevelDebug, Gray)
	case zapcore.InfoLevel:
		return s.withDefault(s.LevelInfo, Green)
	case zapcore.WarnLevel:
		return s.withDefault(s.LevelWarn, Yellow)
	case zapcore.ErrorLevel:
		return s.withDefault(s.LevelError, Red)
	case zapcore.DPanicLevel:
		return s.withDefault(s.LevelCritical, Purple)
	case zapcore.PanicLevel:
		return s.withDefault(s.LevelAlert, BoldPurple)
	case zapcore.FatalLevel:
		return s.withDefault(s.LevelFatal, Combine(BoldWhite, BgRed))
	default:
		return White
	}
}

// withDefault returns the value if not empty, otherwise returns the default.
func (s *DefaultColorScheme) withDefault(value, defaultValue Color) Color {
	if value == "" {
		return defaultValue
	}
	return value
}

// Ensure DefaultColorScheme implements ColorScheme.
var _ ColorScheme = (*DefaultColorScheme)(nil)
