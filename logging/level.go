package logging

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap/zapcore"
)

// ErrUnknownLevel is returned by ParseLevel for names outside the severity scale.
var ErrUnknownLevel = errors.New("unknown log level")

// levelNames maps the RFC 5424 names, zap's own names and the numeric
// monolog values onto zap levels. zap has fewer levels, so notice folds
// into info and critical/alert/emergency into dpanic/panic/fatal.
var levelNames = map[string]zapcore.Level{
	"debug":     zapcore.DebugLevel,
	"100":       zapcore.DebugLevel,
	"info":      zapcore.InfoLevel,
	"200":       zapcore.InfoLevel,
	"notice":    zapcore.InfoLevel,
	"250":       zapcore.InfoLevel,
	"warn":      zapcore.WarnLevel,
	"warning":   zapcore.WarnLevel,
	"300":       zapcore.WarnLevel,
	"error":     zapcore.ErrorLevel,
	"400":       zapcore.ErrorLevel,
	"critical":  zapcore.DPanicLevel,
	"dpanic":    zapcore.DPanicLevel,
	"500":       zapcore.DPanicLevel,
	"alert":     zapcore.PanicLevel,
	"panic":     zapcore.PanicLevel,
	"550":       zapcore.PanicLevel,
	"emergency": zapcore.FatalLevel,
	"fatal":     zapcore.FatalLevel,
	"600":       zapcore.FatalLevel,
}

// ParseLevel converts a case-insensitive severity name to a zapcore.Level.
func ParseLevel(name string) (zapcore.Level, error) {
	level, ok := levelNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return zapcore.DebugLevel, fmt.Errorf("%w: %q", ErrUnknownLevel, name)
	}
	return level, nil
}

// MustParseLevel is ParseLevel for names known at compile time.
func MustParseLevel(name string) zapcore.Level {
	level, err := ParseLevel(name)
	if err != nil {
		panic(err)
	}
	return level
}

// IsLevel reports whether name is on the severity scale.
func IsLevel(name string) bool {
	_, err := ParseLevel(name)
	return err == nil
}
