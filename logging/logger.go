package logging

import (
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a named logging channel backed by an ordered handler stack.
type Logger interface {
	// Name returns the channel name.
	Name() string
	// Handlers returns the handlers in the order records reach them.
	Handlers() []Handler
	// Processors returns the processors in the order they run.
	Processors() []Processor
	// PushHandler appends a handler to the stack.
	PushHandler(h Handler)
	// PushProcessor appends a processor to the stack.
	PushProcessor(p Processor)

	// Debug logs a message at DebugLevel.
	Debug(msg string, fields ...zap.Field)
	// Info logs a message at InfoLevel.
	Info(msg string, fields ...zap.Field)
	// Warn logs a message at WarnLevel.
	Warn(msg string, fields ...zap.Field)
	// Error logs a message at ErrorLevel.
	Error(msg string, fields ...zap.Field)
	// Fatal logs a message at FatalLevel and then calls os.Exit(1).
	Fatal(msg string, fields ...zap.Field)
	// Log logs a message at the given level.
	Log(level zapcore.Level, msg string, fields ...zap.Field)

	// Debugf logs a formatted message at DebugLevel.
	Debugf(format string, args ...any)
	// Infof logs a formatted message at InfoLevel.
	Infof(format string, args ...any)
	// Warnf logs a formatted message at WarnLevel.
	Warnf(format string, args ...any)
	// Errorf logs a formatted message at ErrorLevel.
	Errorf(format string, args ...any)
	// Fatalf logs a formatted message at FatalLevel and then calls os.Exit(1).
	Fatalf(format string, args ...any)

	// With creates a child logger with additional fields.
	With(fields ...zap.Field) Logger
	// WithError creates a child logger with an error field.
	WithError(err error) Logger
	// Named creates a child logger with the given name appended to the channel.
	Named(name string) Logger

	// Zap returns the underlying *zap.Logger.
	Zap() *zap.Logger
	// Sugar returns the underlying *zap.SugaredLogger.
	Sugar() *zap.SugaredLogger
	// Sync flushes any buffered log entries.
	Sync() error
	// Close syncs and closes every handler. Children share the handlers.
	Close() error
}

// zapLogger wraps *zap.Logger to implement the Logger interface.
type zapLogger struct {
	name  string
	stack *stack
	zl    *zap.Logger
	sl    *zap.SugaredLogger
}

// New creates a logger named name. Records reach handlers in slice order
// after every processor ran. Without options the caller is recorded.
func New(name string, handlers []Handler, processors []Processor, opts ...zap.Option) Logger {
	s := &stack{
		handlers:   append([]Handler(nil), handlers...),
		processors: append([]Processor(nil), processors...),
	}
	if len(opts) == 0 {
		opts = []zap.Option{zap.AddCaller(), zap.AddCallerSkip(1)}
	}
	zl := zap.New(newStackCore(s), opts...).Named(name)
	return newZapLogger(name, s, zl)
}

// newZapLogger wraps an existing *zap.Logger as a Logger.
func newZapLogger(name string, s *stack, zl *zap.Logger) Logger {
	return &zapLogger{
		name:  name,
		stack: s,
		zl:    zl,
		sl:    zl.Sugar(),
	}
}

// FromZap wraps an existing *zap.Logger as a Logger without handlers of its
// own. PushHandler on the result has no effect on zl.
func FromZap(name string, zl *zap.Logger) Logger {
	return newZapLogger(name, &stack{}, zl)
}

func (l *zapLogger) Name() string {
	return l.name
}

func (l *zapLogger) Handlers() []Handler {
	handlers, _ := l.stack.snapshot()
	return append([]Handler(nil), handlers...)
}

func (l *zapLogger) Processors() []Processor {
	_, processors := l.stack.snapshot()
	return append([]Processor(nil), processors...)
}

func (l *zapLogger) PushHandler(h Handler) {
	l.stack.pushHandler(h)
}

func (l *zapLogger) PushProcessor(p Processor) {
	l.stack.pushProcessor(p)
}

func (l *zapLogger) Debug(msg string, fields ...zap.Field) {
	l.zl.Debug(msg, fields...)
}

func (l *zapLogger) Info(msg string, fields ...zap.Field) {
	l.zl.Info(msg, fields...)
}

func (l *zapLogger) Warn(msg string, fields ...zap.Field) {
	l.zl.Warn(msg, fields...)
}

func (l *zapLogger) Error(msg string, fields ...zap.Field) {
	l.zl.Error(msg, fields...)
}

func (l *zapLogger) Fatal(msg string, fields ...zap.Field) {
	l.zl.Fatal(msg, fields...)
}

func (l *zapLogger) Log(level zapcore.Level, msg string, fields ...zap.Field) {
	l.zl.Log(level, msg, fields...)
}

func (l *zapLogger) Debugf(format string, args ...any) {
	l.sl.Debugf(format, args...)
}

func (l *zapLogger) Infof(format string, args ...any) {
	l.sl.Infof(format, args...)
}

func (l *zapLogger) Warnf(format string, args ...any) {
	l.sl.Warnf(format, args...)
}

func (l *zapLogger) Errorf(format string, args ...any) {
	l.sl.Errorf(format, args...)
}

func (l *zapLogger) Fatalf(format string, args ...any) {
	l.sl.Fatalf(format, args...)
}

func (l *zapLogger) With(fields ...zap.Field) Logger {
	return newZapLogger(l.name, l.stack, l.zl.With(fields...))
}

func (l *zapLogger) WithError(err error) Logger {
	return l.With(zap.Error(err))
}

func (l *zapLogger) Named(name string) Logger {
	return newZapLogger(l.name+"."+name, l.stack, l.zl.Named(name))
}

func (l *zapLogger) Zap() *zap.Logger {
	return l.zl
}

func (l *zapLogger) Sugar() *zap.SugaredLogger {
	return l.sl
}

func (l *zapLogger) Sync() error {
	return l.zl.Sync()
}

func (l *zapLogger) Close() error {
	err := l.Sync()
	for _, h := range l.Handlers() {
		err = multierr.Append(err, h.Close())
	}
	return err
}

// Ensure zapLogger implements Logger.
var _ Logger = (*zapLogger)(nil)
