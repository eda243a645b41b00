package logging

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/multierr"
	"gopkg.in/natefinch/lumberjack.v2"
)

// RotationOptions are the lumberjack settings shared by file handlers.
type RotationOptions struct {
	// MaxSize is the maximum size in megabytes of the log file before it gets rotated.
	MaxSize int `mapstructure:"max_size" json:"maxSize" yaml:"max_size" default:"100" validate:"gte=0"`

	// MaxBackups is the maximum number of old log files to retain.
	MaxBackups int `mapstructure:"max_backups" json:"maxBackups" yaml:"max_backups" default:"10" validate:"gte=0"`

	// MaxAge is the maximum number of days to retain old log files.
	MaxAge int `mapstructure:"max_age" json:"maxAge" yaml:"max_age" default:"7" validate:"gte=0"`

	// Compress determines if the rotated log files should be compressed using gzip.
	Compress bool `mapstructure:"compress" json:"compress" yaml:"compress"`

	// LocalTime names backups using local time instead of UTC.
	LocalTime bool `mapstructure:"local_time" json:"localTime" yaml:"local_time" default:"true"`
}

func (r RotationOptions) logger(filename string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    r.MaxSize,
		MaxBackups: r.MaxBackups,
		MaxAge:     r.MaxAge,
		Compress:   r.Compress,
		LocalTime:  r.LocalTime,
	}
}

// RotatingFileOptions configures the rotating_file handler.
type RotatingFileOptions struct {
	HandlerOptions  `mapstructure:",squash"`
	RotationOptions `mapstructure:",squash"`
	Filename        string `mapstructure:"filename" json:"filename" yaml:"filename" validate:"required"`
}

// NewRotatingFileHandler writes to a single size-rotated file.
func NewRotatingFileHandler(opts RotatingFileOptions) (*WriterHandler, error) {
	h, err := NewWriterHandler(&lumberjackSyncer{opts.logger(opts.Filename)}, opts.HandlerOptions, nil)
	if err != nil {
		return nil, err
	}
	h.kind = "rotating_file"
	return h, nil
}

// lumberjackSyncer adds the no-op Sync that zapcore.WriteSyncer wants.
// lumberjack writes straight to the file on every call.
type lumberjackSyncer struct {
	*lumberjack.Logger
}

func (l *lumberjackSyncer) Sync() error { return nil }

// DailyOptions configures the daily handler.
type DailyOptions struct {
	HandlerOptions  `mapstructure:",squash"`
	RotationOptions `mapstructure:",squash"`
	Dir             string `mapstructure:"dir" json:"dir" yaml:"dir" validate:"required"`
	File            string `mapstructure:"file" json:"file" yaml:"file" default:"app.log"`
}

// dailyWriter writes to <dir>/<yyyy-mm-dd>/<file>, one lumberjack logger per day.
type dailyWriter struct {
	dir      string
	file     string
	rotation RotationOptions
	now      func() time.Time

	mu      sync.RWMutex
	writers map[string]*lumberjack.Logger
}

func newDailyWriter(opts DailyOptions) *dailyWriter {
	return &dailyWriter{
		dir:      opts.Dir,
		file:     opts.File,
		rotation: opts.RotationOptions,
		now:      time.Now,
		writers:  make(map[string]*lumberjack.Logger),
	}
}

// NewDailyHandler writes into one directory per day.
func NewDailyHandler(opts DailyOptions) (*WriterHandler, error) {
	h, err := NewWriterHandler(newDailyWriter(opts), opts.HandlerOptions, nil)
	if err != nil {
		return nil, err
	}
	h.kind = "daily"
	return h, nil
}

// Write implements io.Writer.
func (w *dailyWriter) Write(p []byte) (n int, err error) {
	date := w.now().Format("2006-01-02")
	return w.getWriter(date).Write(p)
}

// Sync implements zapcore.WriteSyncer.
func (w *dailyWriter) Sync() error {
	return nil
}

// getWriter returns the lumberjack.Logger for the given date, creating it if necessary.
func (w *dailyWriter) getWriter(date string) *lumberjack.Logger {
	// Fast path: check with read lock
	w.mu.RLock()
	if writer, ok := w.writers[date]; ok {
		w.mu.RUnlock()
		return writer
	}
	w.mu.RUnlock()

	w.mu.Lock()
	defer w.mu.Unlock()

	// Double-check after acquiring write lock
	if writer, ok := w.writers[date]; ok {
		return writer
	}

	dirPath := filepath.Join(w.dir, date)
	if err := os.MkdirAll(dirPath, 0o755); err != nil {
		// Fall back to base directory if date directory creation fails
		dirPath = w.dir
		_ = os.MkdirAll(dirPath, 0o755)
	}

	// Previous days are finished; release their files.
	for old, writer := range w.writers {
		_ = writer.Close()
		delete(w.writers, old)
	}

	writer := w.rotation.logger(filepath.Join(dirPath, w.file))
	w.writers[date] = writer
	return writer
}

// Close closes all writers.
func (w *dailyWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var err error
	for date, writer := range w.writers {
		err = multierr.Append(err, writer.Close())
		delete(w.writers, date)
	}
	return err
}

func newRotatingFileHandlerFromParams(params map[string]any) (Handler, error) {
	var opts RotatingFileOptions
	if err := decodeParams(params, &opts); err != nil {
		return nil, err
	}
	return NewRotatingFileHandler(opts)
}

func newDailyHandlerFromParams(params map[string]any) (Handler, error) {
	var opts DailyOptions
	if err := decodeParams(params, &opts); err != nil {
		return nil, err
	}
	return NewDailyHandler(opts)
}

// Ensure dailyWriter implements io.WriteCloser
var _ io.WriteCloser = (*dailyWriter)(nil)
