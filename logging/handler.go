package logging

import (
	"io"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

// Handler is a sink for log records. A handler handles a record when the
// record level is at or above Level(). When Bubble() is false a handler
// that handled a record stops it from reaching later handlers.
type Handler interface {
	Level() zapcore.Level
	SetLevel(level zapcore.Level)
	IsHandling(level zapcore.Level) bool
	Bubble() bool
	Formatter() Formatter
	SetFormatter(formatter Formatter)
	Handle(ent zapcore.Entry, fields []zapcore.Field) error
	Sync() error
	Close() error
}

// HandlerOptions are the parameters every handler accepts.
type HandlerOptions struct {
	Level  string `mapstructure:"level" json:"level" yaml:"level" default:"debug" validate:"loglevel"`
	Bubble bool   `mapstructure:"bubble" json:"bubble" yaml:"bubble" default:"true"`
}

// BaseHandler carries the level, bubbling flag and formatter. Concrete
// handlers embed it and implement Handle, Sync and Close.
type BaseHandler struct {
	level     zap.AtomicLevel
	bubble    bool
	mu        sync.RWMutex
	formatter Formatter
}

func (h *BaseHandler) init(opts HandlerOptions, formatter Formatter) error {
	if opts.Level == "" {
		opts.Level = "debug"
	}
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return err
	}
	h.level = zap.NewAtomicLevelAt(level)
	h.bubble = opts.Bubble
	h.formatter = formatter
	return nil
}

func (h *BaseHandler) Level() zapcore.Level                { return h.level.Level() }
func (h *BaseHandler) SetLevel(level zapcore.Level)        { h.level.SetLevel(level) }
func (h *BaseHandler) IsHandling(level zapcore.Level) bool { return h.level.Enabled(level) }
func (h *BaseHandler) Bubble() bool                        { return h.bubble }

// Formatter returns the bound formatter.
func (h *BaseHandler) Formatter() Formatter {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.formatter
}

// SetFormatter replaces the bound formatter. nil is ignored.
func (h *BaseHandler) SetFormatter(formatter Formatter) {
	if formatter == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.formatter = formatter
}

// encode serializes a record with the bound formatter. The caller frees the buffer.
func (h *BaseHandler) encode(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	return h.Formatter().Encoder().EncodeEntry(ent, fields)
}

// WriterHandler writes formatted records to a zapcore.WriteSyncer.
type WriterHandler struct {
	BaseHandler
	kind   string
	out    zapcore.WriteSyncer
	closer io.Closer
}

// NewWriterHandler wraps w. If w is an io.Closer it is closed by Close.
func NewWriterHandler(w io.Writer, opts HandlerOptions, formatter Formatter) (*WriterHandler, error) {
	if formatter == nil {
		formatter = NewLineFormatter(DefaultFormatterConfig())
	}
	h := &WriterHandler{kind: "writer", out: zapcore.AddSync(w)}
	if c, ok := w.(io.Closer); ok {
		h.closer = c
	}
	if err := h.init(opts, formatter); err != nil {
		return nil, err
	}
	return h, nil
}

// Kind names the handler type, such as "daily" or "error_log".
func (h *WriterHandler) Kind() string {
	return h.kind
}

func (h *WriterHandler) Handle(ent zapcore.Entry, fields []zapcore.Field) error {
	buf, err := h.encode(ent, fields)
	if err != nil {
		return err
	}
	defer buf.Free()

	_, err = h.out.Write(buf.Bytes())
	return err
}

func (h *WriterHandler) Sync() error {
	return h.out.Sync()
}

func (h *WriterHandler) Close() error {
	if h.closer == nil {
		return nil
	}
	return h.closer.Close()
}

// NullHandler swallows every record at or above its level.
type NullHandler struct {
	BaseHandler
}

// NullOptions configures the null handler. It never bubbles.
type NullOptions struct {
	Level string `mapstructure:"level" json:"level" yaml:"level" default:"debug" validate:"loglevel"`
}

func NewNullHandler(opts NullOptions) (*NullHandler, error) {
	h := &NullHandler{}
	if err := h.init(HandlerOptions{Level: opts.Level, Bubble: false}, NewLineFormatter(DefaultFormatterConfig())); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *NullHandler) Handle(zapcore.Entry, []zapcore.Field) error { return nil }
func (h *NullHandler) Sync() error                                 { return nil }
func (h *NullHandler) Close() error                                { return nil }

// Record is a formatted record kept by MemoryHandler.
type Record struct {
	Entry     zapcore.Entry
	Fields    []zapcore.Field
	Formatted string
}

// MemoryHandler keeps every record it handles. It backs tests and
// debugging endpoints.
type MemoryHandler struct {
	BaseHandler
	recMu   sync.Mutex
	records []Record
}

func NewMemoryHandler(opts HandlerOptions) (*MemoryHandler, error) {
	h := &MemoryHandler{}
	if err := h.init(opts, NewJSONFormatter(DefaultFormatterConfig())); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *MemoryHandler) Handle(ent zapcore.Entry, fields []zapcore.Field) error {
	buf, err := h.encode(ent, fields)
	if err != nil {
		return err
	}
	defer buf.Free()

	h.recMu.Lock()
	defer h.recMu.Unlock()
	h.records = append(h.records, Record{
		Entry:     ent,
		Fields:    append([]zapcore.Field(nil), fields...),
		Formatted: buf.String(),
	})
	return nil
}

// Records returns a copy of the captured records.
func (h *MemoryHandler) Records() []Record {
	h.recMu.Lock()
	defer h.recMu.Unlock()
	return append([]Record(nil), h.records...)
}

// HasRecord reports whether a record with the given level and message was captured.
func (h *MemoryHandler) HasRecord(level zapcore.Level, message string) bool {
	for _, r := range h.Records() {
		if r.Entry.Level == level && r.Entry.Message == message {
			return true
		}
	}
	return false
}

// Reset drops the captured records.
func (h *MemoryHandler) Reset() {
	h.recMu.Lock()
	defer h.recMu.Unlock()
	h.records = nil
}

func (h *MemoryHandler) Sync() error  { return nil }
func (h *MemoryHandler) Close() error { return nil }

func newNullHandlerFromParams(params map[string]any) (Handler, error) {
	var opts NullOptions
	if err := decodeParams(params, &opts); err != nil {
		return nil, err
	}
	return NewNullHandler(opts)
}

func newMemoryHandlerFromParams(params map[string]any) (Handler, error) {
	var opts HandlerOptions
	if err := decodeParams(params, &opts); err != nil {
		return nil, err
	}
	return NewMemoryHandler(opts)
}
