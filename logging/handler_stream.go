package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"go.uber.org/zap/zapcore"
)

// StreamOptions configures the stream handler.
type StreamOptions struct {
	HandlerOptions `mapstructure:",squash"`

	// Stream is a file path, "stdout" or "stderr".
	Stream string `mapstructure:"stream" json:"stream" yaml:"stream" validate:"required"`

	// FilePermission is an octal mode such as "0640". Empty keeps 0644 minus umask.
	FilePermission FileMode `mapstructure:"file_permission" json:"filePermission" yaml:"file_permission"`
}

// StreamHandler writes to stdout, stderr or a file. Files are opened on
// the first record, so building a logger never touches the filesystem.
type StreamHandler struct {
	BaseHandler
	stream string
	perm   os.FileMode
	chmod  bool

	mu   sync.Mutex
	out  io.Writer
	file *os.File
}

func NewStreamHandler(opts StreamOptions) (*StreamHandler, error) {
	if opts.Stream == "" {
		return nil, fmt.Errorf("stream handler: stream is required")
	}

	h := &StreamHandler{stream: opts.Stream, perm: 0o644}
	if opts.FilePermission != "" {
		mode, err := strconv.ParseUint(string(opts.FilePermission), 8, 32)
		if err != nil {
			return nil, fmt.Errorf("stream handler: invalid file_permission %q: %w", opts.FilePermission, err)
		}
		h.perm = os.FileMode(mode)
		h.chmod = true
	}
	if err := h.init(opts.HandlerOptions, NewLineFormatter(DefaultFormatterConfig())); err != nil {
		return nil, err
	}
	return h, nil
}

// Stream returns the configured target.
func (h *StreamHandler) Stream() string {
	return h.stream
}

func (h *StreamHandler) Handle(ent zapcore.Entry, fields []zapcore.Field) error {
	buf, err := h.encode(ent, fields)
	if err != nil {
		return err
	}
	defer buf.Free()

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.out == nil {
		if err := h.open(); err != nil {
			return err
		}
	}
	_, err = h.out.Write(buf.Bytes())
	return err
}

// open must be called with h.mu held.
func (h *StreamHandler) open() error {
	switch h.stream {
	case "stdout", "php://stdout":
		h.out = os.Stdout
		return nil
	case "stderr", "php://stderr":
		h.out = os.Stderr
		return nil
	}

	if dir := filepath.Dir(h.stream); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("stream handler: create %s: %w", dir, err)
		}
	}
	file, err := os.OpenFile(h.stream, os.O_CREATE|os.O_APPEND|os.O_WRONLY, h.perm)
	if err != nil {
		return fmt.Errorf("stream handler: open %s: %w", h.stream, err)
	}
	if h.chmod {
		_ = file.Chmod(h.perm)
	}
	h.file = file
	h.out = file
	return nil
}

func (h *StreamHandler) Sync() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.file == nil {
		return nil
	}
	return h.file.Sync()
}

// Close releases the file. A later record reopens it.
func (h *StreamHandler) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.file == nil {
		return nil
	}
	err := h.file.Close()
	h.file = nil
	h.out = nil
	return err
}

// NewErrorLogHandler writes to stderr, like a process error log.
func NewErrorLogHandler(opts HandlerOptions) (*WriterHandler, error) {
	h, err := NewWriterHandler(nopSyncWriter{os.Stderr}, opts, nil)
	if err != nil {
		return nil, err
	}
	h.kind = "error_log"
	return h, nil
}

// nopSyncWriter hides Sync and Close of the standard streams.
type nopSyncWriter struct {
	w io.Writer
}

func (n nopSyncWriter) Write(p []byte) (int, error) { return n.w.Write(p) }
func (n nopSyncWriter) Sync() error                 { return nil }

func newStreamHandlerFromParams(params map[string]any) (Handler, error) {
	var opts StreamOptions
	if err := decodeParams(params, &opts); err != nil {
		return nil, err
	}
	return NewStreamHandler(opts)
}

func newErrorLogHandlerFromParams(params map[string]any) (Handler, error) {
	var opts HandlerOptions
	if err := decodeParams(params, &opts); err != nil {
		return nil, err
	}
	return NewErrorLogHandler(opts)
}
