//go:build !windows && !plan9

package logging

import (
	"fmt"
	"log/syslog"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap/zapcore"
)

// SyslogOptions configures the syslog handler. An empty Network dials the
// local syslog daemon.
type SyslogOptions struct {
	HandlerOptions `mapstructure:",squash"`
	Ident          string `mapstructure:"ident" json:"ident" yaml:"ident" validate:"required"`
	Facility       string `mapstructure:"facility" json:"facility" yaml:"facility" default:"user"`
	Network        string `mapstructure:"network" json:"network" yaml:"network" validate:"omitempty,oneof=tcp udp unix unixgram"`
	Address        string `mapstructure:"address" json:"address" yaml:"address" validate:"required_with=Network"`
}

var facilities = map[string]syslog.Priority{
	"kern":     syslog.LOG_KERN,
	"user":     syslog.LOG_USER,
	"mail":     syslog.LOG_MAIL,
	"daemon":   syslog.LOG_DAEMON,
	"auth":     syslog.LOG_AUTH,
	"syslog":   syslog.LOG_SYSLOG,
	"lpr":      syslog.LOG_LPR,
	"news":     syslog.LOG_NEWS,
	"uucp":     syslog.LOG_UUCP,
	"cron":     syslog.LOG_CRON,
	"authpriv": syslog.LOG_AUTHPRIV,
	"ftp":      syslog.LOG_FTP,
	"local0":   syslog.LOG_LOCAL0,
	"local1":   syslog.LOG_LOCAL1,
	"local2":   syslog.LOG_LOCAL2,
	"local3":   syslog.LOG_LOCAL3,
	"local4":   syslog.LOG_LOCAL4,
	"local5":   syslog.LOG_LOCAL5,
	"local6":   syslog.LOG_LOCAL6,
	"local7":   syslog.LOG_LOCAL7,
}

// parseFacility accepts a facility name or its numeric code.
func parseFacility(s string) (syslog.Priority, error) {
	key := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "log_")
	if p, ok := facilities[key]; ok {
		return p, nil
	}
	if n, err := strconv.Atoi(key); err == nil && n >= 0 && n <= 23 {
		return syslog.Priority(n << 3), nil
	}
	return 0, fmt.Errorf("syslog handler: unknown facility %q", s)
}

// SyslogHandler sends records to a syslog daemon. The connection is
// dialled on the first record.
type SyslogHandler struct {
	BaseHandler
	opts     SyslogOptions
	facility syslog.Priority

	mu     sync.Mutex
	writer *syslog.Writer
}

func NewSyslogHandler(opts SyslogOptions) (*SyslogHandler, error) {
	facility, err := parseFacility(opts.Facility)
	if err != nil {
		return nil, err
	}
	h := &SyslogHandler{opts: opts, facility: facility}
	if err := h.init(opts.HandlerOptions, NewLineFormatter(DefaultFormatterConfig())); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *SyslogHandler) Handle(ent zapcore.Entry, fields []zapcore.Field) error {
	buf, err := h.encode(ent, fields)
	if err != nil {
		return err
	}
	defer buf.Free()

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.writer == nil {
		w, err := syslog.Dial(h.opts.Network, h.opts.Address, h.facility|syslog.LOG_DEBUG, h.opts.Ident)
		if err != nil {
			return fmt.Errorf("syslog handler: dial: %w", err)
		}
		h.writer = w
	}

	msg := strings.TrimRight(buf.String(), "\n")
	switch ent.Level {
	case zapcore.DebugLevel:
		return h.writer.Debug(msg)
	case zapcore.InfoLevel:
		return h.writer.Info(msg)
	case zapcore.WarnLevel:
		return h.writer.Warning(msg)
	case zapcore.ErrorLevel:
		return h.writer.Err(msg)
	case zapcore.DPanicLevel:
		return h.writer.Crit(msg)
	case zapcore.PanicLevel:
		return h.writer.Alert(msg)
	default:
		return h.writer.Emerg(msg)
	}
}

func (h *SyslogHandler) Kind() string { return "syslog" }
func (h *SyslogHandler) Sync() error  { return nil }

func (h *SyslogHandler) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.writer == nil {
		return nil
	}
	err := h.writer.Close()
	h.writer = nil
	return err
}

func newSyslogHandlerFromParams(params map[string]any) (Handler, error) {
	var opts SyslogOptions
	if err := decodeParams(params, &opts); err != nil {
		return nil, err
	}
	return NewSyslogHandler(opts)
}
