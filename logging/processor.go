package logging

import (
	"errors"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var errUIDLength = errors.New("uid processor: length must be between 1 and 32")

// Processor enriches a record before it reaches the handlers. It returns
// the fields to encode, usually fields plus its own additions.
type Processor interface {
	Process(ent zapcore.Entry, fields []zapcore.Field) []zapcore.Field
}

// ProcessorFunc adapts a plain function to Processor.
type ProcessorFunc func(ent zapcore.Entry, fields []zapcore.Field) []zapcore.Field

func (f ProcessorFunc) Process(ent zapcore.Entry, fields []zapcore.Field) []zapcore.Field {
	return f(ent, fields)
}

// ProcessorOptions gates a processor to records at or above Level.
type ProcessorOptions struct {
	Level string `mapstructure:"level" json:"level" yaml:"level" default:"debug" validate:"loglevel"`
}

type levelGate struct {
	min zapcore.Level
}

func newLevelGate(opts ProcessorOptions) (levelGate, error) {
	if opts.Level == "" {
		return levelGate{min: zapcore.DebugLevel}, nil
	}
	lvl, err := ParseLevel(opts.Level)
	if err != nil {
		return levelGate{}, err
	}
	return levelGate{min: lvl}, nil
}

func (g levelGate) skip(ent zapcore.Entry) bool {
	return ent.Level < g.min
}

// UIDOptions configures the uid processor.
type UIDOptions struct {
	ProcessorOptions `mapstructure:",squash"`
	Length           int `mapstructure:"length" json:"length" yaml:"length" default:"7" validate:"gte=1,lte=32"`
}

// UIDProcessor stamps every record with the same random id until Reset.
type UIDProcessor struct {
	gate   levelGate
	length int

	mu  sync.RWMutex
	uid string
}

func NewUIDProcessor(opts UIDOptions) (*UIDProcessor, error) {
	if opts.Length == 0 {
		opts.Length = 7
	}
	if opts.Length < 1 || opts.Length > 32 {
		return nil, errUIDLength
	}
	gate, err := newLevelGate(opts.ProcessorOptions)
	if err != nil {
		return nil, err
	}
	p := &UIDProcessor{gate: gate, length: opts.Length}
	p.uid = p.generate()
	return p, nil
}

func (p *UIDProcessor) generate() string {
	id := uuid.New()
	return strings.ReplaceAll(id.String(), "-", "")[:p.length]
}

// UID returns the current id.
func (p *UIDProcessor) UID() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.uid
}

// Reset draws a new id, for example at the start of a job.
func (p *UIDProcessor) Reset() {
	uid := p.generate()
	p.mu.Lock()
	p.uid = uid
	p.mu.Unlock()
}

func (p *UIDProcessor) Process(ent zapcore.Entry, fields []zapcore.Field) []zapcore.Field {
	if p.gate.skip(ent) {
		return fields
	}
	return append(fields, zap.String("uid", p.UID()))
}

// HostnameProcessor adds the machine hostname.
type HostnameProcessor struct {
	gate     levelGate
	hostname string
}

func NewHostnameProcessor(opts ProcessorOptions) (*HostnameProcessor, error) {
	gate, err := newLevelGate(opts)
	if err != nil {
		return nil, err
	}
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	return &HostnameProcessor{gate: gate, hostname: hostname}, nil
}

func (p *HostnameProcessor) Process(ent zapcore.Entry, fields []zapcore.Field) []zapcore.Field {
	if p.gate.skip(ent) {
		return fields
	}
	return append(fields, zap.String("hostname", p.hostname))
}

// ProcessIDProcessor adds the current process id.
type ProcessIDProcessor struct {
	gate levelGate
	pid  int
}

func NewProcessIDProcessor(opts ProcessorOptions) (*ProcessIDProcessor, error) {
	gate, err := newLevelGate(opts)
	if err != nil {
		return nil, err
	}
	return &ProcessIDProcessor{gate: gate, pid: os.Getpid()}, nil
}

func (p *ProcessIDProcessor) Process(ent zapcore.Entry, fields []zapcore.Field) []zapcore.Field {
	if p.gate.skip(ent) {
		return fields
	}
	return append(fields, zap.Int("process_id", p.pid))
}

// MemoryUsageOptions configures the memory_usage processor.
type MemoryUsageOptions struct {
	ProcessorOptions `mapstructure:",squash"`
	Peak             bool `mapstructure:"peak" json:"peak" yaml:"peak"`
}

// MemoryUsageProcessor adds heap usage in bytes. With Peak it also adds
// the memory obtained from the OS.
type MemoryUsageProcessor struct {
	gate levelGate
	peak bool
}

func NewMemoryUsageProcessor(opts MemoryUsageOptions) (*MemoryUsageProcessor, error) {
	gate, err := newLevelGate(opts.ProcessorOptions)
	if err != nil {
		return nil, err
	}
	return &MemoryUsageProcessor{gate: gate, peak: opts.Peak}, nil
}

func (p *MemoryUsageProcessor) Process(ent zapcore.Entry, fields []zapcore.Field) []zapcore.Field {
	if p.gate.skip(ent) {
		return fields
	}
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	fields = append(fields, zap.Uint64("memory_usage", stats.HeapAlloc))
	if p.peak {
		fields = append(fields, zap.Uint64("memory_peak_usage", stats.Sys))
	}
	return fields
}

// TagsOptions configures the tags processor.
type TagsOptions struct {
	ProcessorOptions `mapstructure:",squash"`
	Tags             map[string]string `mapstructure:"tags" json:"tags" yaml:"tags"`
}

// TagsProcessor adds a fixed set of tags under the "tags" key.
type TagsProcessor struct {
	gate levelGate
	mu   sync.RWMutex
	tags map[string]string
}

func NewTagsProcessor(opts TagsOptions) (*TagsProcessor, error) {
	gate, err := newLevelGate(opts.ProcessorOptions)
	if err != nil {
		return nil, err
	}
	p := &TagsProcessor{gate: gate, tags: make(map[string]string, len(opts.Tags))}
	p.AddTags(opts.Tags)
	return p, nil
}

// AddTags merges tags into the current set.
func (p *TagsProcessor) AddTags(tags map[string]string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for k, v := range tags {
		p.tags[k] = v
	}
}

// SetTags replaces the current set.
func (p *TagsProcessor) SetTags(tags map[string]string) {
	p.mu.Lock()
	p.tags = make(map[string]string, len(tags))
	p.mu.Unlock()
	p.AddTags(tags)
}

func (p *TagsProcessor) Process(ent zapcore.Entry, fields []zapcore.Field) []zapcore.Field {
	if p.gate.skip(ent) {
		return fields
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if len(p.tags) == 0 {
		return fields
	}
	return append(fields, zap.Object("tags", stringMap(p.tags)))
}

type stringMap map[string]string

func (m stringMap) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	for k, v := range m {
		enc.AddString(k, v)
	}
	return nil
}

func newUIDProcessorFromParams(params map[string]any) (Processor, error) {
	var opts UIDOptions
	if err := decodeParams(params, &opts); err != nil {
		return nil, err
	}
	return NewUIDProcessor(opts)
}

func newHostnameProcessorFromParams(params map[string]any) (Processor, error) {
	var opts ProcessorOptions
	if err := decodeParams(params, &opts); err != nil {
		return nil, err
	}
	return NewHostnameProcessor(opts)
}

func newProcessIDProcessorFromParams(params map[string]any) (Processor, error) {
	var opts ProcessorOptions
	if err := decodeParams(params, &opts); err != nil {
		return nil, err
	}
	return NewProcessIDProcessor(opts)
}

func newMemoryUsageProcessorFromParams(params map[string]any) (Processor, error) {
	var opts MemoryUsageOptions
	if err := decodeParams(params, &opts); err != nil {
		return nil, err
	}
	return NewMemoryUsageProcessor(opts)
}

func newTagsProcessorFromParams(params map[string]any) (Processor, error) {
	var opts TagsOptions
	if err := decodeParams(params, &opts); err != nil {
		return nil, err
	}
	return NewTagsProcessor(opts)
}
