package logging

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrUnknownKind is returned when a type tag has no registered constructor.
var ErrUnknownKind = errors.New("unknown kind")

// HandlerConstructor builds a handler from its parameter map.
type HandlerConstructor func(params map[string]any) (Handler, error)

// FormatterConstructor builds a formatter from its parameter map.
type FormatterConstructor func(params map[string]any) (Formatter, error)

// ProcessorConstructor builds a processor from its parameter map.
type ProcessorConstructor func(params map[string]any) (Processor, error)

// Catalog maps type tags such as "stream" or "json" to constructors.
// Tags are case-insensitive.
type Catalog struct {
	mu         sync.RWMutex
	handlers   map[string]HandlerConstructor
	formatters map[string]FormatterConstructor
	processors map[string]ProcessorConstructor
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		handlers:   make(map[string]HandlerConstructor),
		formatters: make(map[string]FormatterConstructor),
		processors: make(map[string]ProcessorConstructor),
	}
}

// DefaultCatalog returns a catalog with every built-in kind registered.
func DefaultCatalog() *Catalog {
	c := NewCatalog()

	c.RegisterHandler("stream", newStreamHandlerFromParams)
	c.RegisterHandler("rotating_file", newRotatingFileHandlerFromParams)
	c.RegisterHandler("daily", newDailyHandlerFromParams)
	c.RegisterHandler("error_log", newErrorLogHandlerFromParams)
	c.RegisterHandler("syslog", newSyslogHandlerFromParams)
	c.RegisterHandler("redis", newRedisHandlerFromParams)
	c.RegisterHandler("memory", newMemoryHandlerFromParams)
	c.RegisterHandler("null", newNullHandlerFromParams)

	c.RegisterFormatter("json", newJSONFormatterFromParams)
	c.RegisterFormatter("line", newLineFormatterFromParams)
	c.RegisterFormatter("logstash", newLogstashFormatterFromParams)
	c.RegisterFormatter("color", newColorFormatterFromParams)

	c.RegisterProcessor("uid", newUIDProcessorFromParams)
	c.RegisterProcessor("git", newGitProcessorFromParams)
	c.RegisterProcessor("hostname", newHostnameProcessorFromParams)
	c.RegisterProcessor("process_id", newProcessIDProcessorFromParams)
	c.RegisterProcessor("memory_usage", newMemoryUsageProcessorFromParams)
	c.RegisterProcessor("tags", newTagsProcessorFromParams)

	return c
}

func normalizeKind(kind string) string {
	return strings.ToLower(strings.TrimSpace(kind))
}

// RegisterHandler adds or replaces the constructor for kind.
func (c *Catalog) RegisterHandler(kind string, fn HandlerConstructor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[normalizeKind(kind)] = fn
}

// RegisterFormatter adds or replaces the constructor for kind.
func (c *Catalog) RegisterFormatter(kind string, fn FormatterConstructor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.formatters[normalizeKind(kind)] = fn
}

// RegisterProcessor adds or replaces the constructor for kind.
func (c *Catalog) RegisterProcessor(kind string, fn ProcessorConstructor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.processors[normalizeKind(kind)] = fn
}

func (c *Catalog) NewHandler(kind string, params map[string]any) (Handler, error) {
	c.mu.RLock()
	fn, ok := c.handlers[normalizeKind(kind)]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("handler %q: %w", kind, ErrUnknownKind)
	}
	h, err := fn(params)
	if err != nil {
		return nil, fmt.Errorf("handler %q: %w", kind, err)
	}
	return h, nil
}

func (c *Catalog) NewFormatter(kind string, params map[string]any) (Formatter, error) {
	c.mu.RLock()
	fn, ok := c.formatters[normalizeKind(kind)]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("formatter %q: %w", kind, ErrUnknownKind)
	}
	f, err := fn(params)
	if err != nil {
		return nil, fmt.Errorf("formatter %q: %w", kind, err)
	}
	return f, nil
}

func (c *Catalog) NewProcessor(kind string, params map[string]any) (Processor, error) {
	c.mu.RLock()
	fn, ok := c.processors[normalizeKind(kind)]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("processor %q: %w", kind, ErrUnknownKind)
	}
	p, err := fn(params)
	if err != nil {
		return nil, fmt.Errorf("processor %q: %w", kind, err)
	}
	return p, nil
}

// HandlerKinds returns the registered handler tags, sorted.
func (c *Catalog) HandlerKinds() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return sortedKeys(c.handlers)
}

// FormatterKinds returns the registered formatter tags, sorted.
func (c *Catalog) FormatterKinds() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return sortedKeys(c.formatters)
}

// ProcessorKinds returns the registered processor tags, sorted.
func (c *Catalog) ProcessorKinds() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return sortedKeys(c.processors)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// KindOf returns the catalog tag of a built-in handler, formatter or
// processor, or "custom".
func KindOf(v any) string {
	if k, ok := v.(interface{ Kind() string }); ok {
		return k.Kind()
	}
	switch v.(type) {
	case *StreamHandler:
		return "stream"
	case *RedisHandler:
		return "redis"
	case *MemoryHandler:
		return "memory"
	case *NullHandler:
		return "null"
	case *JSONFormatter:
		return "json"
	case *LineFormatter:
		return "line"
	case *LogstashFormatter:
		return "logstash"
	case *ColorFormatter:
		return "color"
	case *UIDProcessor:
		return "uid"
	case *GitProcessor:
		return "git"
	case *HostnameProcessor:
		return "hostname"
	case *ProcessIDProcessor:
		return "process_id"
	case *MemoryUsageProcessor:
		return "memory_usage"
	case *TagsProcessor:
		return "tags"
	}
	return "custom"
}
