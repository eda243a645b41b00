package logging

import (
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"
)

// stack holds the handlers and processors of one logger. Child loggers
// created with With or Named share it.
type stack struct {
	mu         sync.RWMutex
	handlers   []Handler
	processors []Processor
}

func (s *stack) snapshot() ([]Handler, []Processor) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.handlers, s.processors
}

func (s *stack) pushHandler(h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers = append(s.handlers[:len(s.handlers):len(s.handlers)], h)
}

func (s *stack) pushProcessor(p Processor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processors = append(s.processors[:len(s.processors):len(s.processors)], p)
}

// stackCore is a zapcore.Core that runs a record through the processors and
// then offers it to each handler in order. A handler that handled the record
// and does not bubble stops the walk.
type stackCore struct {
	stack  *stack
	fields []zapcore.Field
}

func newStackCore(s *stack) *stackCore {
	return &stackCore{stack: s}
}

// Enabled implements zapcore.LevelEnabler.
func (c *stackCore) Enabled(level zapcore.Level) bool {
	handlers, _ := c.stack.snapshot()
	for _, h := range handlers {
		if h.IsHandling(level) {
			return true
		}
	}
	return false
}

// With implements zapcore.Core.
func (c *stackCore) With(fields []zapcore.Field) zapcore.Core {
	if len(fields) == 0 {
		return c
	}
	merged := make([]zapcore.Field, 0, len(c.fields)+len(fields))
	merged = append(merged, c.fields...)
	merged = append(merged, fields...)
	return &stackCore{stack: c.stack, fields: merged}
}

// Check implements zapcore.Core.
func (c *stackCore) Check(entry zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return ce.AddCore(entry, c)
	}
	return ce
}

// Write implements zapcore.Core.
func (c *stackCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	handlers, processors := c.stack.snapshot()

	all := make([]zapcore.Field, 0, len(c.fields)+len(fields)+len(processors))
	all = append(all, c.fields...)
	all = append(all, fields...)
	for _, p := range processors {
		all = p.Process(entry, all)
	}

	var err error
	for _, h := range handlers {
		if !h.IsHandling(entry.Level) {
			continue
		}
		err = multierr.Append(err, h.Handle(entry, all))
		if !h.Bubble() {
			break
		}
	}
	return err
}

// Sync implements zapcore.Core.
func (c *stackCore) Sync() error {
	handlers, _ := c.stack.snapshot()
	var err error
	for _, h := range handlers {
		err = multierr.Append(err, h.Sync())
	}
	return err
}
