package provider

import (
	"iter"
	"sync"

	"go.uber.org/multierr"

	apperrors "github.com/leeforge/logprovider/errors"
	"github.com/leeforge/logprovider/logging"
)

// Collection stores loggers by name and remembers insertion order.
// It is safe for concurrent use.
type Collection struct {
	mu      sync.RWMutex
	loggers map[string]logging.Logger
	order   []string
}

func NewCollection() *Collection {
	return &Collection{loggers: make(map[string]logging.Logger)}
}

// Set stores l under name and returns the logger it replaced, if any.
// A replaced logger keeps its position and is not closed.
func (c *Collection) Set(name string, l logging.Logger) logging.Logger {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.set(name, l)
}

// set must be called with c.mu held.
func (c *Collection) set(name string, l logging.Logger) logging.Logger {
	previous, ok := c.loggers[name]
	if !ok {
		c.order = append(c.order, name)
	}
	c.loggers[name] = l
	return previous
}

// Add stores l under name. It fails with a conflict error if name is taken.
func (c *Collection) Add(name string, l logging.Logger) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.loggers[name]; ok {
		return apperrors.NewConflict("logger", name)
	}
	c.set(name, l)
	return nil
}

type namedLogger struct {
	name   string
	logger logging.Logger
}

// commit stores every entry under one lock and returns the loggers it
// replaced. With strict set nothing is stored when any name is already taken.
func (c *Collection) commit(entries []namedLogger, strict bool) (replaced []namedLogger, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if strict {
		for _, e := range entries {
			if _, ok := c.loggers[e.name]; ok {
				return nil, apperrors.NewConflict("logger", e.name)
			}
		}
	}
	for _, e := range entries {
		if previous := c.set(e.name, e.logger); previous != nil {
			replaced = append(replaced, namedLogger{name: e.name, logger: previous})
		}
	}
	return replaced, nil
}

func (c *Collection) Has(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.loggers[name]
	return ok
}

// Get returns the logger stored under name or a not-found error.
func (c *Collection) Get(name string) (logging.Logger, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	l, ok := c.loggers[name]
	if !ok {
		return nil, apperrors.NewNotFound("logger", name)
	}
	return l, nil
}

// MustGet is Get for names registered at bootstrap. It panics when name is absent.
func (c *Collection) MustGet(name string) logging.Logger {
	l, err := c.Get(name)
	if err != nil {
		panic(err)
	}
	return l
}

func (c *Collection) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.loggers)
}

// Names returns the stored names in insertion order.
func (c *Collection) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.order...)
}

// All iterates over a snapshot of the collection in insertion order.
func (c *Collection) All() iter.Seq2[string, logging.Logger] {
	c.mu.RLock()
	entries := make([]namedLogger, 0, len(c.order))
	for _, name := range c.order {
		entries = append(entries, namedLogger{name: name, logger: c.loggers[name]})
	}
	c.mu.RUnlock()

	return func(yield func(string, logging.Logger) bool) {
		for _, e := range entries {
			if !yield(e.name, e.logger) {
				return
			}
		}
	}
}

// Close syncs and closes every stored logger. The loggers stay registered.
func (c *Collection) Close() error {
	var err error
	for name, l := range c.All() {
		if closeErr := l.Close(); closeErr != nil {
			err = multierr.Append(err, apperrors.Wrap(closeErr, apperrors.ErrorTypeInternal, "close logger "+name))
		}
	}
	return err
}
