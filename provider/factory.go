package provider

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	apperrors "github.com/leeforge/logprovider/errors"
	"github.com/leeforge/logprovider/logging"
)

// EmptyLoggersMessage is the error message for an empty logger name or spec set.
const EmptyLoggersMessage = "Empty value is not allowed for loggers"

// CreateFunc is the single logger constructor exposed as "logger.create".
type CreateFunc func(name, level string, handlers []logging.Handler, processors []logging.Processor) (logging.Logger, error)

// FabricateFunc is the declarative constructor exposed as "logger.factory".
type FabricateFunc func(specs map[string]LoggerSpec) error

// Factory builds loggers and stores them in a Collection.
type Factory struct {
	collection *Collection
	catalog    *logging.Catalog
	logFolder  string
	level      string
	strict     bool
	grace      time.Duration
	logger     *zap.Logger
}

// FactoryOption defines configuration options for Factory
type FactoryOption func(*Factory)

// WithCatalog replaces the built-in catalog.
func WithCatalog(catalog *logging.Catalog) FactoryOption {
	return func(f *Factory) {
		if catalog != nil {
			f.catalog = catalog
		}
	}
}

// WithLogFolder sets the directory of default handlers.
func WithLogFolder(dir string) FactoryOption {
	return func(f *Factory) {
		f.logFolder = dir
	}
}

// WithLevel sets the level used when a logger declares none.
func WithLevel(level string) FactoryOption {
	return func(f *Factory) {
		if level != "" {
			f.level = level
		}
	}
}

// WithStrict makes duplicate names fail instead of replacing the stored logger.
func WithStrict(strict bool) FactoryOption {
	return func(f *Factory) {
		f.strict = strict
	}
}

// WithReplacedGrace closes loggers replaced by Fabricate once d has passed,
// leaving callers that still hold them time to finish. Zero keeps them open.
func WithReplacedGrace(d time.Duration) FactoryOption {
	return func(f *Factory) {
		f.grace = d
	}
}

// WithDiagnostics sets the logger that reports what the factory builds.
func WithDiagnostics(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// NewFactory creates a Factory that stores into collection.
func NewFactory(collection *Collection, opts ...FactoryOption) *Factory {
	f := &Factory{
		collection: collection,
		catalog:    logging.DefaultCatalog(),
		logFolder:  "data/logs/",
		level:      "debug",
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Factory) Collection() *Collection   { return f.collection }
func (f *Factory) Catalog() *logging.Catalog { return f.catalog }
func (f *Factory) LogFolder() string         { return f.logFolder }
func (f *Factory) Level() string             { return f.level }

// Create builds a logger from ready handlers and processors and stores it
// under name. Without handlers it writes to <log folder>/<name>.log.
func (f *Factory) Create(name, level string, handlers []logging.Handler, processors []logging.Processor) (logging.Logger, error) {
	l, err := f.assemble(name, level, handlers, processors)
	if err != nil {
		return nil, err
	}

	if f.strict {
		if err := f.collection.Add(l.Name(), l); err != nil {
			return nil, err
		}
	} else if f.collection.Set(l.Name(), l) != nil {
		f.logger.Info("logger replaced", zap.String("name", l.Name()))
	}

	f.logger.Debug("logger created",
		zap.String("name", l.Name()),
		zap.Int("handlers", len(l.Handlers())),
		zap.Int("processors", len(l.Processors())),
	)
	return l, nil
}

// CreateFunc returns Create as a service value.
func (f *Factory) CreateFunc() CreateFunc {
	return f.Create
}

// FabricateFunc returns Fabricate as a service value.
func (f *Factory) FabricateFunc() FabricateFunc {
	return f.Fabricate
}

// Fabricate builds one logger per spec, in name order, and stores them
// all. If any logger fails to build, the built ones are closed and the
// collection is left untouched.
func (f *Factory) Fabricate(specs map[string]LoggerSpec) error {
	if len(specs) == 0 {
		return apperrors.NewInvalidArgument(EmptyLoggersMessage)
	}

	names := make([]string, 0, len(specs))
	for name := range specs {
		names = append(names, name)
	}
	sort.Strings(names)

	built := make([]namedLogger, 0, len(names))
	seen := make(map[string]string, len(names))
	for _, name := range names {
		l, err := f.build(name, specs[name])
		if err == nil {
			if key, dup := seen[l.Name()]; dup {
				_ = l.Close()
				err = f.duplicateKey(l.Name(), key, name)
			}
		}
		if err != nil {
			f.discard(built)
			f.logger.Error("fabricate failed", zap.String("name", name), zap.Error(err))
			return err
		}
		seen[l.Name()] = name
		built = append(built, namedLogger{name: l.Name(), logger: l})
	}

	replaced, err := f.collection.commit(built, f.strict)
	if err != nil {
		f.discard(built)
		return err
	}
	for _, r := range replaced {
		f.retire(r)
	}
	f.logger.Debug("loggers fabricated", zap.Strings("names", names))
	return nil
}

// duplicateKey reports two spec keys that resolve to the same logger name.
func (f *Factory) duplicateKey(name, first, second string) error {
	msg := fmt.Sprintf("logger keys %q and %q both resolve to %q", first, second, name)
	if f.strict {
		return apperrors.NewConflict("logger", name).WithMessage(msg)
	}
	return apperrors.NewInvalidArgument(msg)
}

// retire schedules the close of a logger replaced by Fabricate.
func (f *Factory) retire(r namedLogger) {
	f.logger.Info("logger replaced", zap.String("name", r.name), zap.Duration("close_after", f.grace))
	if f.grace <= 0 {
		return
	}
	time.AfterFunc(f.grace, func() {
		if err := r.logger.Close(); err != nil {
			f.logger.Warn("closing replaced logger", zap.String("name", r.name), zap.Error(err))
		}
	})
}

func (f *Factory) discard(built []namedLogger) {
	var err error
	for _, b := range built {
		err = multierr.Append(err, b.logger.Close())
	}
	if err != nil {
		f.logger.Warn("closing discarded loggers", zap.Error(err))
	}
}

// build turns a spec into a logger without storing it.
func (f *Factory) build(name string, spec LoggerSpec) (logging.Logger, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperrors.NewInvalidArgument(EmptyLoggersMessage)
	}
	level, err := f.resolveLevel(spec.Level)
	if err != nil {
		return nil, fmt.Errorf("logger %q: %w", name, err)
	}

	handlers := make([]logging.Handler, 0, len(spec.Handlers))
	closeHandlers := func() {
		for _, h := range handlers {
			_ = h.Close()
		}
	}
	for i, hs := range spec.Handlers {
		h, err := f.buildHandler(hs, level)
		if err != nil {
			closeHandlers()
			return nil, fmt.Errorf("logger %q: handler %d: %w", name, i, err)
		}
		handlers = append(handlers, h)
	}

	processors := make([]logging.Processor, 0, len(spec.Processors))
	for i, ps := range spec.Processors {
		p, err := f.catalog.NewProcessor(ps.Type, ps.Params)
		if err != nil {
			closeHandlers()
			return nil, fmt.Errorf("logger %q: processor %d: %w", name, i, err)
		}
		processors = append(processors, p)
	}

	l, err := f.assemble(name, level, handlers, processors)
	if err != nil {
		closeHandlers()
		return nil, err
	}
	return l, nil
}

func (f *Factory) buildHandler(spec HandlerSpec, level string) (logging.Handler, error) {
	h, err := f.catalog.NewHandler(spec.Type, spec.Params)
	if err != nil {
		return nil, err
	}
	if !hasParam(spec.Params, "level") {
		h.SetLevel(logging.MustParseLevel(level))
	}
	if spec.Formatter != nil {
		formatter, err := f.catalog.NewFormatter(spec.Formatter.Type, spec.Formatter.Params)
		if err != nil {
			_ = h.Close()
			return nil, err
		}
		h.SetFormatter(formatter)
	}
	return h, nil
}

// hasParam matches keys the way mapstructure does, ignoring case.
func hasParam(params map[string]any, key string) bool {
	for k := range params {
		if strings.EqualFold(k, key) {
			return true
		}
	}
	return false
}

// assemble validates name and level and builds the logger.
func (f *Factory) assemble(name, level string, handlers []logging.Handler, processors []logging.Processor) (logging.Logger, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewInvalidArgument(EmptyLoggersMessage)
	}

	level, err := f.resolveLevel(level)
	if err != nil {
		return nil, fmt.Errorf("logger %q: %w", name, err)
	}

	if len(handlers) == 0 {
		h, err := f.defaultHandler(name, level)
		if err != nil {
			return nil, fmt.Errorf("logger %q: %w", name, err)
		}
		handlers = []logging.Handler{h}
	}

	return logging.New(name, handlers, processors), nil
}

func (f *Factory) defaultHandler(name, level string) (logging.Handler, error) {
	return logging.NewStreamHandler(logging.StreamOptions{
		HandlerOptions: logging.HandlerOptions{Level: level, Bubble: true},
		Stream:         filepath.Join(f.logFolder, name+".log"),
	})
}

// resolveLevel returns the canonical lower-case level name.
func (f *Factory) resolveLevel(level string) (string, error) {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		level = strings.ToLower(f.level)
	}
	if !logging.IsLevel(level) {
		return "", apperrors.Wrap(logging.ErrUnknownLevel, apperrors.ErrorTypeInvalid, fmt.Sprintf("unknown log level %q", level))
	}
	return level, nil
}
