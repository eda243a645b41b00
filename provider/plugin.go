package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apperrors "github.com/leeforge/logprovider/errors"
	"github.com/leeforge/logprovider/json"
	"github.com/leeforge/logprovider/logging"
	"github.com/leeforge/logprovider/plugin"
)

// Service keys registered by LoggerProvider.
const (
	ServiceManager   = "logger.manager"
	ServiceCreate    = "logger.create"
	ServiceFactory   = "logger.factory"
	ServiceLogFolder = "logger.log_folder"
	ServiceLevel     = "logger.level"
)

// LoggerProvider registers the logger collection and its constructors
// into the application's service registry.
type LoggerProvider struct {
	catalog    *logging.Catalog
	options    Options
	collection *Collection
	factory    *Factory
	logger     *zap.Logger
}

// NewLoggerProvider returns a provider using catalog, or the built-in
// catalog when catalog is nil.
func NewLoggerProvider(catalog *logging.Catalog) *LoggerProvider {
	if catalog == nil {
		catalog = logging.DefaultCatalog()
	}
	return &LoggerProvider{catalog: catalog, logger: zap.NewNop()}
}

func (p *LoggerProvider) Name() string    { return "logger" }
func (p *LoggerProvider) Version() string { return "1.0.0" }

// Options returns the options bound by Enable.
func (p *LoggerProvider) Options() Options { return p.options }

// Collection returns the collection created by Enable.
func (p *LoggerProvider) Collection() *Collection { return p.collection }

// Factory returns the factory created by Enable.
func (p *LoggerProvider) Factory() *Factory { return p.factory }

func (p *LoggerProvider) Enable(ctx context.Context, app *plugin.AppContext) error {
	if app == nil || app.Config == nil || app.Services == nil {
		return fmt.Errorf("logger provider needs an app context with config and services")
	}
	logger := app.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var opts Options
	if err := app.Config.Bind(&opts); err != nil {
		return fmt.Errorf("bind logger options: %w", err)
	}
	if !logging.IsLevel(opts.Level) {
		return apperrors.NewInvalidArgument(fmt.Sprintf("unknown log level %q", opts.Level)).
			WithDetail("option", "level")
	}

	var grace time.Duration
	if opts.CloseReplacedAfter != "" {
		d, err := time.ParseDuration(opts.CloseReplacedAfter)
		if err != nil || d < 0 {
			return apperrors.NewInvalidArgument(fmt.Sprintf("invalid duration %q", opts.CloseReplacedAfter)).
				WithDetail("option", "close_replaced_after")
		}
		grace = d
	}

	p.options = opts
	p.logger = logger.Named("logger")
	p.collection = NewCollection()
	p.factory = NewFactory(p.collection,
		WithCatalog(p.catalog),
		WithLogFolder(opts.LogFolder),
		WithLevel(opts.Level),
		WithStrict(opts.Strict),
		WithReplacedGrace(grace),
		WithDiagnostics(p.logger),
	)

	services := map[string]any{
		ServiceManager:   p.collection,
		ServiceCreate:    p.factory.CreateFunc(),
		ServiceFactory:   p.factory.FabricateFunc(),
		ServiceLogFolder: opts.LogFolder,
		ServiceLevel:     opts.Level,
	}
	for _, key := range []string{ServiceManager, ServiceCreate, ServiceFactory, ServiceLogFolder, ServiceLevel} {
		if err := app.Services.Register(key, services[key]); err != nil {
			return err
		}
	}

	if len(opts.Loggers) > 0 {
		if err := p.factory.Fabricate(opts.Loggers); err != nil {
			return err
		}
	}

	p.logger.Info("logger provider enabled",
		zap.String("log_folder", opts.LogFolder),
		zap.String("level", opts.Level),
		zap.Bool("strict", opts.Strict),
		zap.Int("loggers", p.collection.Count()),
	)
	return nil
}

// Disable syncs and closes every registered logger.
func (p *LoggerProvider) Disable(ctx context.Context, app *plugin.AppContext) error {
	if p.collection == nil {
		return nil
	}
	return p.collection.Close()
}

func (p *LoggerProvider) HealthCheck(ctx context.Context) error {
	if p.collection == nil {
		return fmt.Errorf("logger provider is not enabled")
	}
	return nil
}

// RegisterMiddlewares installs request logging and panic recovery bound to
// the logger named by the request_logger option. The logger is looked up on
// every request so that a reload replacing it takes effect.
func (p *LoggerProvider) RegisterMiddlewares(router chi.Router) {
	name := p.options.RequestLogger
	if name == "" || p.collection == nil {
		return
	}
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			l, err := p.collection.Get(name)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			logging.HTTPMiddleware(l)(logging.RecoveryMiddleware(l)(next)).ServeHTTP(w, r)
		})
	})
}

// RegisterRoutes serves the read-only logger listing.
func (p *LoggerProvider) RegisterRoutes(router chi.Router) {
	prefix := "/" + strings.Trim(p.options.RoutePrefix, "/")
	router.Route(prefix, func(r chi.Router) {
		r.Get("/", p.listLoggers)
		r.Get("/{name}", p.showLogger)
	})
}

func (p *LoggerProvider) listLoggers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Describe(p.collection))
}

func (p *LoggerProvider) showLogger(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	l, err := p.collection.Get(name)
	if err != nil {
		writeJSON(w, http.StatusNotFound, apperrors.FromError(err))
		return
	}
	writeJSON(w, http.StatusOK, DescribeLogger(l))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

var (
	_ plugin.Plugin             = (*LoggerProvider)(nil)
	_ plugin.Disableable        = (*LoggerProvider)(nil)
	_ plugin.RouteProvider      = (*LoggerProvider)(nil)
	_ plugin.MiddlewareProvider = (*LoggerProvider)(nil)
	_ plugin.HealthReporter     = (*LoggerProvider)(nil)
)
