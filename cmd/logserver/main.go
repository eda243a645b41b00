// Command logserver boots the logger provider from a YAML config directory,
// serves the logger listing and rebuilds the configured loggers whenever
// the config file changes.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/leeforge/logprovider/config"
	"github.com/leeforge/logprovider/plugin"
	"github.com/leeforge/logprovider/plugin/examples/audit"
	"github.com/leeforge/logprovider/provider"
)

func main() {
	configPath := flag.String("config", "config", "directory holding config.yaml")
	addr := flag.String("addr", ":8080", "listen address")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := run(*configPath, *addr, logger); err != nil {
		logger.Fatal("logserver stopped", zap.Error(err))
	}
}

func run(configPath, addr string, logger *zap.Logger) error {
	loggers := provider.NewLoggerProvider(nil)

	opts := config.DefaultConfigOptions()
	opts.BasePath = configPath
	opts.WatchAble = true

	var cfg *config.Config
	opts.OnChange = func(e fsnotify.Event) {
		reload(cfg, loggers, logger, e)
	}
	cfg, err := config.NewConfig(opts)
	if err != nil {
		return err
	}

	router := chi.NewRouter()
	app := plugin.NewAppContext(router, logger, cfg.PluginConfig("logger"))
	plugins := []plugin.Plugin{loggers, &audit.AuditPlugin{}}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := plugin.EnableAll(ctx, app, plugins...); err != nil {
		return err
	}
	defer func() {
		if err := plugin.DisableAll(context.Background(), app, plugins...); err != nil {
			logger.Error("disable plugins", zap.Error(err))
		}
	}()

	// Binding starts the config watcher.
	var server struct {
		ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" default:"5s"`
	}
	if err := cfg.BindWithDefaults(&server); err != nil {
		return err
	}

	srv := &http.Server{Addr: addr, Handler: router, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// reload rebuilds the loggers declared in the "logger.loggers" section.
func reload(cfg *config.Config, loggers *provider.LoggerProvider, logger *zap.Logger, e fsnotify.Event) {
	if cfg == nil || loggers.Factory() == nil {
		return
	}
	var opts provider.Options
	if err := cfg.PluginConfig("logger").Bind(&opts); err != nil {
		logger.Error("bind logger options", zap.String("file", e.Name), zap.Error(err))
		return
	}
	if len(opts.Loggers) == 0 {
		return
	}
	if err := loggers.Factory().Fabricate(opts.Loggers); err != nil {
		logger.Error("reload loggers", zap.String("file", e.Name), zap.Error(err))
		return
	}
	logger.Info("loggers reloaded", zap.String("file", e.Name), zap.Int("count", len(opts.Loggers)))
}
