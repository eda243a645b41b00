package plugin

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AppContext is the typed dependency injection context passed to all plugin lifecycle methods.
type AppContext struct {
	Router   chi.Router
	Logger   *zap.Logger
	Services *ServiceRegistry
	Config   ConfigProvider
}

// NewAppContext builds an AppContext, filling nil collaborators with
// no-op defaults. router may be nil when the host serves no HTTP.
func NewAppContext(router chi.Router, logger *zap.Logger, config ConfigProvider) *AppContext {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config == nil {
		config = EmptyConfig()
	}
	return &AppContext{
		Router:   router,
		Logger:   logger,
		Services: NewServiceRegistry(),
		Config:   config,
	}
}

// logger returns Logger, or a no-op logger when the context was built as
// a literal without one.
func (a *AppContext) logger() *zap.Logger {
	if a == nil || a.Logger == nil {
		return zap.NewNop()
	}
	return a.Logger
}
