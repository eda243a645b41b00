package plugin

import (
	"context"

	"github.com/go-chi/chi/v5"
)

// Plugin is the minimal interface every plugin must implement.
type Plugin interface {
	Name() string
	Version() string
	Enable(ctx context.Context, app *AppContext) error
}

// --- Optional Capability Interfaces ---
// Detected via type assertion: if p, ok := plugin.(RouteProvider); ok { ... }

// Disableable -- cleanup on shutdown (flush buffers, close files).
type Disableable interface {
	Disable(ctx context.Context, app *AppContext) error
}

// RouteProvider -- register HTTP routes.
type RouteProvider interface {
	RegisterRoutes(router chi.Router)
}

// MiddlewareProvider -- register HTTP middleware.
type MiddlewareProvider interface {
	RegisterMiddlewares(router chi.Router)
}

// HealthReporter -- provide custom health checks.
type HealthReporter interface {
	HealthCheck(ctx context.Context) error
}
