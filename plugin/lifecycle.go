package plugin

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// EnableAll enables plugins in the given order, then wires their
// middleware and routes into app.Router. Middleware goes first because
// chi rejects Use after a route has been added.
func EnableAll(ctx context.Context, app *AppContext, plugins ...Plugin) error {
	for _, p := range plugins {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("bootstrap canceled: %w", err)
		}
		if err := p.Enable(ctx, app); err != nil {
			return fmt.Errorf("plugin %q enable failed: %w", p.Name(), err)
		}
		app.logger().Info("plugin enabled", zap.String("name", p.Name()), zap.String("version", p.Version()))
	}

	if app.Router == nil {
		return nil
	}
	for _, p := range plugins {
		if mp, ok := p.(MiddlewareProvider); ok {
			mp.RegisterMiddlewares(app.Router)
		}
	}
	for _, p := range plugins {
		if rp, ok := p.(RouteProvider); ok {
			rp.RegisterRoutes(app.Router)
		}
	}
	return nil
}

// DisableAll disables plugins in reverse order. Every Disableable plugin
// runs even if an earlier one fails; failures are combined.
func DisableAll(ctx context.Context, app *AppContext, plugins ...Plugin) error {
	var err error
	for i := len(plugins) - 1; i >= 0; i-- {
		p, ok := plugins[i].(Disableable)
		if !ok {
			continue
		}
		if disableErr := p.Disable(ctx, app); disableErr != nil {
			app.logger().Error("plugin disable failed", zap.String("plugin", plugins[i].Name()), zap.Error(disableErr))
			err = multierr.Append(err, fmt.Errorf("plugin %q: %w", plugins[i].Name(), disableErr))
		}
	}
	return err
}

// HealthCheck runs every HealthReporter and combines the failures.
func HealthCheck(ctx context.Context, plugins ...Plugin) error {
	var err error
	for _, p := range plugins {
		if hr, ok := p.(HealthReporter); ok {
			if checkErr := hr.HealthCheck(ctx); checkErr != nil {
				err = multierr.Append(err, fmt.Errorf("plugin %q: %w", p.Name(), checkErr))
			}
		}
	}
	return err
}
