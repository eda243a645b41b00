package plugin

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testFullPlugin implements all interfaces and records lifecycle calls.
type testFullPlugin struct {
	name     string
	calls    *[]string
	failWith error
}

func (p *testFullPlugin) Name() string    { return p.name }
func (p *testFullPlugin) Version() string { return "1.0.0" }
func (p *testFullPlugin) Enable(context.Context, *AppContext) error {
	*p.calls = append(*p.calls, "enable:"+p.name)
	return nil
}
func (p *testFullPlugin) Disable(context.Context, *AppContext) error {
	*p.calls = append(*p.calls, "disable:"+p.name)
	return p.failWith
}
func (p *testFullPlugin) RegisterRoutes(r chi.Router) {
	r.Get("/"+p.name, func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
}
func (p *testFullPlugin) RegisterMiddlewares(r chi.Router) {
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			w.Header().Add("X-Plugin", p.name)
			next.ServeHTTP(w, req)
		})
	})
}
func (p *testFullPlugin) HealthCheck(context.Context) error { return p.failWith }

// Compile-time assertions
var _ Plugin = (*testFullPlugin)(nil)
var _ Disableable = (*testFullPlugin)(nil)
var _ RouteProvider = (*testFullPlugin)(nil)
var _ MiddlewareProvider = (*testFullPlugin)(nil)
var _ HealthReporter = (*testFullPlugin)(nil)

// testMinimalPlugin implements ONLY the core interface.
type testMinimalPlugin struct{}

func (p *testMinimalPlugin) Name() string                              { return "test-minimal" }
func (p *testMinimalPlugin) Version() string                           { return "1.0.0" }
func (p *testMinimalPlugin) Enable(context.Context, *AppContext) error { return nil }

func TestCapabilityDetection(t *testing.T) {
	var calls []string
	full := Plugin(&testFullPlugin{name: "full", calls: &calls})
	minimal := Plugin(&testMinimalPlugin{})

	if _, ok := full.(RouteProvider); !ok {
		t.Error("testFullPlugin should implement RouteProvider")
	}
	if _, ok := minimal.(RouteProvider); ok {
		t.Error("testMinimalPlugin should NOT implement RouteProvider")
	}
	if _, ok := minimal.(Disableable); ok {
		t.Error("testMinimalPlugin should NOT implement Disableable")
	}
}

func TestNewAppContextDefaults(t *testing.T) {
	app := NewAppContext(nil, nil, nil)

	require.NotNil(t, app.Logger)
	require.NotNil(t, app.Services)
	require.NotNil(t, app.Config)
	assert.False(t, app.Config.IsEnabled())
}

func TestEnableAllWiresMiddlewareAndRoutes(t *testing.T) {
	var calls []string
	a := &testFullPlugin{name: "a", calls: &calls}
	b := &testFullPlugin{name: "b", calls: &calls}
	app := NewAppContext(chi.NewRouter(), nil, nil)

	require.NoError(t, EnableAll(context.Background(), app, a, &testMinimalPlugin{}, b))
	assert.Equal(t, []string{"enable:a", "enable:b"}, calls)

	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/b", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"a", "b"}, rec.Header().Values("X-Plugin"))
}

func TestEnableAllStopsOnCanceledContext(t *testing.T) {
	var calls []string
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := EnableAll(ctx, NewAppContext(nil, nil, nil), &testFullPlugin{name: "a", calls: &calls})
	require.Error(t, err)
	assert.Empty(t, calls)
}

func TestDisableAllRunsInReverseAndCombinesErrors(t *testing.T) {
	var calls []string
	boom := errors.New("boom")
	a := &testFullPlugin{name: "a", calls: &calls, failWith: boom}
	b := &testFullPlugin{name: "b", calls: &calls}

	err := DisableAll(context.Background(), NewAppContext(nil, nil, nil), a, b)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"disable:b", "disable:a"}, calls)
}

func TestHealthCheck(t *testing.T) {
	var calls []string
	boom := errors.New("unhealthy")

	assert.NoError(t, HealthCheck(context.Background(), &testFullPlugin{name: "ok", calls: &calls}))
	assert.ErrorIs(t, HealthCheck(context.Background(), &testFullPlugin{name: "bad", calls: &calls, failWith: boom}), boom)
}
