package audit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leeforge/logprovider/json"
	"github.com/leeforge/logprovider/plugin"
	"github.com/leeforge/logprovider/provider"
)

func TestAuditRequiresLoggerProvider(t *testing.T) {
	app := plugin.NewAppContext(nil, nil, nil)
	p := &AuditPlugin{}

	assert.Error(t, p.Enable(context.Background(), app))
	assert.Error(t, p.HealthCheck(context.Background()))
}

func TestAuditRecordsThroughLoggerProvider(t *testing.T) {
	dir := t.TempDir()
	app := plugin.NewAppContext(chi.NewRouter(), nil, plugin.NewMapConfigProvider(map[string]any{
		"log_folder": dir,
		"level":      "info",
	}))
	loggers := provider.NewLoggerProvider(nil)
	audit := &AuditPlugin{}
	require.NoError(t, plugin.EnableAll(context.Background(), app, loggers, audit))
	require.NoError(t, plugin.HealthCheck(context.Background(), loggers, audit))

	assert.True(t, loggers.Collection().Has("audit"))

	rec := httptest.NewRecorder()
	body := strings.NewReader(`{"action":"role.assigned","actor":"alice","data":{"role":"admin"}}`)
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/audit/records", body))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp["uid"], 12)

	require.NoError(t, plugin.DisableAll(context.Background(), app, loggers, audit))

	data, err := os.ReadFile(filepath.Join(dir, "audit.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "role.assigned")
	assert.Contains(t, string(data), resp["uid"])
}

func TestAuditRejectsBadRecord(t *testing.T) {
	app := plugin.NewAppContext(chi.NewRouter(), nil, plugin.NewMapConfigProvider(map[string]any{"log_folder": t.TempDir()}))
	loggers := provider.NewLoggerProvider(nil)
	audit := &AuditPlugin{}
	require.NoError(t, plugin.EnableAll(context.Background(), app, loggers, audit))
	t.Cleanup(func() { _ = plugin.DisableAll(context.Background(), app, loggers, audit) })

	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/audit/records", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	huge := `{"action":"bulk","data":{"blob":"` + strings.Repeat("x", maxRecordBytes) + `"}}`
	rec = httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/audit/records", strings.NewReader(huge)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}
