package audit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/leeforge/logprovider/json"
	"github.com/leeforge/logprovider/logging"
	"github.com/leeforge/logprovider/plugin"
	"github.com/leeforge/logprovider/provider"
)

// AuditPlugin records security-relevant events into its own "audit"
// logger, built through the logger provider's services.
//
// Implements: Plugin, Disableable, RouteProvider, HealthReporter
type AuditPlugin struct {
	logger logging.Logger
	uid    *logging.UIDProcessor
	mu     sync.Mutex
}

// --- Core Interface (mandatory) ---

func (p *AuditPlugin) Name() string    { return "audit" }
func (p *AuditPlugin) Version() string { return "1.0.0" }

// Enable must run after the logger provider.
func (p *AuditPlugin) Enable(ctx context.Context, app *plugin.AppContext) error {
	create, err := plugin.Resolve[provider.CreateFunc](app.Services, provider.ServiceCreate)
	if err != nil {
		return fmt.Errorf("audit plugin requires the logger provider: %w", err)
	}

	p.uid, err = logging.NewUIDProcessor(logging.UIDOptions{Length: 12})
	if err != nil {
		return err
	}
	level := app.Config.GetString("level", "info")
	p.logger, err = create("audit", level, nil, []logging.Processor{p.uid})
	if err != nil {
		return err
	}
	return nil
}

// --- Disableable ---

func (p *AuditPlugin) Disable(ctx context.Context, app *plugin.AppContext) error {
	if p.logger == nil {
		return nil
	}
	return p.logger.Sync()
}

// --- RouteProvider ---

func (p *AuditPlugin) RegisterRoutes(router chi.Router) {
	router.Post("/api/v1/audit/records", p.handleRecord)
}

// --- HealthReporter ---

func (p *AuditPlugin) HealthCheck(ctx context.Context) error {
	if p.logger == nil {
		return fmt.Errorf("audit logger not initialized")
	}
	return nil
}

// --- Compile-time interface checks ---

var (
	_ plugin.Plugin         = (*AuditPlugin)(nil)
	_ plugin.Disableable    = (*AuditPlugin)(nil)
	_ plugin.RouteProvider  = (*AuditPlugin)(nil)
	_ plugin.HealthReporter = (*AuditPlugin)(nil)
)

// --- Internal ---

// maxRecordBytes caps the body of a posted record.
const maxRecordBytes = 64 << 10

// Record is one audit event.
type Record struct {
	Action string         `json:"action"`
	Actor  string         `json:"actor"`
	Data   map[string]any `json:"data,omitempty"`
}

// Record writes r to the audit logger and returns the uid tagging it.
func (p *AuditPlugin) Record(r Record) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	uid := p.uid.UID()
	p.logger.Info("audit record",
		zap.String("action", r.Action),
		zap.String("actor", r.Actor),
		zap.Any("data", r.Data),
	)
	p.uid.Reset()
	return uid
}

func (p *AuditPlugin) handleRecord(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRecordBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	var rec Record
	if err := json.Unmarshal(body, &rec); err != nil || rec.Action == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	uid := p.Record(rec)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]string{"uid": uid})
}
