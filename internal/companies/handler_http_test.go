package companies

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tucano-platform/tucano-admin/internal/audit"
	"github.com/tucano-platform/tucano-admin/internal/lgpd"
	"github.com/tucano-platform/tucano-admin/internal/observability"
	"github.com/tucano-platform/tucano-admin/internal/shared"
	"github.com/tucano-platform/tucano-admin/internal/view"
)

type stubRepository struct {
	companies []Company
}

func (s stubRepository) List(ctx context.Context) ([]Company, error) {
	return s.companies, nil
}

func (s stubRepository) Get(ctx context.Context, id string) (Company, error) {
	for _, c := range s.companies {
		if c.ID == id {
			return c, nil
		}
	}
	return Company{}, shared.ErrNotFound
}

type stubAuditFetcher struct{}

func (stubAuditFetcher) AuditLogs(ctx context.Context, entityType lgpd.EntityType, entityID string, page, size int) (lgpd.AuditPage, error) {
	return lgpd.AuditPage{}, nil
}

// newTestHandler wires a handler against a fake platform backend. The
// backend serves reveal-field for company c-1 and denies c-2.
func newTestHandler(t *testing.T) (*Handler, *observability.Metrics) {
	t.Helper()

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/c-2/") {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"value":"12345678000190"}`))
	}))
	t.Cleanup(backend.Close)

	templates, err := view.NewEngine()
	if err != nil {
		t.Fatalf("parse templates: %v", err)
	}

	client := lgpd.NewClient(lgpd.ClientConfig{BaseURL: backend.URL})
	queue := lgpd.NewQueue()
	metrics := observability.NewMetrics()
	h := NewHandler(HandlerParams{
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		Service:   NewService(stubRepository{companies: sampleCompanies()}),
		Templates: templates,
		CSRF:      shared.NewCSRFManager("test-secret"),
		Registry:  lgpd.NewRegistry(client, queue, time.Minute),
		Audit:     audit.NewService(stubAuditFetcher{}),
		Queue:     queue,
		Metrics:   metrics,
	})
	return h, metrics
}

func newSession(t *testing.T, perms ...string) *shared.Session {
	t.Helper()
	sm := shared.NewSessionManager(nil, "test_session", "secret", time.Hour, false)
	sess, err := sm.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	sess.SetUser("u-1")
	if len(perms) > 0 {
		sess.SetPermissions(perms)
	}
	return sess
}

func routedRequest(method, target string, sess *shared.Session, params map[string]string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	ctx = shared.ContextWithSession(ctx, sess)
	return req.WithContext(ctx)
}

func metricsBody(t *testing.T, metrics *observability.Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	return rec.Body.String()
}

func TestRevealFieldCountsMetric(t *testing.T) {
	h, metrics := newTestHandler(t)
	sess := newSession(t)

	rec := httptest.NewRecorder()
	h.revealField(rec, routedRequest(http.MethodPost, "/companies/c-1/reveal/cnpj", sess, map[string]string{"id": "c-1", "field": "cnpj"}))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}

	body := metricsBody(t, metrics)
	want := `tucano_lgpd_reveals_total{entity_type="companies",outcome="success"} 1`
	if !strings.Contains(body, want) {
		t.Fatalf("success counter missing from exposition:\n%s", body)
	}
}

func TestRevealFailureCountsMetric(t *testing.T) {
	h, metrics := newTestHandler(t)
	sess := newSession(t)

	rec := httptest.NewRecorder()
	h.revealField(rec, routedRequest(http.MethodPost, "/companies/c-2/reveal/cnpj", sess, map[string]string{"id": "c-2", "field": "cnpj"}))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}

	body := metricsBody(t, metrics)
	want := `tucano_lgpd_reveals_total{entity_type="companies",outcome="failure"} 1`
	if !strings.Contains(body, want) {
		t.Fatalf("failure counter missing from exposition:\n%s", body)
	}
}

func TestRevealAddressCountsMetric(t *testing.T) {
	h, metrics := newTestHandler(t)
	sess := newSession(t)

	rec := httptest.NewRecorder()
	h.revealAddress(rec, routedRequest(http.MethodPost, "/companies/c-1/addresses/a-1/reveal", sess, map[string]string{"id": "c-1", "addressID": "a-1"}))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}

	body := metricsBody(t, metrics)
	if !strings.Contains(body, `tucano_lgpd_reveals_total{entity_type="companies"`) {
		t.Fatalf("address reveal should count toward the reveal metric:\n%s", body)
	}
}

func TestDetailAuditTabRequiresPermission(t *testing.T) {
	h, _ := newTestHandler(t)

	withPerm := newSession(t, shared.PermAuditView)
	rec := httptest.NewRecorder()
	h.detail(rec, routedRequest(http.MethodGet, "/companies/c-1", withPerm, map[string]string{"id": "c-1"}))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Histórico de acesso") {
		t.Fatal("audit tab should render for a session holding the permission")
	}

	withoutPerm := newSession(t)
	rec = httptest.NewRecorder()
	h.detail(rec, routedRequest(http.MethodGet, "/companies/c-1", withoutPerm, map[string]string{"id": "c-1"}))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "Histórico de acesso") {
		t.Fatal("audit tab must stay hidden without the permission")
	}
}
