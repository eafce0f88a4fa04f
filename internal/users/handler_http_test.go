package users

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

	"github.com/tucano-platform/tucano-admin/internal/lgpd"
	"github.com/tucano-platform/tucano-admin/internal/observability"
	"github.com/tucano-platform/tucano-admin/internal/rbac"
	"github.com/tucano-platform/tucano-admin/internal/shared"
)

type stubRepository struct{}

func (stubRepository) List(ctx context.Context) ([]User, error) { return nil, nil }

func (stubRepository) Get(ctx context.Context, id string) (User, error) {
	return User{ID: id, Name: "Ana"}, nil
}

func TestRevealFieldCountsMetric(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"value":"52998224725"}`))
	}))
	defer backend.Close()

	client := lgpd.NewClient(lgpd.ClientConfig{BaseURL: backend.URL})
	queue := lgpd.NewQueue()
	metrics := observability.NewMetrics()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewHandler(logger, NewService(stubRepository{}), nil, nil, rbac.Middleware{Logger: logger},
		lgpd.NewRegistry(client, queue, time.Minute), nil, nil, queue, metrics)

	sm := shared.NewSessionManager(nil, "test_session", "secret", time.Hour, false)
	sess, err := sm.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil {
		t.Fatalf("load session: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/users/u-1/reveal/cpf", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "u-1")
	rctx.URLParams.Add("field", "cpf")
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	req = req.WithContext(shared.ContextWithSession(ctx, sess))

	rec := httptest.NewRecorder()
	h.revealField(rec, req)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}

	exposition := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(exposition, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	want := `tucano_lgpd_reveals_total{entity_type="users",outcome="success"} 1`
	if !strings.Contains(exposition.Body.String(), want) {
		t.Fatalf("reveal counter missing from exposition:\n%s", exposition.Body.String())
	}
}
