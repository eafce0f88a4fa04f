package lgpd

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(ClientConfig{BaseURL: srv.URL})
}

func TestRevealFieldSendsTokenAndPayload(t *testing.T) {
	var gotAuth, gotPath string
	var gotBody map[string]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"value": "12345678000190"})
	})

	ctx := ContextWithToken(context.Background(), "tok-1")
	value, err := client.RevealField(ctx, EntityCompanies, "c-1", "cnpj")
	if err != nil {
		t.Fatalf("reveal: %v", err)
	}
	if value != "12345678000190" {
		t.Fatalf("unexpected value %q", value)
	}
	if gotAuth != "Bearer tok-1" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
	if gotPath != "/api/v1/lgpd/companies/c-1/reveal-field" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotBody["field_name"] != "cnpj" {
		t.Fatalf("unexpected body %+v", gotBody)
	}
}

func TestRevealFieldStatusMapping(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, ErrSessionExpired},
		{http.StatusForbidden, ErrPermissionDenied},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusUnprocessableEntity, ErrValidation},
		{http.StatusTooManyRequests, ErrRetryable},
		{http.StatusBadGateway, ErrRetryable},
	}
	for _, tc := range cases {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "erro"})
		})
		_, err := client.RevealField(context.Background(), EntityCompanies, "c-1", "cnpj")
		if !errors.Is(err, tc.want) {
			t.Errorf("status %d: expected %v, got %v", tc.status, tc.want, err)
		}
	}
}

func TestRevealFieldRejectsInvalidInput(t *testing.T) {
	client := NewClient(ClientConfig{})

	if _, err := client.RevealField(context.Background(), EntityType("invoices"), "c-1", "cnpj"); err == nil {
		t.Fatal("invalid entity type must be refused before any request")
	}
	if _, err := client.RevealField(context.Background(), EntityCompanies, "c-1", ""); err == nil {
		t.Fatal("empty field name must be refused before any request")
	}
}

func TestRevealFieldsBulk(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/lgpd/companies/c-1/reveal-fields" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		var body map[string][]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		values := map[string]string{}
		for _, f := range body["field_names"] {
			values[f] = "v:" + f
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"values": values})
	})

	fields := []string{"address_a-1_street", "address_a-1_zip_code"}
	values, err := client.RevealFields(context.Background(), EntityCompanies, "c-1", fields)
	if err != nil {
		t.Fatalf("reveal fields: %v", err)
	}
	if len(values) != 2 || values["address_a-1_street"] != "v:address_a-1_street" {
		t.Fatalf("unexpected values %+v", values)
	}

	if _, err := client.RevealFields(context.Background(), EntityCompanies, "c-1", nil); err == nil {
		t.Fatal("empty field list must be refused")
	}
}

func TestAuditLogsPagination(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("page"); got != "2" {
			t.Errorf("unexpected page %q", got)
		}
		if got := r.URL.Query().Get("size"); got != "25" {
			t.Errorf("unexpected size %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(AuditPage{
			Items: []AuditLogItem{{ID: "al-1", Action: "reveal_field", Fields: []string{"cnpj"}}},
			Total: 51,
			Pages: 3,
		})
	})

	page, err := client.AuditLogs(context.Background(), EntityCompanies, "c-1", 2, 25)
	if err != nil {
		t.Fatalf("audit logs: %v", err)
	}
	if page.Total != 51 || page.Pages != 3 || len(page.Items) != 1 {
		t.Fatalf("unexpected page %+v", page)
	}
}

func TestAuditLogsDefaultsPageAndSize(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("page"); got != "1" {
			t.Errorf("page should default to 1, got %q", got)
		}
		if got := r.URL.Query().Get("size"); got != "10" {
			t.Errorf("size should default to 10, got %q", got)
		}
		_ = json.NewEncoder(w).Encode(AuditPage{})
	})
	if _, err := client.AuditLogs(context.Background(), EntityCompanies, "c-1", 0, -5); err != nil {
		t.Fatalf("audit logs: %v", err)
	}
}

func TestExportData(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("export must POST, got %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"company":{"cnpj":"12345678000190"}}`))
	})

	data, err := client.ExportData(context.Background(), EntityCompanies, "c-1")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if string(data) != `{"company":{"cnpj":"12345678000190"}}` {
		t.Fatalf("unexpected payload %q", data)
	}
}

func TestRequestDeletion(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "Solicitação registrada."})
	})

	msg, err := client.RequestDeletion(context.Background(), EntityCompanies, "c-1")
	if err != nil {
		t.Fatalf("request deletion: %v", err)
	}
	if msg != "Solicitação registrada." {
		t.Fatalf("unexpected message %q", msg)
	}
}
