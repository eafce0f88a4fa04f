package companies

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/tucano-platform/tucano-admin/internal/audit"
	"github.com/tucano-platform/tucano-admin/internal/datatable"
	"github.com/tucano-platform/tucano-admin/internal/lgpd"
	"github.com/tucano-platform/tucano-admin/internal/observability"
	"github.com/tucano-platform/tucano-admin/internal/rbac"
	"github.com/tucano-platform/tucano-admin/internal/shared"
	"github.com/tucano-platform/tucano-admin/internal/view"
)

// revealRateLimit caps reveal attempts per user IP beyond the global limit.
const revealRateLimit = 20

// DeletionEnqueuer schedules the follow-up check after an LGPD deletion
// request is filed.
type DeletionEnqueuer interface {
	EnqueueDeletionFollowUp(entityType, entityID, actorID string) error
}

// Handler manages company listing, detail and reveal endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	csrf      *shared.CSRFManager
	sessions  *shared.SessionManager
	rbac      rbac.Middleware
	registry  *lgpd.Registry
	privacy   *lgpd.Client
	auditSvc  *audit.Service
	activity  *shared.ActivityLogger
	queue     *lgpd.Queue
	deletions DeletionEnqueuer
	idem      *shared.IdempotencyStore
	metrics   *observability.Metrics
}

// HandlerParams groups the handler dependencies.
type HandlerParams struct {
	Logger    *slog.Logger
	Service   *Service
	Templates *view.Engine
	CSRF      *shared.CSRFManager
	Sessions  *shared.SessionManager
	RBAC      rbac.Middleware
	Registry  *lgpd.Registry
	Privacy   *lgpd.Client
	Audit     *audit.Service
	Activity  *shared.ActivityLogger
	Queue     *lgpd.Queue
	Deletions DeletionEnqueuer
	Idem      *shared.IdempotencyStore
	Metrics   *observability.Metrics
}

// NewHandler builds Handler instance.
func NewHandler(p HandlerParams) *Handler {
	return &Handler{
		logger:    p.Logger,
		service:   p.Service,
		templates: p.Templates,
		csrf:      p.CSRF,
		sessions:  p.Sessions,
		rbac:      p.RBAC,
		registry:  p.Registry,
		privacy:   p.Privacy,
		auditSvc:  p.Audit,
		activity:  p.Activity,
		queue:     p.Queue,
		deletions: p.Deletions,
		idem:      p.Idem,
		metrics:   p.Metrics,
	}
}

// MountRoutes registers company routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermCompaniesView))
		r.Get("/", h.list)
		r.Get("/export", h.exportList)
		r.Get("/{id}", h.detail)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermLGPDReveal))
		r.Use(httprate.Limit(revealRateLimit, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
		r.Post("/{id}/reveal/{field}", h.revealField)
		r.Post("/{id}/hide/{field}", h.hideField)
		r.Post("/{id}/addresses/{addressID}/reveal", h.revealAddress)
		r.Post("/{id}/addresses/{addressID}/hide", h.hideAddress)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermLGPDExport))
		r.Post("/{id}/export-data", h.exportData)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermLGPDDelete))
		r.Post("/{id}/request-deletion", h.requestDeletion)
	})
}

// buildState applies the request query to a fresh table state. Order
// matters: constraints first, then sort, then pagination, so the page is
// clamped against the final filtered set.
func buildState(rows []Company, query map[string][]string) *datatable.State[Company] {
	cfg := TableConfig(rows)
	state := datatable.NewState(cfg, rows)

	first := func(key string) string {
		if vs := query[key]; len(vs) > 0 {
			return vs[0]
		}
		return ""
	}

	if q := first("q"); q != "" {
		state.Search(q)
	}
	if status := first("status"); status != "" {
		state.SetFilter("status", datatable.Scalar(status))
	}
	if cities := query["city"]; len(cities) > 0 {
		state.SetFilter("city", datatable.List(cities...))
	}
	var from, to *time.Time
	if v := first("created_from"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			from = &t
		}
	}
	if v := first("created_to"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			end := t.Add(24*time.Hour - time.Second)
			to = &end
		}
	}
	if from != nil || to != nil {
		state.SetFilter("created_at", datatable.DateRange(from, to))
	}
	if sortKey := first("sort"); sortKey != "" {
		state.SortBy(sortKey, first("dir") != "desc")
	}
	if size, err := strconv.Atoi(first("size")); err == nil && size > 0 {
		state.SetPageSize(size)
	}
	if page, err := strconv.Atoi(first("page")); err == nil && page > 0 {
		state.SetPage(page)
	}
	return state
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ctx := h.apiContext(r)
	rows, err := h.service.List(ctx)
	if err != nil {
		h.logger.Error("list companies failed", slog.Any("error", err))
		h.renderFailure(w, r, "Empresas", err)
		return
	}
	state := buildState(rows, r.URL.Query())
	table := datatable.BuildView(state, false)
	h.render(w, r, "pages/companies/list.html", "Empresas", map[string]any{"Table": table, "Query": r.URL.RawQuery}, http.StatusOK)
}

func (h *Handler) exportList(w http.ResponseWriter, r *http.Request) {
	ctx := h.apiContext(r)
	rows, err := h.service.List(ctx)
	if err != nil {
		h.logger.Error("export companies failed", slog.Any("error", err))
		h.renderFailure(w, r, "Empresas", err)
		return
	}
	state := buildState(rows, r.URL.Query())
	format := datatable.ExportFormat(r.URL.Query().Get("format"))
	result, err := datatable.Export(state, format, nil)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", result.ContentType)
	if format != datatable.ExportPrint {
		w.Header().Set("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	}
	_, _ = w.Write(result.Content)
}

// fieldView is the render model of one sensitive field on the detail page.
type fieldView struct {
	Field    string
	Label    string
	Display  string
	Revealed bool
	Loading  bool
}

// addressView is the render model of one consolidated address card.
type addressView struct {
	ID       string
	City     string
	State    string
	Country  string
	Lines    []fieldView
	Revealed bool
	Loading  bool
}

var sensitiveFields = []struct {
	Field string
	Label string
}{
	{"cnpj", "CNPJ"},
	{"state_registration", "Inscrição estadual"},
	{"municipal_registration", "Inscrição municipal"},
	{"phone", "Telefone"},
}

func (h *Handler) detail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx := h.apiContext(r)
	company, err := h.service.Get(ctx, id)
	if err != nil {
		h.logger.Error("load company failed", slog.String("id", id), slog.Any("error", err))
		h.renderFailure(w, r, "Empresa", err)
		return
	}

	sess := shared.SessionFromContext(r.Context())
	sessionID := ""
	if sess != nil {
		sessionID = sess.ID
	}

	fields := make([]fieldView, 0, len(sensitiveFields))
	for _, sf := range sensitiveFields {
		f := h.registry.Field(sessionID, lgpd.EntityCompanies, id, sf.Field)
		fields = append(fields, fieldView{
			Field:    sf.Field,
			Label:    sf.Label,
			Display:  f.Display(),
			Revealed: f.Revealed(),
			Loading:  f.Loading(),
		})
	}

	addresses := make([]addressView, 0, len(company.Addresses))
	for _, addr := range company.Addresses {
		g := h.registry.Group(sessionID, lgpd.EntityCompanies, id, addr.ID)
		av := addressView{
			ID:       addr.ID,
			City:     addr.City,
			State:    addr.State,
			Country:  addr.Country,
			Revealed: g.Revealed(),
			Loading:  g.Loading(),
		}
		labels := map[string]string{
			"street":       "Logradouro",
			"number":       "Número",
			"complement":   "Complemento",
			"neighborhood": "Bairro",
			"zip_code":     "CEP",
		}
		for _, attr := range lgpd.AddressAttributes {
			av.Lines = append(av.Lines, fieldView{Field: attr, Label: labels[attr], Display: g.Display(attr)})
		}
		addresses = append(addresses, av)
	}

	data := map[string]any{
		"Company":   company,
		"Fields":    fields,
		"Addresses": addresses,
	}
	if sess != nil && sess.HasPermission(shared.PermAuditView) {
		auditPage, _ := strconv.Atoi(r.URL.Query().Get("audit_page"))
		auditSize, _ := strconv.Atoi(r.URL.Query().Get("audit_size"))
		auditView, err := h.auditSvc.Page(ctx, lgpd.EntityCompanies, id, auditPage, auditSize)
		if err != nil {
			h.logger.Warn("load audit trail failed", slog.String("id", id), slog.Any("error", err))
			auditView = audit.View{Empty: true}
		}
		data["Audit"] = auditView
	}

	h.render(w, r, "pages/companies/detail.html", company.Name, data, http.StatusOK)
}

func (h *Handler) revealField(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	field := chi.URLParam(r, "field")
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}
	f := h.registry.Field(sess.ID, lgpd.EntityCompanies, id, field)
	err := f.Reveal(h.apiContext(r))
	h.metrics.ObserveReveal(string(lgpd.EntityCompanies), err == nil)
	if err != nil {
		h.logger.Warn("reveal field failed", slog.String("id", id), slog.String("field", field), slog.Any("error", err))
	} else {
		h.recordActivity(r, sess, "REVEAL_FIELD", id, map[string]any{
			"field":  field,
			"digest": shared.Digest(f.Display()),
		})
	}
	http.Redirect(w, r, "/companies/"+id, http.StatusSeeOther)
}

func (h *Handler) hideField(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	field := chi.URLParam(r, "field")
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		h.registry.Field(sess.ID, lgpd.EntityCompanies, id, field).Hide()
	}
	http.Redirect(w, r, "/companies/"+id, http.StatusSeeOther)
}

func (h *Handler) revealAddress(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	addressID := chi.URLParam(r, "addressID")
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}
	g := h.registry.Group(sess.ID, lgpd.EntityCompanies, id, addressID)
	err := g.Reveal(h.apiContext(r))
	h.metrics.ObserveReveal(string(lgpd.EntityCompanies), err == nil)
	if err != nil {
		h.logger.Warn("reveal address failed", slog.String("id", id), slog.String("address", addressID), slog.Any("error", err))
	} else {
		// One activity entry for the whole group, mirroring the single
		// audit entry the platform writes for a bulk reveal.
		h.recordActivity(r, sess, "REVEAL_ADDRESS", id, map[string]any{"address_id": addressID})
	}
	http.Redirect(w, r, "/companies/"+id, http.StatusSeeOther)
}

func (h *Handler) hideAddress(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	addressID := chi.URLParam(r, "addressID")
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		h.registry.Group(sess.ID, lgpd.EntityCompanies, id, addressID).Hide()
	}
	http.Redirect(w, r, "/companies/"+id, http.StatusSeeOther)
}

func (h *Handler) exportData(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess := shared.SessionFromContext(r.Context())
	payload, err := h.privacy.ExportData(h.apiContext(r), lgpd.EntityCompanies, id)
	if err != nil {
		h.logger.Error("lgpd export failed", slog.String("id", id), slog.Any("error", err))
		h.redirectWithFlash(w, r, "/companies/"+id, "error", lgpd.UserMessage(err))
		return
	}
	h.recordActivity(r, sess, "EXPORT_DATA", id, nil)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="lgpd-empresa-`+id+`.json"`)
	_, _ = w.Write(payload)
}

func (h *Handler) requestDeletion(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess := shared.SessionFromContext(r.Context())
	if h.idem != nil {
		key := "deletion:" + string(lgpd.EntityCompanies) + ":" + id
		if err := h.idem.CheckAndInsert(r.Context(), key, "lgpd"); err != nil {
			if errors.Is(err, shared.ErrIdempotencyConflict) {
				h.redirectWithFlash(w, r, "/companies/"+id, "info", "Solicitação de exclusão já registrada para este cadastro.")
				return
			}
			h.logger.Warn("idempotency check", slog.Any("error", err))
		}
	}
	message, err := h.privacy.RequestDeletion(h.apiContext(r), lgpd.EntityCompanies, id)
	if err != nil {
		if h.idem != nil {
			_ = h.idem.Delete(r.Context(), "deletion:"+string(lgpd.EntityCompanies)+":"+id)
		}
		h.logger.Error("lgpd deletion request failed", slog.String("id", id), slog.Any("error", err))
		h.redirectWithFlash(w, r, "/companies/"+id, "error", lgpd.UserMessage(err))
		return
	}
	actorID := ""
	if sess != nil {
		actorID = sess.User()
	}
	h.recordActivity(r, sess, "REQUEST_DELETION", id, nil)
	if h.deletions != nil {
		if err := h.deletions.EnqueueDeletionFollowUp(string(lgpd.EntityCompanies), id, actorID); err != nil {
			h.logger.Warn("enqueue deletion follow-up", slog.Any("error", err))
		}
	}
	if message == "" {
		message = "Solicitação de exclusão registrada."
	}
	h.redirectWithFlash(w, r, "/companies/"+id, "success", message)
}

// apiContext attaches the acting user's platform token to outgoing calls.
func (h *Handler) apiContext(r *http.Request) context.Context {
	ctx := r.Context()
	if sess := shared.SessionFromContext(ctx); sess != nil {
		ctx = lgpd.ContextWithToken(ctx, sess.APIToken())
	}
	return ctx
}

func (h *Handler) recordActivity(r *http.Request, sess *shared.Session, action, entityID string, meta map[string]any) {
	if h.activity == nil {
		return
	}
	actorID := ""
	if sess != nil {
		actorID = sess.User()
	}
	entry := shared.Activity{
		ActorID:  actorID,
		Action:   action,
		Entity:   string(lgpd.EntityCompanies),
		EntityID: entityID,
		Meta:     meta,
	}
	if err := h.activity.Record(r.Context(), entry); err != nil {
		h.logger.Warn("record activity", slog.Any("error", err))
	}
}

// renderFailure maps a load failure onto the error panel, keeping the UI
// interactive: access denied and transient failures get a retry affordance
// and navigation fallback instead of a blank screen.
func (h *Handler) renderFailure(w http.ResponseWriter, r *http.Request, title string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, lgpd.ErrPermissionDenied):
		status = http.StatusForbidden
	case errors.Is(err, lgpd.ErrSessionExpired):
		status = http.StatusUnauthorized
	case errors.Is(err, lgpd.ErrNotFound), errors.Is(err, shared.ErrNotFound):
		status = http.StatusNotFound
	}
	h.render(w, r, "pages/error.html", title, map[string]any{
		"Message":   lgpd.UserMessage(err),
		"Retryable": lgpd.IsRetryable(err) || status == http.StatusInternalServerError,
		"RetryPath": r.URL.RequestURI(),
	}, status)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, template, title string, data map[string]any, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	var notifications []lgpd.Notification
	if sess != nil {
		flash = sess.PopFlash()
		notifications = h.queue.Drain(sess.ID)
	}
	viewData := view.TemplateData{
		Title:         title,
		CSRFToken:     csrfToken,
		Flash:         flash,
		Notifications: notifications,
		CurrentPath:   r.URL.Path,
		Data:          data,
	}
	w.WriteHeader(status)
	if err := h.templates.Render(w, template, viewData); err != nil {
		h.logger.Error("render template", slog.String("template", template), slog.Any("error", err))
	}
}

func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, location, kind, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: kind, Message: message})
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}
