package users

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

const revealRateLimit = 20

// Handler manages user listing, detail and reveal endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	csrf      *shared.CSRFManager
	rbac      rbac.Middleware
	registry  *lgpd.Registry
	auditSvc  *audit.Service
	activity  *shared.ActivityLogger
	queue     *lgpd.Queue
	metrics   *observability.Metrics
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager, rbac rbac.Middleware, registry *lgpd.Registry, auditSvc *audit.Service, activity *shared.ActivityLogger, queue *lgpd.Queue, metrics *observability.Metrics) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		templates: templates,
		csrf:      csrf,
		rbac:      rbac,
		registry:  registry,
		auditSvc:  auditSvc,
		activity:  activity,
		queue:     queue,
		metrics:   metrics,
	}
}

// MountRoutes registers user routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermUsersView))
		r.Get("/", h.list)
		r.Get("/export", h.exportList)
		r.Get("/{id}", h.detail)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermLGPDReveal))
		r.Use(httprate.Limit(revealRateLimit, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
		r.Post("/{id}/reveal/{field}", h.revealField)
		r.Post("/{id}/hide/{field}", h.hideField)
	})
}

func buildState(rows []User, query map[string][]string) *datatable.State[User] {
	state := datatable.NewState(TableConfig(), rows)

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
	if roles := query["role"]; len(roles) > 0 {
		state.SetFilter("role", datatable.List(roles...))
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
	rows, err := h.service.List(h.apiContext(r))
	if err != nil {
		h.logger.Error("list users failed", slog.Any("error", err))
		h.renderFailure(w, r, "Usuários", err)
		return
	}
	state := buildState(rows, r.URL.Query())
	table := datatable.BuildView(state, false)
	h.render(w, r, "pages/users/list.html", "Usuários", map[string]any{"Table": table, "Query": r.URL.RawQuery}, http.StatusOK)
}

func (h *Handler) exportList(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.List(h.apiContext(r))
	if err != nil {
		h.logger.Error("export users failed", slog.Any("error", err))
		h.renderFailure(w, r, "Usuários", err)
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

type fieldView struct {
	Field    string
	Label    string
	Display  string
	Revealed bool
	Loading  bool
}

var sensitiveFields = []struct {
	Field string
	Label string
}{
	{"cpf", "CPF"},
	{"phone", "Telefone"},
}

func (h *Handler) detail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx := h.apiContext(r)
	user, err := h.service.Get(ctx, id)
	if err != nil {
		h.logger.Error("load user failed", slog.String("id", id), slog.Any("error", err))
		h.renderFailure(w, r, "Usuário", err)
		return
	}

	sess := shared.SessionFromContext(r.Context())
	sessionID := ""
	if sess != nil {
		sessionID = sess.ID
	}

	fields := make([]fieldView, 0, len(sensitiveFields))
	for _, sf := range sensitiveFields {
		f := h.registry.Field(sessionID, lgpd.EntityUsers, id, sf.Field)
		fields = append(fields, fieldView{
			Field:    sf.Field,
			Label:    sf.Label,
			Display:  f.Display(),
			Revealed: f.Revealed(),
			Loading:  f.Loading(),
		})
	}

	data := map[string]any{
		"User":   user,
		"Fields": fields,
	}
	if sess != nil && sess.HasPermission(shared.PermAuditView) {
		auditPage, _ := strconv.Atoi(r.URL.Query().Get("audit_page"))
		auditSize, _ := strconv.Atoi(r.URL.Query().Get("audit_size"))
		auditView, err := h.auditSvc.Page(ctx, lgpd.EntityUsers, id, auditPage, auditSize)
		if err != nil {
			h.logger.Warn("load audit trail failed", slog.String("id", id), slog.Any("error", err))
			auditView = audit.View{Empty: true}
		}
		data["Audit"] = auditView
	}

	h.render(w, r, "pages/users/detail.html", user.Name, data, http.StatusOK)
}

func (h *Handler) revealField(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	field := chi.URLParam(r, "field")
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}
	f := h.registry.Field(sess.ID, lgpd.EntityUsers, id, field)
	err := f.Reveal(h.apiContext(r))
	h.metrics.ObserveReveal(string(lgpd.EntityUsers), err == nil)
	if err != nil {
		h.logger.Warn("reveal field failed", slog.String("id", id), slog.String("field", field), slog.Any("error", err))
	} else if h.activity != nil {
		entry := shared.Activity{
			ActorID:  sess.User(),
			Action:   "REVEAL_FIELD",
			Entity:   string(lgpd.EntityUsers),
			EntityID: id,
			Meta:     map[string]any{"field": field, "digest": shared.Digest(f.Display())},
		}
		if err := h.activity.Record(r.Context(), entry); err != nil {
			h.logger.Warn("record activity", slog.Any("error", err))
		}
	}
	http.Redirect(w, r, "/users/"+id, http.StatusSeeOther)
}

func (h *Handler) hideField(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	field := chi.URLParam(r, "field")
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		h.registry.Field(sess.ID, lgpd.EntityUsers, id, field).Hide()
	}
	http.Redirect(w, r, "/users/"+id, http.StatusSeeOther)
}

func (h *Handler) apiContext(r *http.Request) context.Context {
	ctx := r.Context()
	if sess := shared.SessionFromContext(ctx); sess != nil {
		ctx = lgpd.ContextWithToken(ctx, sess.APIToken())
	}
	return ctx
}

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
