package establishments

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tucano-platform/tucano-admin/internal/datatable"
	"github.com/tucano-platform/tucano-admin/internal/lgpd"
	"github.com/tucano-platform/tucano-admin/internal/rbac"
	"github.com/tucano-platform/tucano-admin/internal/shared"
	"github.com/tucano-platform/tucano-admin/internal/view"
)

// Handler manages establishment listing endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	csrf      *shared.CSRFManager
	rbac      rbac.Middleware
	queue     *lgpd.Queue
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager, rbac rbac.Middleware, queue *lgpd.Queue) *Handler {
	return &Handler{logger: logger, service: service, templates: templates, csrf: csrf, rbac: rbac, queue: queue}
}

// MountRoutes registers establishment routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermEstablishmentsView))
		r.Get("/", h.list)
		r.Get("/export", h.exportList)
	})
}

func buildState(rows []Establishment, query map[string][]string) *datatable.State[Establishment] {
	state := datatable.NewState(TableConfig(rows), rows)

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
		h.logger.Error("list establishments failed", slog.Any("error", err))
		h.renderFailure(w, r, "Estabelecimentos", err)
		return
	}
	state := buildState(rows, r.URL.Query())
	table := datatable.BuildView(state, false)
	h.render(w, r, "pages/establishments/list.html", "Estabelecimentos", map[string]any{"Table": table, "Query": r.URL.RawQuery}, http.StatusOK)
}

func (h *Handler) exportList(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.List(h.apiContext(r))
	if err != nil {
		h.logger.Error("export establishments failed", slog.Any("error", err))
		h.renderFailure(w, r, "Estabelecimentos", err)
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
