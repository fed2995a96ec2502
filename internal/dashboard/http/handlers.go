// Package dashhttp serves the analytics dashboard pages and fragments.
package dashhttp

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/receiptly/dashboard/internal/dashboard"
	"github.com/receiptly/dashboard/internal/platform/httpx"
	"github.com/receiptly/dashboard/internal/upstream"
	"github.com/receiptly/dashboard/internal/view"
)

const requestTimeout = 15 * time.Second

// Handler coordinates HTTP requests for the receipts analytics dashboard.
type Handler struct {
	logger    *slog.Logger
	service   *dashboard.Service
	exporter  Exporter
	templates *view.Engine
	tokens    upstream.TokenSource
	plan      dashboard.Plan
}

// Exporter renders the full analytics document to a PDF on disk.
type Exporter interface {
	Run(ctx context.Context, q upstream.Query, plan dashboard.Plan) (string, error)
}

// NewHandler constructs the dashboard HTTP handler.
func NewHandler(logger *slog.Logger, service *dashboard.Service, exporter Exporter, templates *view.Engine, tokens upstream.TokenSource, plan dashboard.Plan) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		exporter:  exporter,
		templates: templates,
		tokens:    tokens,
		plan:      plan,
	}
}

// query derives the upstream query identity from the configured API token.
// A token without a recognizable subject degrades to an empty user ID; the
// upstream API then scopes by token alone.
func (h *Handler) query(ctx context.Context) upstream.Query {
	raw, err := h.tokens.Token(ctx)
	if err != nil {
		h.logger.Warn("token source failed", slog.Any("error", err))
		return upstream.Query{}
	}
	userID, err := upstream.UserIDFromToken(raw)
	if err != nil {
		h.logger.Warn("token carries no user id", slog.Any("error", err))
		return upstream.Query{}
	}
	return upstream.Query{UserID: userID}
}

func parseFilters(r *http.Request) dashboard.Filters {
	return dashboard.Filters{
		Store:    strings.TrimSpace(r.URL.Query().Get("store")),
		Category: strings.TrimSpace(r.URL.Query().Get("category")),
	}
}

// DashboardPage is the full page view model.
type DashboardPage struct {
	Widgets []WidgetFragment
	Sidebar dashboard.Sidebar
	Filters dashboard.Filters
	Plan    dashboard.Plan
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	q := h.query(ctx)
	filters := parseFilters(r)
	q.StoreName = filters.Store
	q.StoreCategory = filters.Category

	loaded := h.service.LoadDashboard(ctx, q, filters)
	fragments := make([]WidgetFragment, 0, len(loaded.Order))
	for _, id := range loaded.Order {
		fragments = append(fragments, WidgetFragment{ID: id, State: loaded.Widgets[id]})
	}

	page := DashboardPage{
		Widgets: fragments,
		Sidebar: h.service.LoadSidebar(ctx, q.UserID, filters),
		Filters: filters,
		Plan:    h.plan,
	}
	data := view.TemplateData{
		Title:       "Receipts Analytics",
		CurrentPath: r.URL.Path,
		Data:        page,
	}
	if err := h.templates.Render(w, "pages/dashboard.html", data); err != nil {
		h.logger.Error("render dashboard", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// WidgetFragment wraps one widget state for partial rendering.
type WidgetFragment struct {
	ID    dashboard.WidgetID
	State dashboard.State
}

func (h *Handler) handleWidget(w http.ResponseWriter, r *http.Request) {
	id := dashboard.WidgetID(chi.URLParam(r, "id"))
	if !dashboard.KnownWidget(id) {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	q := h.query(ctx)
	filters := parseFilters(r)
	q.StoreName = filters.Store
	q.StoreCategory = filters.Category
	period := strings.TrimSpace(r.URL.Query().Get("period"))

	state := h.service.LoadWidget(ctx, q, id, period, filters)
	if err := h.templates.RenderPartial(w, "partials/widget.html", WidgetFragment{ID: id, State: state}); err != nil {
		h.logger.Error("render widget", slog.String("widget", string(id)), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) handleCategoryDrilldown(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	if decoded, err := url.PathUnescape(category); err == nil {
		category = decoded
	}
	if strings.TrimSpace(category) == "" {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	q := h.query(ctx)
	period := strings.TrimSpace(r.URL.Query().Get("period"))
	d := h.service.LoadCategoryDrilldown(ctx, q, category, period)
	h.renderDrilldown(w, d)
}

func (h *Handler) handleDateDrilldown(w http.ResponseWriter, r *http.Request) {
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if date == "" {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", "date is required")
		return
	}
	interval := strings.TrimSpace(r.URL.Query().Get("interval"))
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	q := h.query(ctx)
	d := h.service.LoadDateDrilldown(ctx, q, date, interval)
	h.renderDrilldown(w, d)
}

func (h *Handler) renderDrilldown(w http.ResponseWriter, d dashboard.Drilldown) {
	if err := h.templates.RenderPartial(w, "partials/drilldown.html", d); err != nil {
		h.logger.Error("render drilldown", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// handleFilters applies the store/category filters and sends the browser
// back to the dashboard. Widget payloads are cached per filter pair, so a
// filter change triggers exactly one upstream fetch per widget.
func (h *Handler) handleFilters(w http.ResponseWriter, r *http.Request) {
	params := url.Values{}
	if store := strings.TrimSpace(r.PostFormValue("store")); store != "" {
		params.Set("store", store)
	}
	if category := strings.TrimSpace(r.PostFormValue("category")); category != "" {
		params.Set("category", category)
	}
	target := "/"
	if encoded := params.Encode(); encoded != "" {
		target += "?" + encoded
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// handleRefresh bumps the cache version so every widget refetches, then
// reloads the page.
func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Cache().Bump(r.Context()); err != nil {
		h.logger.Error("refresh bump failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) handleOrder(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Order []string `json:"order"`
	}
	if err := httpx.DecodeJSON(r, &body); err != nil || len(body.Order) == 0 {
		httpx.RespondError(w, fmt.Errorf("%w: order is required", httpx.ErrValidation))
		return
	}
	order := make([]dashboard.WidgetID, 0, len(body.Order))
	for _, p := range body.Order {
		order = append(order, dashboard.WidgetID(strings.TrimSpace(p)))
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	if err := h.service.Orders().Apply(ctx, h.query(ctx), order); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	path, err := h.exporter.Run(ctx, h.query(ctx), h.plan)
	if err != nil {
		h.logger.Error("pdf export failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true, "file": filepath.Base(path)})
}
