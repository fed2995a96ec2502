package receipts

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/receiptly/dashboard/internal/charts"
	"github.com/receiptly/dashboard/internal/dashboard"
	"github.com/receiptly/dashboard/internal/platform/httpx"
	"github.com/receiptly/dashboard/internal/upstream"
	"github.com/receiptly/dashboard/internal/view"
)

// Handler serves the receipt detail page and its edit endpoints.
type Handler struct {
	logger    *slog.Logger
	editor    *Editor
	cache     *dashboard.Cache
	templates *view.Engine
}

// NewHandler constructs the receipts HTTP handler.
func NewHandler(logger *slog.Logger, editor *Editor, cache *dashboard.Cache, templates *view.Engine) *Handler {
	return &Handler{logger: logger, editor: editor, cache: cache, templates: templates}
}

// MountRoutes registers receipt endpoints onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	r.Get("/{id}", h.handleShow)
	r.Post("/{id}/field", h.handleUpdateField)
	r.Post("/{id}/items/{index}/price", h.handleUpdateItemPrice)
}

// ReceiptPage is the detail page view model.
type ReceiptPage struct {
	Receipt  upstream.Receipt
	Total    string
	Tax      string
	Discount string
	Items    []ReceiptLine
}

// ReceiptLine is one formatted line item.
type ReceiptLine struct {
	Index    int
	Name     string
	Category string
	Quantity float64
	Price    string
	Total    string
}

func (h *Handler) handleShow(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	receipt, err := h.editor.Load(r.Context(), id)
	if err != nil {
		h.logger.Error("load receipt", slog.Int64("receipt_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	data := view.TemplateData{
		Title:       receipt.StoreName,
		CurrentPath: r.URL.Path,
		Data:        buildReceiptPage(receipt),
	}
	if err := h.templates.Render(w, "pages/receipt.html", data); err != nil {
		h.logger.Error("render receipt", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) handleUpdateField(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	field := r.PostFormValue("field")
	value := r.PostFormValue("value")
	receipt, err := h.editor.UpdateField(r.Context(), id, field, value)
	if err != nil {
		h.respondEditError(w, id, err)
		return
	}
	h.bump(r)
	httpx.JSON(w, http.StatusOK, buildReceiptPage(receipt))
}

func (h *Handler) handleUpdateItemPrice(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", "item index must be a number")
		return
	}
	receipt, err := h.editor.UpdateItemPrice(r.Context(), id, index, r.PostFormValue("price"))
	if err != nil {
		h.respondEditError(w, id, err)
		return
	}
	h.bump(r)
	httpx.JSON(w, http.StatusOK, buildReceiptPage(receipt))
}

func (h *Handler) respondEditError(w http.ResponseWriter, id int64, err error) {
	var fieldErr FieldError
	if errors.As(err, &fieldErr) {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", fieldErr.Error())
		return
	}
	h.logger.Error("receipt edit", slog.Int64("receipt_id", id), slog.Any("error", err))
	httpx.RespondError(w, err)
}

// bump retires cached widget payloads after an edit so the dashboard
// reflects the new numbers on its next load.
func (h *Handler) bump(r *http.Request) {
	if err := h.cache.Bump(r.Context()); err != nil {
		h.logger.Warn("cache bump after edit failed", slog.Any("error", err))
	}
}

func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, httpx.ErrNotFound
	}
	return id, nil
}

func buildReceiptPage(receipt upstream.Receipt) ReceiptPage {
	page := ReceiptPage{
		Receipt:  receipt,
		Total:    charts.FormatAmount(receipt.Currency, receipt.Total),
		Tax:      charts.FormatAmount(receipt.Currency, receipt.TaxAmount),
		Discount: charts.FormatAmount(receipt.Currency, receipt.TotalDiscount),
	}
	for i, item := range receipt.Items {
		page.Items = append(page.Items, ReceiptLine{
			Index:    i,
			Name:     item.Name,
			Category: item.Category,
			Quantity: item.Quantity,
			Price:    charts.FormatAmount(receipt.Currency, item.Price),
			Total:    charts.FormatAmount(receipt.Currency, item.Total),
		})
	}
	return page
}
