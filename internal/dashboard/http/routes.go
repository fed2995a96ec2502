package dashhttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
)

// MountRoutes registers dashboard endpoints onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	exportLimiter := httprate.Limit(4, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}),
	)

	r.Get("/", h.handleDashboard)
	r.Get("/widgets/{id}", h.handleWidget)
	r.Get("/drilldown/category/{category}", h.handleCategoryDrilldown)
	r.Get("/drilldown/date", h.handleDateDrilldown)
	r.Post("/filters", h.handleFilters)
	r.Post("/refresh", h.handleRefresh)
	r.Post("/order", h.handleOrder)
	r.Group(func(gr chi.Router) {
		gr.Use(exportLimiter)
		gr.Post("/export", h.handleExport)
	})
}
