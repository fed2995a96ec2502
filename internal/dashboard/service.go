package dashboard

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/receiptly/dashboard/internal/upstream"
)

// Service loads widget data, renders it into views and runs each panel's
// lifecycle. One Service instance serves one authenticated account.
type Service struct {
	api      *upstream.Client
	cache    *Cache
	orders   *OrderStore
	prober   *Prober
	logger   *slog.Logger
	panels   map[WidgetID]*Panel
	topLimit int
	onLoad   func(widget, phase string)
}

// NewService wires the dashboard service. topLimit caps the ranked-product
// widgets; zero falls back to 5.
func NewService(api *upstream.Client, cache *Cache, orders *OrderStore, logger *slog.Logger, topLimit int) *Service {
	if topLimit <= 0 {
		topLimit = 5
	}
	panels := make(map[WidgetID]*Panel, len(defaultOrder))
	for _, id := range defaultOrder {
		panels[id] = NewPanel(id)
	}
	return &Service{
		api:      api,
		cache:    cache,
		orders:   orders,
		prober:   NewProber(logger),
		logger:   logger,
		panels:   panels,
		topLimit: topLimit,
	}
}

// OnLoad registers a callback invoked with the widget ID and terminal phase
// of every published load, typically a metrics counter.
func (s *Service) OnLoad(fn func(widget, phase string)) {
	s.onLoad = fn
}

// Orders exposes the widget order store.
func (s *Service) Orders() *OrderStore { return s.orders }

// Cache exposes the versioned cache so callers can bump the refresh token.
func (s *Service) Cache() *Cache { return s.cache }

// Close disposes every panel; in-flight loads finishing afterwards are dropped.
func (s *Service) Close() {
	for _, p := range s.panels {
		p.Close()
	}
}

// LoadWidget runs one widget's load lifecycle and returns the published
// state. When a newer load supersedes this one mid-flight, the newer
// panel state is returned and this result is discarded.
func (s *Service) LoadWidget(ctx context.Context, q upstream.Query, id WidgetID, period string, filters Filters) State {
	panel, ok := s.panels[id]
	if !ok {
		return State{Phase: PhaseError, Message: "unknown widget"}
	}
	if !ValidPeriod(id, period) {
		period = DefaultPeriod(id)
	}
	seq := panel.Begin(period)
	state := s.buildWidget(ctx, q, id, period, filters)
	if !panel.Finish(seq, state) {
		s.logger.Debug("stale widget load dropped",
			slog.String("widget", string(id)),
			slog.String("period", period))
		return panel.State()
	}
	if s.onLoad != nil {
		s.onLoad(string(id), state.Phase.String())
	}
	return state
}

// PanelState returns the last published state without triggering a load.
func (s *Service) PanelState(id WidgetID) State {
	if panel, ok := s.panels[id]; ok {
		return panel.State()
	}
	return State{Phase: PhaseIdle}
}

// DashboardView is the fully loaded page model: widgets in the user's
// order, each carrying its own terminal state.
type DashboardView struct {
	Order   []WidgetID
	Widgets map[WidgetID]State
}

// LoadDashboard loads every widget concurrently on its default period. A
// widget failing lands in its own Error state and never affects siblings.
func (s *Service) LoadDashboard(ctx context.Context, q upstream.Query, filters Filters) DashboardView {
	order := s.orders.Load(ctx, q)
	states := make([]State, len(order))

	g, gctx := errgroup.WithContext(ctx)
	for i, id := range order {
		g.Go(func() error {
			states[i] = s.LoadWidget(gctx, q, id, DefaultPeriod(id), filters)
			return nil
		})
	}
	_ = g.Wait()

	widgets := make(map[WidgetID]State, len(order))
	for i, id := range order {
		widgets[id] = states[i]
	}
	return DashboardView{Order: order, Widgets: widgets}
}

func (s *Service) buildWidget(ctx context.Context, q upstream.Query, id WidgetID, period string, filters Filters) State {
	switch id {
	case WidgetBillStats:
		return s.buildBillStats(ctx, q, period, filters)
	case WidgetTotalSpent:
		return s.buildTotalSpent(ctx, q, period, filters)
	case WidgetByCategory:
		return s.buildByCategory(ctx, q, period, filters)
	case WidgetTopProducts:
		return s.buildTopProducts(ctx, q, period, filters)
	case WidgetMostExpensive:
		return s.buildMostExpensive(ctx, q, period, filters)
	case WidgetShoppingDays:
		return s.buildShoppingDays(ctx, q, period, filters)
	case WidgetDiet:
		return s.buildDiet(ctx, q, period, filters)
	default:
		return State{Phase: PhaseError, Period: period, Message: "unknown widget"}
	}
}

// cached fetches a widget payload through the versioned cache. Errors are
// never cached; only successful upstream payloads are stored.
func (s *Service) cached(ctx context.Context, q upstream.Query, id WidgetID, period string, filters Filters, dest interface{}, loader func(context.Context) (interface{}, error)) error {
	key, err := s.cache.BuildKey(ctx, keyWidget(q.UserID, id, period, filters))
	if err != nil {
		s.logger.Warn("cache key build failed", slog.String("error", err.Error()))
		value, lerr := loader(ctx)
		if lerr != nil {
			return lerr
		}
		return roundTrip(value, dest)
	}
	return s.cache.FetchJSON(ctx, key, dest, loader)
}

// errorMessage maps an upstream failure onto user-facing copy.
func errorMessage(err error) (msg string, noConnectivity bool) {
	switch {
	case errors.Is(err, upstream.ErrNoConnectivity):
		return "No internet connection", true
	case errors.Is(err, upstream.ErrRateLimited):
		return "Too many requests, please retry shortly", false
	case errors.Is(err, upstream.ErrUnauthorized):
		return "Session expired", false
	default:
		return "Could not load this widget", false
	}
}

// errorState and emptyState keep the widget header renderable: the view
// carries the title and period choices so the user can switch intervals
// without a populated body.
func errorState(id WidgetID, period string, err error) State {
	st := State{Phase: PhaseError, Period: period, View: newView(id, period, "")}
	st.Message, st.NoConnectivity = errorMessage(err)
	return st
}

func emptyState(id WidgetID, period string, hasData bool) State {
	st := State{Phase: PhaseEmptyForPeriod, Period: period, View: newView(id, period, "")}
	if !hasData {
		st.Phase = PhaseEmptyNoData
	}
	return st
}

// otherPeriods lists the widget's probe candidates excluding the period
// already known to be empty.
func otherPeriods(id WidgetID, current string) []string {
	out := make([]string, 0, len(widgetPeriods[id]))
	for _, p := range widgetPeriods[id] {
		if p != current {
			out = append(out, p)
		}
	}
	return out
}
