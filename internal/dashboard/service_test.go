package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/receiptly/dashboard/internal/upstream"
)

func serviceHarness(t *testing.T, handler http.Handler) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	api := upstream.NewClient(srv.URL, upstream.StaticTokenSource("tok"), discardLogger())
	cache := NewCache(rdb, time.Minute)
	orders := NewOrderStore(api, rdb, discardLogger(), 0)
	svc := NewService(api, cache, orders, discardLogger(), 5)
	t.Cleanup(svc.Close)
	return svc
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestLoadWidgetPopulated(t *testing.T) {
	svc := serviceHarness(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"total_receipts": 12, "average_bill": 24.5, "average_bill_delta": 1.5,
			"currency": "USD", "has_data": true,
		})
	}))

	state := svc.LoadWidget(context.Background(), upstream.Query{UserID: "1"}, WidgetBillStats, "M", Filters{})
	if state.Phase != PhasePopulated {
		t.Fatalf("phase = %v, want populated", state.Phase)
	}
	if state.View.Stats == nil {
		t.Fatal("populated bill stats must carry the stats view")
	}
	if state.View.Stats.TotalReceipts != 12 {
		t.Fatalf("TotalReceipts = %d", state.View.Stats.TotalReceipts)
	}
	if state.View.Stats.AverageBill != "$24.50" {
		t.Fatalf("AverageBill = %q", state.View.Stats.AverageBill)
	}
	if state.View.Stats.DeltaSign != 1 || state.View.Stats.Delta != "+$1.50" {
		t.Fatalf("delta = %q sign %d", state.View.Stats.Delta, state.View.Stats.DeltaSign)
	}
}

func TestLoadWidgetEmptyStates(t *testing.T) {
	hasData := true
	svc := serviceHarness(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"categories": []any{}, "has_data": hasData})
	}))

	state := svc.LoadWidget(context.Background(), upstream.Query{UserID: "1"}, WidgetByCategory, "week", Filters{})
	if state.Phase != PhaseEmptyForPeriod {
		t.Fatalf("phase = %v, want empty_for_period", state.Phase)
	}
	if state.View.ID != WidgetByCategory || len(state.View.Periods) == 0 {
		t.Fatalf("empty state must keep the period selector renderable, view = %+v", state.View)
	}

	hasData = false
	state = svc.LoadWidget(context.Background(), upstream.Query{UserID: "1"}, WidgetByCategory, "month", Filters{})
	if state.Phase != PhaseEmptyNoData {
		t.Fatalf("phase = %v, want empty_no_data", state.Phase)
	}
	if len(state.View.Periods) == 0 {
		t.Fatalf("empty state must keep the period selector renderable, view = %+v", state.View)
	}
}

func TestLoadWidgetErrorStates(t *testing.T) {
	svc := serviceHarness(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	state := svc.LoadWidget(context.Background(), upstream.Query{UserID: "1"}, WidgetShoppingDays, "month", Filters{})
	if state.Phase != PhaseError {
		t.Fatalf("phase = %v, want error", state.Phase)
	}
	if state.Message != "Could not load this widget" {
		t.Fatalf("message = %q", state.Message)
	}
	if state.NoConnectivity {
		t.Fatal("server error must not flag connectivity")
	}
	if state.View.ID != WidgetShoppingDays || len(state.View.Periods) == 0 {
		t.Fatalf("error state must keep the period selector renderable, view = %+v", state.View)
	}
}

func TestErrorStateRateLimited(t *testing.T) {
	err := fmt.Errorf("still rate limited after 3 retries: %w", errors.Join(upstream.ErrServer, upstream.ErrRateLimited))
	st := errorState(WidgetBillStats, "M", err)
	if st.Phase != PhaseError {
		t.Fatalf("phase = %v, want error", st.Phase)
	}
	if st.Message != "Too many requests, please retry shortly" {
		t.Fatalf("message = %q", st.Message)
	}
}

func TestLoadWidgetNoConnectivity(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	api := upstream.NewClient(srv.URL, upstream.StaticTokenSource("tok"), discardLogger())
	svc := NewService(api, NewCache(rdb, time.Minute), NewOrderStore(api, rdb, discardLogger(), 0), discardLogger(), 5)
	t.Cleanup(svc.Close)

	state := svc.LoadWidget(context.Background(), upstream.Query{UserID: "1"}, WidgetBillStats, "M", Filters{})
	if state.Phase != PhaseError || !state.NoConnectivity {
		t.Fatalf("state = %+v, want connectivity error", state)
	}
	if state.Message != "No internet connection" {
		t.Fatalf("message = %q", state.Message)
	}
}

func TestLoadWidgetInvalidPeriodFallsBack(t *testing.T) {
	svc := serviceHarness(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("interval"); got != "M" {
			t.Errorf("interval = %q, want the default M", got)
		}
		writeJSON(w, map[string]any{"total_receipts": 1, "average_bill": 2, "currency": "USD", "has_data": true})
	}))

	state := svc.LoadWidget(context.Background(), upstream.Query{UserID: "1"}, WidgetBillStats, "bogus", Filters{})
	if state.Period != "M" {
		t.Fatalf("period = %q, want M", state.Period)
	}
}

func TestWidgetCacheHitAndRefresh(t *testing.T) {
	var calls int32
	svc := serviceHarness(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeJSON(w, map[string]any{
			"categories": []map[string]any{{"category": "fruits", "total": 10}},
			"currency":   "USD", "has_data": true,
		})
	}))
	q := upstream.Query{UserID: "1"}

	for range 2 {
		state := svc.LoadWidget(context.Background(), q, WidgetByCategory, "week", Filters{})
		if state.Phase != PhasePopulated {
			t.Fatalf("phase = %v", state.Phase)
		}
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("upstream called %d times, want 1 (second load served from cache)", got)
	}

	if err := svc.Cache().Bump(context.Background()); err != nil {
		t.Fatalf("Bump: %v", err)
	}
	svc.LoadWidget(context.Background(), q, WidgetByCategory, "week", Filters{})
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("upstream called %d times after bump, want 2", got)
	}
}

func TestWidgetCacheScopedByFilters(t *testing.T) {
	var calls int32
	svc := serviceHarness(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeJSON(w, map[string]any{
			"categories": []map[string]any{{"category": "meat", "total": 5}},
			"currency":   "USD", "has_data": true,
		})
	}))
	q := upstream.Query{UserID: "1"}

	svc.LoadWidget(context.Background(), q, WidgetByCategory, "week", Filters{})
	svc.LoadWidget(context.Background(), upstream.Query{UserID: "1", StoreName: "Lidl"}, WidgetByCategory, "week", Filters{Store: "Lidl"})
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("upstream called %d times, want one per filter scope", got)
	}

	svc.LoadWidget(context.Background(), q, WidgetByCategory, "week", Filters{})
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("unfiltered reload hit upstream, want cache hit")
	}
}

func TestChartsCarryDrilldownHooks(t *testing.T) {
	svc := serviceHarness(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/analytics/spend":
			writeJSON(w, []map[string]any{
				{"period": "2026-08-01", "total_spent": 3.5},
				{"period": "2026-08-02", "total_spent": 7.0},
			})
		default:
			writeJSON(w, map[string]any{
				"categories": []map[string]any{
					{"category": "fruits", "total": 12.0},
					{"category": "meat", "total": 30.0},
				},
				"currency": "USD", "has_data": true,
			})
		}
	}))

	spent := svc.LoadWidget(context.Background(), upstream.Query{UserID: "1"}, WidgetTotalSpent, "daily", Filters{})
	if spent.Phase != PhasePopulated {
		t.Fatalf("phase = %v, want populated", spent.Phase)
	}
	if !strings.Contains(string(spent.View.SVG), `data-date="2026-08-01"`) {
		t.Fatalf("spend bars missing date drill-down hooks: %s", spent.View.SVG)
	}

	byCat := svc.LoadWidget(context.Background(), upstream.Query{UserID: "1"}, WidgetByCategory, "month", Filters{})
	if byCat.Phase != PhasePopulated {
		t.Fatalf("phase = %v, want populated", byCat.Phase)
	}
	if !strings.Contains(string(byCat.View.SVG), `data-category="fruits"`) {
		t.Fatalf("donut slices missing category drill-down hooks: %s", byCat.View.SVG)
	}
}

func TestTotalSpentProbesOtherPeriods(t *testing.T) {
	svc := serviceHarness(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("interval") == "daily" {
			writeJSON(w, []map[string]any{{"period": "2026-08-01", "total_spent": 3.5}})
			return
		}
		writeJSON(w, []map[string]any{})
	}))

	state := svc.LoadWidget(context.Background(), upstream.Query{UserID: "1"}, WidgetTotalSpent, "monthly", Filters{})
	if state.Phase != PhaseEmptyForPeriod {
		t.Fatalf("phase = %v, want empty_for_period (daily holds data)", state.Phase)
	}
}

func TestTotalSpentEmptyEverywhere(t *testing.T) {
	svc := serviceHarness(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []map[string]any{})
	}))

	state := svc.LoadWidget(context.Background(), upstream.Query{UserID: "1"}, WidgetTotalSpent, "monthly", Filters{})
	if state.Phase != PhaseEmptyNoData {
		t.Fatalf("phase = %v, want empty_no_data", state.Phase)
	}
}

func TestLoadDashboardIsolatesFailures(t *testing.T) {
	svc := serviceHarness(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/analytics/bill-stats":
			writeJSON(w, map[string]any{"total_receipts": 3, "average_bill": 9, "currency": "USD", "has_data": true})
		case "/api/analytics/widget-order":
			writeJSON(w, map[string]any{"order": []string{}})
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))

	view := svc.LoadDashboard(context.Background(), upstream.Query{UserID: "1"}, Filters{})
	if len(view.Order) != len(defaultOrder) {
		t.Fatalf("order length %d", len(view.Order))
	}
	if got := view.Widgets[WidgetBillStats].Phase; got != PhasePopulated {
		t.Fatalf("bill stats phase = %v, want populated", got)
	}
	if got := view.Widgets[WidgetShoppingDays].Phase; got != PhaseError {
		t.Fatalf("shopping days phase = %v, want error", got)
	}
}

func TestPanelStateReflectsLastLoad(t *testing.T) {
	svc := serviceHarness(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"total_receipts": 2, "average_bill": 4, "currency": "USD", "has_data": true})
	}))

	if got := svc.PanelState(WidgetBillStats).Phase; got != PhaseIdle {
		t.Fatalf("initial phase = %v, want idle", got)
	}
	svc.LoadWidget(context.Background(), upstream.Query{UserID: "1"}, WidgetBillStats, "M", Filters{})
	if got := svc.PanelState(WidgetBillStats).Phase; got != PhasePopulated {
		t.Fatalf("phase = %v, want populated", got)
	}
}
