// Package dashboard orchestrates the analytics widgets: fetch lifecycle,
// data-availability probing, widget ordering, filters and the shared refresh
// token.
package dashboard

import (
	"fmt"
	"strings"
)

// WidgetID identifies one dashboard panel. The set is fixed at build time;
// only the order changes.
type WidgetID string

// The dashboard widget catalog.
const (
	WidgetBillStats     WidgetID = "bill_stats"
	WidgetTotalSpent    WidgetID = "total_spent"
	WidgetByCategory    WidgetID = "expenses_by_category"
	WidgetTopProducts   WidgetID = "top_products"
	WidgetMostExpensive WidgetID = "most_expensive"
	WidgetShoppingDays  WidgetID = "shopping_days"
	WidgetDiet          WidgetID = "diet_composition"
)

var defaultOrder = []WidgetID{
	WidgetBillStats,
	WidgetTotalSpent,
	WidgetByCategory,
	WidgetTopProducts,
	WidgetMostExpensive,
	WidgetShoppingDays,
	WidgetDiet,
}

// DefaultOrder returns the factory widget order.
func DefaultOrder() []WidgetID {
	order := make([]WidgetID, len(defaultOrder))
	copy(order, defaultOrder)
	return order
}

// KnownWidget reports whether id belongs to the catalog.
func KnownWidget(id WidgetID) bool {
	for _, w := range defaultOrder {
		if w == id {
			return true
		}
	}
	return false
}

// ValidateOrder ensures an order is a permutation of the catalog.
func ValidateOrder(order []WidgetID) error {
	if len(order) != len(defaultOrder) {
		return fmt.Errorf("dashboard: order must list all %d widgets", len(defaultOrder))
	}
	seen := make(map[WidgetID]bool, len(order))
	for _, id := range order {
		if !KnownWidget(id) {
			return fmt.Errorf("dashboard: unknown widget %q", id)
		}
		if seen[id] {
			return fmt.Errorf("dashboard: duplicate widget %q", id)
		}
		seen[id] = true
	}
	return nil
}

var widgetPeriods = map[WidgetID][]string{
	WidgetBillStats:     {"M", "All"},
	WidgetTotalSpent:    {"daily", "weekly", "monthly"},
	WidgetByCategory:    {"week", "month", "all"},
	WidgetTopProducts:   {"month", "year", "all"},
	WidgetMostExpensive: {"month", "year", "all"},
	WidgetShoppingDays:  {"month", "all"},
	WidgetDiet:          {"month", "3months", "6months"},
}

var widgetDefaultPeriod = map[WidgetID]string{
	WidgetBillStats:     "M",
	WidgetTotalSpent:    "monthly",
	WidgetByCategory:    "week",
	WidgetTopProducts:   "month",
	WidgetMostExpensive: "month",
	WidgetShoppingDays:  "month",
	WidgetDiet:          "month",
}

// Periods returns the selectable aggregation buckets for a widget.
func Periods(id WidgetID) []string {
	periods := widgetPeriods[id]
	out := make([]string, len(periods))
	copy(out, periods)
	return out
}

// DefaultPeriod returns the period a widget starts on.
func DefaultPeriod(id WidgetID) string {
	return widgetDefaultPeriod[id]
}

// ValidPeriod reports whether period is selectable for the widget.
func ValidPeriod(id WidgetID, period string) bool {
	for _, p := range widgetPeriods[id] {
		if p == period {
			return true
		}
	}
	return false
}

// Filters is the store/category filter pair applied to every widget. Empty
// string means no filter.
type Filters struct {
	Store    string
	Category string
}

// CacheKey renders the filters into a stable cache key fragment.
func (f Filters) CacheKey() string {
	store := f.Store
	if store == "" {
		store = "-"
	}
	category := f.Category
	if category == "" {
		category = "-"
	}
	return strings.ReplaceAll(store, ":", "_") + ":" + strings.ReplaceAll(category, ":", "_")
}

// Plan is the subscription plan gating PDF export breadth.
type Plan string

// Subscription plans.
const (
	PlanBasic   Plan = "basic"
	PlanPremium Plan = "premium"
)

// ExportCharts lists the chart keys included in a PDF export for the plan.
// The keys follow the renderer's payload vocabulary, not widget IDs.
func (p Plan) ExportCharts() []string {
	if p == PlanBasic {
		return []string{"bill_stats", "total_spent", "by_category"}
	}
	return []string{"bill_stats", "total_spent", "by_category", "top_products", "most_expensive", "shopping_days"}
}
