package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"

	"github.com/receiptly/dashboard/internal/charts"
	chartsvg "github.com/receiptly/dashboard/internal/charts/svg"
	"github.com/receiptly/dashboard/internal/upstream"
)

// View is the rendered body of a populated widget. Only the fields the
// widget type needs are set.
type View struct {
	ID       WidgetID
	Title    string
	Period   string
	Periods  []string
	Currency string
	SVG      template.HTML
	Legend   []LegendEntry
	Rows     []ProductRow
	Stats    *BillStatsView
}

// LegendEntry is one color-keyed line under a chart.
type LegendEntry struct {
	Label   string
	Color   string
	Amount  string
	Percent float64
}

// ProductRow is one row of a ranked product list.
type ProductRow struct {
	Rank     int
	Name     string
	Category string
	Color    string
	Count    int
	Percent  float64
	Amount   string
}

// BillStatsView is the headline numbers widget body.
type BillStatsView struct {
	TotalReceipts int
	AverageBill   string
	Delta         string
	DeltaSign     int
}

var widgetTitles = map[WidgetID]string{
	WidgetBillStats:     "Bill statistics",
	WidgetTotalSpent:    "Total spent",
	WidgetByCategory:    "Expenses by category",
	WidgetTopProducts:   "Top products",
	WidgetMostExpensive: "Most expensive products",
	WidgetShoppingDays:  "Shopping days",
	WidgetDiet:          "Diet composition",
}

func newView(id WidgetID, period, currency string) View {
	return View{
		ID:       id,
		Title:    widgetTitles[id],
		Period:   period,
		Periods:  Periods(id),
		Currency: currency,
	}
}

func (s *Service) buildBillStats(ctx context.Context, q upstream.Query, period string, filters Filters) State {
	var res upstream.BillStats
	err := s.cached(ctx, q, WidgetBillStats, period, filters, &res, func(ctx context.Context) (interface{}, error) {
		return s.api.BillStats(ctx, q, period)
	})
	if err != nil {
		return errorState(WidgetBillStats, period, err)
	}
	if res.TotalReceipts == 0 {
		return emptyState(WidgetBillStats, period, res.HasData)
	}
	stats := &BillStatsView{
		TotalReceipts: res.TotalReceipts,
		AverageBill:   charts.FormatAmount(res.Currency, res.AverageBill),
	}
	if res.AverageBillDelta != nil {
		delta := *res.AverageBillDelta
		switch {
		case delta > 0:
			stats.DeltaSign = 1
			stats.Delta = "+" + charts.FormatAmount(res.Currency, delta)
		case delta < 0:
			stats.DeltaSign = -1
			stats.Delta = charts.FormatAmount(res.Currency, delta)
		default:
			stats.Delta = charts.FormatAmount(res.Currency, 0)
		}
	}
	view := newView(WidgetBillStats, period, res.Currency)
	view.Stats = stats
	return State{Phase: PhasePopulated, Period: period, View: view}
}

func (s *Service) buildTotalSpent(ctx context.Context, q upstream.Query, period string, filters Filters) State {
	var res upstream.SpendResult
	err := s.cached(ctx, q, WidgetTotalSpent, period, filters, &res, func(ctx context.Context) (interface{}, error) {
		return s.api.Spend(ctx, q, period)
	})
	if err != nil {
		return errorState(WidgetTotalSpent, period, err)
	}
	if !hasPositiveSpend(res.Data) {
		probe := func(ctx context.Context, p string) (bool, error) {
			r, err := s.api.Spend(ctx, q, p)
			if err != nil {
				return false, err
			}
			return hasPositiveSpend(r.Data), nil
		}
		if s.prober.HasAnyData(ctx, WidgetTotalSpent, otherPeriods(WidgetTotalSpent, period), probe) {
			return emptyState(WidgetTotalSpent, period, true)
		}
		return emptyState(WidgetTotalSpent, period, false)
	}

	values := make([]float64, len(res.Data))
	labels := make([]string, len(res.Data))
	for i, pt := range res.Data {
		values[i] = pt.TotalSpent
		labels[i] = pt.Period
	}
	view := newView(WidgetTotalSpent, period, res.Currency)
	svgMarkup, err := chartsvg.Bars(chartsvg.DefaultWidth, chartsvg.DefaultHeight, values, labels, chartsvg.BarOpts{
		Title:    view.Title,
		DataAttr: "data-date",
	})
	if err != nil {
		return errorState(WidgetTotalSpent, period, err)
	}
	view.SVG = svgMarkup
	return State{Phase: PhasePopulated, Period: period, View: view}
}

func (s *Service) buildByCategory(ctx context.Context, q upstream.Query, period string, filters Filters) State {
	var res upstream.CategoryResult
	err := s.cached(ctx, q, WidgetByCategory, period, filters, &res, func(ctx context.Context) (interface{}, error) {
		return s.api.ExpensesByCategory(ctx, q, period)
	})
	if err != nil {
		return errorState(WidgetByCategory, period, err)
	}
	if len(res.Categories) == 0 {
		return emptyState(WidgetByCategory, period, res.HasData)
	}

	var total float64
	slices := make([]chartsvg.Slice, len(res.Categories))
	colors := make(map[string]string, len(res.Categories))
	for i, c := range res.Categories {
		total += c.Total
		slices[i] = chartsvg.Slice{Label: c.Category, Value: c.Total}
		colors[c.Category] = charts.CategoryColor(c.Category)
	}
	view := newView(WidgetByCategory, period, res.Currency)
	svgMarkup, err := chartsvg.Donut(chartsvg.DefaultHeight, chartsvg.DefaultHeight, slices, chartsvg.DonutOpts{
		Title:       view.Title,
		CenterLabel: charts.FormatAmount(res.Currency, total),
		Colors:      colors,
		DataAttr:    "data-category",
	})
	if err != nil {
		return errorState(WidgetByCategory, period, err)
	}
	view.SVG = svgMarkup
	for _, c := range res.Categories {
		var pct float64
		if total > 0 {
			pct = c.Total / total * 100
		}
		view.Legend = append(view.Legend, LegendEntry{
			Label:   c.Category,
			Color:   colors[c.Category],
			Amount:  charts.FormatAmount(res.Currency, c.Total),
			Percent: pct,
		})
	}
	return State{Phase: PhasePopulated, Period: period, View: view}
}

func (s *Service) buildTopProducts(ctx context.Context, q upstream.Query, period string, filters Filters) State {
	var res upstream.ProductsResult
	err := s.cached(ctx, q, WidgetTopProducts, period, filters, &res, func(ctx context.Context) (interface{}, error) {
		return s.api.TopProducts(ctx, q, period, s.topLimit)
	})
	if err != nil {
		return errorState(WidgetTopProducts, period, err)
	}
	if len(res.Products) == 0 {
		return emptyState(WidgetTopProducts, period, res.HasData)
	}
	view := newView(WidgetTopProducts, period, res.Currency)
	for i, p := range res.Products {
		view.Rows = append(view.Rows, ProductRow{
			Rank:     i + 1,
			Name:     p.Name,
			Category: p.Category,
			Color:    charts.CategoryColor(p.Category),
			Count:    p.Count,
			Percent:  p.Percentage,
		})
	}
	return State{Phase: PhasePopulated, Period: period, View: view}
}

func (s *Service) buildMostExpensive(ctx context.Context, q upstream.Query, period string, filters Filters) State {
	var res upstream.ProductsResult
	err := s.cached(ctx, q, WidgetMostExpensive, period, filters, &res, func(ctx context.Context) (interface{}, error) {
		return s.api.MostExpensiveProducts(ctx, q, period, s.topLimit)
	})
	if err != nil {
		return errorState(WidgetMostExpensive, period, err)
	}
	if len(res.Products) == 0 {
		return emptyState(WidgetMostExpensive, period, res.HasData)
	}
	view := newView(WidgetMostExpensive, period, res.Currency)
	for i, p := range res.Products {
		view.Rows = append(view.Rows, ProductRow{
			Rank:     i + 1,
			Name:     p.Name,
			Category: p.Category,
			Color:    charts.CategoryColor(p.Category),
			Amount:   charts.FormatAmount(res.Currency, p.Price),
		})
	}
	return State{Phase: PhasePopulated, Period: period, View: view}
}

func (s *Service) buildShoppingDays(ctx context.Context, q upstream.Query, period string, filters Filters) State {
	var res upstream.ShoppingDaysResult
	err := s.cached(ctx, q, WidgetShoppingDays, period, filters, &res, func(ctx context.Context) (interface{}, error) {
		return s.api.ShoppingDays(ctx, q, period)
	})
	if err != nil {
		return errorState(WidgetShoppingDays, period, err)
	}
	if allZeroDays(res.Data) {
		return emptyState(WidgetShoppingDays, period, res.HasData)
	}
	values := make([]float64, len(res.Data))
	labels := make([]string, len(res.Data))
	for i, d := range res.Data {
		values[i] = float64(d.Count)
		labels[i] = d.Day
	}
	view := newView(WidgetShoppingDays, period, res.Currency)
	svgMarkup, err := chartsvg.Bars(chartsvg.DefaultWidth, chartsvg.DefaultHeight, values, labels, chartsvg.BarOpts{
		Title: view.Title,
	})
	if err != nil {
		return errorState(WidgetShoppingDays, period, err)
	}
	view.SVG = svgMarkup
	return State{Phase: PhasePopulated, Period: period, View: view}
}

// dietSeries pins the render order of the six tracked food groups.
var dietSeries = []struct {
	label string
	value func(upstream.DietSample) float64
}{
	{"fruits", func(s upstream.DietSample) float64 { return s.FruitsPercent }},
	{"vegetables", func(s upstream.DietSample) float64 { return s.VegetablesPercent }},
	{"meat", func(s upstream.DietSample) float64 { return s.MeatPercent }},
	{"seafood", func(s upstream.DietSample) float64 { return s.SeafoodPercent }},
	{"snacks", func(s upstream.DietSample) float64 { return s.SnacksPercent }},
	{"dairy", func(s upstream.DietSample) float64 { return s.DairyPercent }},
}

func (s *Service) buildDiet(ctx context.Context, q upstream.Query, period string, filters Filters) State {
	var res upstream.DietResult
	err := s.cached(ctx, q, WidgetDiet, period, filters, &res, func(ctx context.Context) (interface{}, error) {
		return s.api.DietComposition(ctx, q, period)
	})
	if err != nil {
		return errorState(WidgetDiet, period, err)
	}
	samples := chartableDietSamples(res.Data)
	if len(samples) == 0 {
		probe := func(ctx context.Context, p string) (bool, error) {
			r, err := s.api.DietComposition(ctx, q, p)
			if err != nil {
				return false, err
			}
			return len(chartableDietSamples(r.Data)) > 0, nil
		}
		if s.prober.HasAnyData(ctx, WidgetDiet, otherPeriods(WidgetDiet, period), probe) {
			return emptyState(WidgetDiet, period, true)
		}
		return emptyState(WidgetDiet, period, false)
	}

	labels := make([]string, len(samples))
	for i, sample := range samples {
		labels[i] = sample.Period
	}
	series := make([]chartsvg.MultiLineSeries, 0, len(dietSeries))
	view := newView(WidgetDiet, period, res.Currency)
	for _, def := range dietSeries {
		values := make([]float64, len(samples))
		for i, sample := range samples {
			values[i] = def.value(sample)
		}
		color := charts.CategoryColor(def.label)
		series = append(series, chartsvg.MultiLineSeries{Name: def.label, Color: color, Values: values})
		view.Legend = append(view.Legend, LegendEntry{Label: def.label, Color: color})
	}
	svgMarkup, err := chartsvg.SmoothedLines(chartsvg.DefaultWidth, chartsvg.DefaultHeight, labels, series, chartsvg.LineOpts{
		Title:    view.Title,
		ShowDots: len(samples) == 1,
	})
	if err != nil {
		return errorState(WidgetDiet, period, err)
	}
	view.SVG = svgMarkup
	return State{Phase: PhasePopulated, Period: period, View: view}
}

func hasPositiveSpend(points []upstream.SpendPoint) bool {
	for _, p := range points {
		if p.TotalSpent > 0 {
			return true
		}
	}
	return false
}

func allZeroDays(days []upstream.ShoppingDayCount) bool {
	for _, d := range days {
		if d.Count > 0 {
			return false
		}
	}
	return true
}

// chartableDietSamples drops samples with no recorded spend; they carry no
// composition signal and would flatten the lines to zero.
func chartableDietSamples(samples []upstream.DietSample) []upstream.DietSample {
	out := make([]upstream.DietSample, 0, len(samples))
	for _, s := range samples {
		if s.TotalSpent > 0 {
			out = append(out, s)
		}
	}
	return out
}

func roundTrip(value interface{}, dest interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("dashboard: encode payload: %w", err)
	}
	return json.Unmarshal(raw, dest)
}
