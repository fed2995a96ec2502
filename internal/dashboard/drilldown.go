package dashboard

import (
	"context"

	"github.com/receiptly/dashboard/internal/charts"
	"github.com/receiptly/dashboard/internal/upstream"
)

// Drilldown is a transient overlay opened from a populated widget. It is
// never cached: the overlay is short-lived and always fetched fresh.
type Drilldown struct {
	Phase          Phase
	Title          string
	Message        string
	NoConnectivity bool
	Items          []DrilldownItem
	Receipts       []ReceiptSummary
}

// DrilldownItem is one grouped product row in a category drill-down.
type DrilldownItem struct {
	Name     string
	Quantity float64
	Price    string
	Total    string
}

// ReceiptSummary is one receipt row in a date drill-down. The row links to
// the receipt detail page.
type ReceiptSummary struct {
	ID        int64
	StoreName string
	Date      string
	Total     string
	ItemCount int
}

// LoadCategoryDrilldown fetches the grouped products behind one donut slice.
func (s *Service) LoadCategoryDrilldown(ctx context.Context, q upstream.Query, category, period string) Drilldown {
	res, err := s.api.ProductsByCategory(ctx, q, category, period)
	if err != nil {
		return drilldownError(category, err)
	}
	d := Drilldown{Title: category}
	if len(res.Items) == 0 {
		d.Phase = PhaseEmptyForPeriod
		if !res.HasData {
			d.Phase = PhaseEmptyNoData
		}
		return d
	}
	d.Phase = PhasePopulated
	for _, item := range res.Items {
		d.Items = append(d.Items, DrilldownItem{
			Name:     item.Name,
			Quantity: item.Quantity,
			Price:    charts.FormatAmount(res.Currency, item.Price),
			Total:    charts.FormatAmount(res.Currency, item.Total),
		})
	}
	return d
}

// LoadDateDrilldown fetches the receipts behind one bar of the spend chart.
func (s *Service) LoadDateDrilldown(ctx context.Context, q upstream.Query, date, interval string) Drilldown {
	res, err := s.api.ReceiptsByDate(ctx, q, date, interval)
	if err != nil {
		return drilldownError(date, err)
	}
	d := Drilldown{Title: date}
	if len(res.Receipts) == 0 {
		d.Phase = PhaseEmptyForPeriod
		return d
	}
	d.Phase = PhasePopulated
	for _, r := range res.Receipts {
		d.Receipts = append(d.Receipts, ReceiptSummary{
			ID:        r.ID,
			StoreName: r.StoreName,
			Date:      r.Date,
			Total:     charts.FormatAmount(r.Currency, r.Total),
			ItemCount: len(r.Items),
		})
	}
	return d
}

// IsPopulated reports renderable drill-down rows.
func (d Drilldown) IsPopulated() bool { return d.Phase == PhasePopulated }

// IsError reports a failed drill-down load.
func (d Drilldown) IsError() bool { return d.Phase == PhaseError }

func drilldownError(title string, err error) Drilldown {
	d := Drilldown{Phase: PhaseError, Title: title}
	d.Message, d.NoConnectivity = errorMessage(err)
	return d
}
