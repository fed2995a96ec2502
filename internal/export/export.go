// Package export assembles the full analytics document and hands it to the
// remote PDF renderer. Export breadth is gated by the account plan.
package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/receiptly/dashboard/internal/dashboard"
	"github.com/receiptly/dashboard/internal/upstream"
)

// chartIntervals maps export chart keys to the intervals included in the
// document. Keys follow the renderer's vocabulary.
var chartIntervals = map[string][]string{
	"bill_stats":     {"M", "All"},
	"total_spent":    {"daily", "weekly", "monthly"},
	"by_category":    {"week", "month", "all"},
	"top_products":   {"month", "year", "all"},
	"most_expensive": {"month", "year", "all"},
	"shopping_days":  {"month", "all"},
}

// Exporter collects analytics payloads and renders them to a PDF file.
type Exporter struct {
	api      *upstream.Client
	logger   *slog.Logger
	dir      string
	topLimit int
	now      func() time.Time
	onResult func(outcome string)
}

// NewExporter wires the exporter. dir is where finished PDFs land.
func NewExporter(api *upstream.Client, logger *slog.Logger, dir string, topLimit int) *Exporter {
	if topLimit <= 0 {
		topLimit = 5
	}
	return &Exporter{api: api, logger: logger, dir: dir, topLimit: topLimit, now: time.Now}
}

// OnResult registers a callback invoked with "success" or "failure" after
// every run, typically a metrics counter.
func (e *Exporter) OnResult(fn func(outcome string)) {
	e.onResult = fn
}

// Run gathers every chart the plan allows, posts the document to the
// renderer and writes the PDF to disk. Individual interval fetches failing
// become error entries inside the document rather than aborting the export;
// only the final render or write step fails the run.
func (e *Exporter) Run(ctx context.Context, q upstream.Query, plan dashboard.Plan) (string, error) {
	path, err := e.run(ctx, q, plan)
	if e.onResult != nil {
		if err != nil {
			e.onResult("failure")
		} else {
			e.onResult("success")
		}
	}
	return path, err
}

func (e *Exporter) run(ctx context.Context, q upstream.Query, plan dashboard.Plan) (string, error) {
	payload := upstream.ExportPayload{
		UserPlan:   string(plan),
		Data:       make(map[string]map[string]any),
		ExportDate: e.now().UTC().Format("2006-01-02"),
	}
	for _, chart := range plan.ExportCharts() {
		intervals, ok := chartIntervals[chart]
		if !ok {
			continue
		}
		entries := make(map[string]any, len(intervals))
		for _, interval := range intervals {
			value, err := e.fetchChart(ctx, q, chart, interval)
			if err != nil {
				e.logger.Warn("export chart fetch failed",
					slog.String("chart", chart),
					slog.String("interval", interval),
					slog.String("error", err.Error()))
				entries[interval] = map[string]any{"error": err.Error()}
				continue
			}
			entries[interval] = value
		}
		payload.Data[chart] = entries
	}

	pdf, err := e.api.ExportPDF(ctx, payload)
	if err != nil {
		return "", fmt.Errorf("export: render: %w", err)
	}
	if len(pdf) == 0 {
		return "", errors.New("export: renderer returned empty document")
	}

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("export: prepare dir: %w", err)
	}
	name := fmt.Sprintf("receipts-analytics-%s-%s.pdf", payload.ExportDate, uuid.NewString())
	path := filepath.Join(e.dir, name)
	if err := os.WriteFile(path, pdf, 0o644); err != nil {
		return "", fmt.Errorf("export: write pdf: %w", err)
	}
	return path, nil
}

func (e *Exporter) fetchChart(ctx context.Context, q upstream.Query, chart, interval string) (any, error) {
	switch chart {
	case "bill_stats":
		return e.api.BillStats(ctx, q, interval)
	case "total_spent":
		return e.api.Spend(ctx, q, interval)
	case "by_category":
		return e.api.ExpensesByCategory(ctx, q, interval)
	case "top_products":
		return e.api.TopProducts(ctx, q, interval, e.topLimit)
	case "most_expensive":
		return e.api.MostExpensiveProducts(ctx, q, interval, e.topLimit)
	case "shopping_days":
		return e.api.ShoppingDays(ctx, q, interval)
	default:
		return nil, fmt.Errorf("export: unknown chart %q", chart)
	}
}
