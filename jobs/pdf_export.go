package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/receiptly/dashboard/internal/dashboard"
	"github.com/receiptly/dashboard/internal/export"
	jobmetrics "github.com/receiptly/dashboard/internal/jobs"
	"github.com/receiptly/dashboard/internal/upstream"
)

// PDFExportJob renders the scheduled analytics PDF in the background.
type PDFExportJob struct {
	Exporter *export.Exporter
	Tokens   upstream.TokenSource
	Plan     dashboard.Plan
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
}

// NewPDFExportJob wires dependencies for the export handler.
func NewPDFExportJob(exporter *export.Exporter, tokens upstream.TokenSource, plan dashboard.Plan, logger *slog.Logger, metrics *jobmetrics.Metrics) *PDFExportJob {
	return &PDFExportJob{Exporter: exporter, Tokens: tokens, Plan: plan, Logger: logger, Metrics: metrics}
}

// Handle processes scheduled export tasks.
func (j *PDFExportJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Exporter == nil {
		return errors.New("pdf export: handler not configured")
	}
	var payload ExportPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	plan := j.Plan
	if payload.Plan != "" {
		plan = dashboard.Plan(payload.Plan)
	}

	tracker := j.metrics().Track(TaskPDFExport)
	defer func() {
		err = tracker.End(err)
	}()

	q, err := j.identity(ctx)
	if err != nil {
		return err
	}

	path, err := j.Exporter.Run(ctx, q, plan)
	if err != nil {
		j.logger().Error("scheduled export failed", slog.Any("error", err))
		return err
	}
	j.logger().Info("scheduled export finished", slog.String("file", path))
	return nil
}

func (j *PDFExportJob) identity(ctx context.Context) (upstream.Query, error) {
	raw, err := j.Tokens.Token(ctx)
	if err != nil {
		return upstream.Query{}, err
	}
	userID, err := upstream.UserIDFromToken(raw)
	if err != nil {
		return upstream.Query{}, nil
	}
	return upstream.Query{UserID: userID}, nil
}

func (j *PDFExportJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskPDFExport))
	}
	return slog.Default().With(slog.String("job", TaskPDFExport))
}

func (j *PDFExportJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
