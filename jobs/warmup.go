package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/receiptly/dashboard/internal/dashboard"
	jobmetrics "github.com/receiptly/dashboard/internal/jobs"
	"github.com/receiptly/dashboard/internal/upstream"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// WarmupJob pre-populates widget caches so the first dashboard paint after
// a refresh or edit hits Redis instead of the upstream API.
type WarmupJob struct {
	Service *dashboard.Service
	Tokens  upstream.TokenSource
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewWarmupJob wires dependencies for the warmup handler.
func NewWarmupJob(service *dashboard.Service, tokens upstream.TokenSource, logger *slog.Logger, metrics *jobmetrics.Metrics) *WarmupJob {
	return &WarmupJob{
		Service: service,
		Tokens:  tokens,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes dashboard warmup tasks.
func (j *WarmupJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Service == nil {
		return errors.New("warmup: handler not configured")
	}
	var payload WarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskDashboardWarmup)
	defer func() {
		err = tracker.End(err)
	}()

	widgets := dashboard.DefaultOrder()
	if len(payload.Widgets) > 0 {
		widgets = widgets[:0]
		for _, id := range payload.Widgets {
			if dashboard.KnownWidget(dashboard.WidgetID(id)) {
				widgets = append(widgets, dashboard.WidgetID(id))
			}
		}
	}

	q, err := j.identity(ctx)
	if err != nil {
		j.logger().Error("resolve identity", slog.Any("error", err))
		return err
	}

	start := j.now()
	logger := j.logger()
	logger.Info("starting dashboard warmup", slog.Int("widgets", len(widgets)))

	warmed := 0
	for _, id := range widgets {
		for _, period := range dashboard.Periods(id) {
			widgetCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
			state := j.Service.LoadWidget(widgetCtx, q, id, period, dashboard.Filters{})
			cancel()
			if state.Phase == dashboard.PhaseError {
				logger.Warn("warmup widget errored",
					slog.String("widget", string(id)),
					slog.String("period", period),
					slog.String("message", state.Message))
				continue
			}
			warmed++
		}
	}

	logger.Info("completed dashboard warmup",
		slog.Int("warmed", warmed),
		slog.Duration("duration", time.Since(start)))
	return nil
}

func (j *WarmupJob) identity(ctx context.Context) (upstream.Query, error) {
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

func (j *WarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskDashboardWarmup))
	}
	return slog.Default().With(slog.String("job", TaskDashboardWarmup))
}

func (j *WarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *WarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
