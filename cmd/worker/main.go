package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/receiptly/dashboard/internal/app"
	"github.com/receiptly/dashboard/internal/dashboard"
	"github.com/receiptly/dashboard/internal/export"
	jobmetrics "github.com/receiptly/dashboard/internal/jobs"
	"github.com/receiptly/dashboard/internal/observability"
	"github.com/receiptly/dashboard/internal/platform/cache"
	"github.com/receiptly/dashboard/internal/upstream"
	"github.com/receiptly/dashboard/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	jobMetrics := jobmetrics.NewMetrics(metrics.Registerer())

	tokens := upstream.StaticTokenSource(cfg.APIToken)
	apiClient := upstream.NewClient(cfg.APIBaseURL, tokens, logger,
		upstream.WithRetryHook(metrics.ObserveUpstreamRetry),
	)

	widgetCache := dashboard.NewCache(redisClient, cfg.CacheTTL)
	orders := dashboard.NewOrderStore(apiClient, redisClient, logger, cfg.OrderSettleDelay)
	service := dashboard.NewService(apiClient, widgetCache, orders, logger, cfg.TopProductsLimit)
	defer service.Close()

	plan := dashboard.Plan(cfg.APIPlan)
	exporter := export.NewExporter(apiClient, logger, cfg.ExportDir, cfg.TopProductsLimit)
	exporter.OnResult(metrics.ObserveExport)

	warmupJob := jobs.NewWarmupJob(service, tokens, logger, jobMetrics)
	exportJob := jobs.NewPDFExportJob(exporter, tokens, plan, logger, jobMetrics)

	warmupTask, err := jobs.NewWarmupTask(jobs.WarmupPayload{})
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}
	exportTask, err := jobs.NewExportTask(jobs.ExportPayload{})
	if err != nil {
		logger.Error("build export task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskDashboardWarmup, Handler: warmupJob.Handle},
			{Type: jobs.TaskPDFExport, Handler: exportJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "15 1 * * *", Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "0 6 * * 1", Task: exportTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", metrics.Handler())
	metricsSrv := &http.Server{Addr: cfg.WorkerMetricsAddr, Handler: metricsMux}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server", slog.Any("error", err))
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsSrv.Shutdown(shutdownCtx)
	}()

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
