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
	dashhttp "github.com/receiptly/dashboard/internal/dashboard/http"
	"github.com/receiptly/dashboard/internal/export"
	"github.com/receiptly/dashboard/internal/observability"
	"github.com/receiptly/dashboard/internal/platform/cache"
	"github.com/receiptly/dashboard/internal/receipts"
	"github.com/receiptly/dashboard/internal/upstream"
	"github.com/receiptly/dashboard/internal/view"
	"github.com/receiptly/dashboard/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	metrics := observability.NewMetrics()

	tokens := upstream.StaticTokenSource(cfg.APIToken)
	apiClient := upstream.NewClient(cfg.APIBaseURL, tokens, logger,
		upstream.WithRetryHook(metrics.ObserveUpstreamRetry),
	)

	widgetCache := dashboard.NewCache(redisClient, cfg.CacheTTL)
	if err := widgetCache.ListenForInvalidation(ctx, ""); err != nil {
		logger.Warn("cache invalidation listener", slog.Any("error", err))
	}
	orders := dashboard.NewOrderStore(apiClient, redisClient, logger, cfg.OrderSettleDelay)
	service := dashboard.NewService(apiClient, widgetCache, orders, logger, cfg.TopProductsLimit)
	service.OnLoad(metrics.ObserveWidgetLoad)
	defer service.Close()
	defer orders.Flush(context.Background())

	plan := dashboard.Plan(cfg.APIPlan)
	exporter := export.NewExporter(apiClient, logger, cfg.ExportDir, cfg.TopProductsLimit)
	exporter.OnResult(metrics.ObserveExport)

	dashboardHandler := dashhttp.NewHandler(logger, service, exporter, templates, tokens, plan)
	receiptsHandler := receipts.NewHandler(logger, receipts.NewEditor(apiClient), widgetCache, templates)

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsClient, err := jobs.NewClient(redisOpts)
	if err != nil {
		logger.Error("init jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, jobsClient, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		DashboardHandler: dashboardHandler,
		ReceiptsHandler:  receiptsHandler,
		JobHandler:       jobHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
