package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/angkor-trade/angkor-trade/internal/app"
	"github.com/angkor-trade/angkor-trade/internal/export"
	"github.com/angkor-trade/angkor-trade/internal/invoices"
	jobmetrics "github.com/angkor-trade/angkor-trade/internal/jobs"
	"github.com/angkor-trade/angkor-trade/internal/platform/cache"
	"github.com/angkor-trade/angkor-trade/internal/platform/db"
	"github.com/angkor-trade/angkor-trade/jobs"
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

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

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

	invoicesRepo := invoices.NewRepository(pool)
	invoicesService := invoices.NewService(invoicesRepo)

	gotenberg := export.NewGotenberg(cfg.GotenbergURL)
	docxExporter := export.NewDocxExporter(cfg.DocxTemplatePath)
	pdfExporter, err := export.NewPDFExporter(gotenberg)
	if err != nil {
		logger.Error("init pdf exporter", slog.Any("error", err))
		os.Exit(1)
	}
	artifactStore := export.NewArtifactStore(redisClient, cfg.ExportArtifactTTL)

	exportJob := jobs.NewExportInvoicesHandler(
		invoicesService, docxExporter, pdfExporter, artifactStore,
		jobmetrics.NewMetrics(nil), logger,
	)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:      logger,
		Concurrency: cfg.WorkerConcurrency,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeExportInvoices, Handler: exportJob.Handle},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
