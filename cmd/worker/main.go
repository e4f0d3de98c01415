package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"

	"github.com/africanut/holding-admin/internal/app"
	"github.com/africanut/holding-admin/internal/auth"
	"github.com/africanut/holding-admin/internal/backend"
	jobmetrics "github.com/africanut/holding-admin/internal/jobs"
	"github.com/africanut/holding-admin/internal/ledger"
	"github.com/africanut/holding-admin/internal/observability"
	"github.com/africanut/holding-admin/internal/platform/kv"
	"github.com/africanut/holding-admin/internal/session"
	"github.com/africanut/holding-admin/jobs"
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

	logger := app.NewLogger(cfg).With(slog.String("process", "worker"))

	redisClient, err := kv.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	// The worker signs in with its own account and keeps its token apart
	// from the gateway's.
	holder := session.NewHolder(session.NewRedisStore(kv.NewStore(redisClient, cfg.SessionKey+":worker")), logger)
	client := backend.NewClient(cfg.BackendURL, cfg.BackendTimeout, holder, logger)
	authService := auth.NewService(client, holder, logger)

	metrics := observability.NewMetrics()
	jobMetrics := jobmetrics.NewMetrics(metrics.Registerer())
	ledgerService := ledger.NewService(client, logger, metrics)

	integrityJob := jobs.NewLedgerIntegrityJob(ledgerService, authService, jobs.Credentials{
		Email:    cfg.WorkerEmail,
		Password: cfg.WorkerPassword,
	}, logger, jobMetrics)

	companies := cfg.WorkerCompanies
	if len(companies) == 0 {
		companies = []string{""}
	}
	var cron []jobs.CronRegistration
	for _, company := range companies {
		task, err := jobs.NewLedgerIntegrityTask(company)
		if err != nil {
			logger.Error("build integrity task", slog.String("company", company), slog.Any("error", err))
			os.Exit(1)
		}
		cron = append(cron, jobs.CronRegistration{
			Spec:    cfg.WorkerIntegrityCron,
			Task:    task,
			Options: []asynq.Option{asynq.MaxRetry(3)},
		})
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:      logger,
		Concurrency: cfg.WorkerConcurrency,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskLedgerIntegrity, Handler: integrityJob.Handle},
		},
		Cron: cron,
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	metricsRouter := chi.NewRouter()
	metricsRouter.Method(http.MethodGet, "/metrics", metrics.Handler())
	metricsServer := &http.Server{Addr: cfg.WorkerMetricsAddr, Handler: metricsRouter, ReadTimeout: 5 * time.Second}
	go func() {
		logger.Info("starting metrics server", slog.String("addr", cfg.WorkerMetricsAddr))
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server", slog.Any("error", err))
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
