package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/africanut/holding-admin/cmd/holding/cli"
	"github.com/africanut/holding-admin/internal/app"
	"github.com/africanut/holding-admin/internal/auth"
	"github.com/africanut/holding-admin/internal/backend"
	"github.com/africanut/holding-admin/internal/hr"
	"github.com/africanut/holding-admin/internal/ledger"
	"github.com/africanut/holding-admin/internal/observability"
	"github.com/africanut/holding-admin/internal/platform/kv"
	"github.com/africanut/holding-admin/internal/session"
	"github.com/africanut/holding-admin/internal/shop"
	"github.com/africanut/holding-admin/jobs"
)

const usage = `usage:
  holding                                  run the gateway
  holding jobs trigger [-company slug]     enqueue a ledger integrity check
  holding jobs stats                       print queue statistics
  holding ledger export [flags]            write entries as csv or json
  holding ledger check [flags]             print totals, exit 10 when unbalanced`

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

	args := os.Args[1:]
	if len(args) == 0 || args[0] == "serve" {
		if err := serve(ctx, cfg, logger); err != nil {
			logger.Error("gateway", slog.Any("error", err))
			os.Exit(1)
		}
		return
	}
	os.Exit(runCommand(ctx, cfg, logger, args))
}

func serve(ctx context.Context, cfg *app.Config, logger *slog.Logger) error {
	redisClient, err := kv.New(ctx, cfg.RedisAddr)
	if err != nil {
		return err
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	holder := session.NewHolder(session.NewRedisStore(kv.NewStore(redisClient, cfg.SessionKey)), logger)
	client := backend.NewClient(cfg.BackendURL, cfg.BackendTimeout, holder, logger)
	authService := auth.NewService(client, holder, logger)
	if user, ok, err := authService.Restore(ctx); err != nil {
		logger.Warn("restore backend session", slog.Any("error", err))
	} else if ok {
		logger.Info("backend session restored", slog.String("email", user.Email))
	}
	guard := auth.RequireSession(holder)

	metrics := observability.NewMetrics()

	ledgerService := ledger.NewService(client, logger, metrics)
	drafts := shop.NewRedisDrafts(kv.NewStore(redisClient, "holding:drafts"), cfg.DraftTTL)
	shopService := shop.NewService(client, drafts, holder, shop.Config{
		CompanyID:      cfg.StoreCompanyID,
		WhatsAppNumber: cfg.StoreWhatsAppNumber,
	}, logger)

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsClient := jobs.NewClient(redisOpts)
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:        logger,
		Config:        cfg,
		Session:       holder,
		AuthHandler:   auth.NewHandler(logger, authService),
		LedgerHandler: ledger.NewHandler(logger, ledgerService, guard),
		ShopHandler:   shop.NewHandler(logger, shopService, guard),
		HRHandler:     hr.NewHandler(logger, hr.NewService(client, logger), guard),
		JobsHandler:   jobs.NewHandler(inspector, jobsClient, guard, logger),
		Metrics:       metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("backend", cfg.BackendURL))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func runCommand(ctx context.Context, cfg *app.Config, logger *slog.Logger, args []string) int {
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		return 2
	}
	switch args[0] {
	case "jobs":
		return runJobs(ctx, cfg, args[1], args[2:])
	case "ledger":
		return runLedger(ctx, cfg, logger, args[1], args[2:])
	default:
		fmt.Fprintln(os.Stderr, usage)
		return 2
	}
}

func runJobs(ctx context.Context, cfg *app.Config, sub string, args []string) int {
	fs := flag.NewFlagSet("jobs "+sub, flag.ContinueOnError)
	company := fs.String("company", "", "company slug, empty for all companies")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	jobsCLI := cli.NewJobsCLI(cfg.RedisAddr)
	defer jobsCLI.Close()

	switch sub {
	case "trigger":
		info, err := jobsCLI.Trigger(ctx, jobs.TaskLedgerIntegrity, *company)
		if err != nil {
			fmt.Fprintf(os.Stderr, "jobs trigger: %v\n", err)
			return 1
		}
		fmt.Printf("enqueued %s id=%s queue=%s\n", info.Type, info.ID, info.Queue)
	case "stats":
		stats, err := jobsCLI.InspectQueue(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "jobs stats: %v\n", err)
			return 1
		}
		fmt.Printf("queue=%s pending=%d active=%d scheduled=%d retry=%d archived=%d\n",
			stats.Queue, stats.Pending, stats.Active, stats.Scheduled, stats.Retry, stats.Archived)
		archived, err := jobsCLI.ListArchived(ctx, 10)
		if err != nil {
			fmt.Fprintf(os.Stderr, "jobs stats: %v\n", err)
			return 1
		}
		for _, task := range archived {
			fmt.Printf("archived %s id=%s error=%q\n", task.Type, task.ID, task.LastErr)
		}
	default:
		fmt.Fprintln(os.Stderr, usage)
		return 2
	}
	return 0
}

func runLedger(ctx context.Context, cfg *app.Config, logger *slog.Logger, sub string, args []string) int {
	fs := flag.NewFlagSet("ledger "+sub, flag.ContinueOnError)
	opts := cli.LedgerOptions{}
	fs.StringVar(&opts.Company, "company", "", "company slug")
	fs.StringVar(&opts.From, "from", "", "first day, YYYY-MM-DD")
	fs.StringVar(&opts.To, "to", "", "last day, YYYY-MM-DD")
	fs.StringVar(&opts.Format, "format", ledger.FormatCSV, "csv or json")
	fs.BoolVar(&opts.JSONOutput, "json", false, "print the check summary as json")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	redisClient, err := kv.New(ctx, cfg.RedisAddr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ledger %s: %v\n", sub, err)
		return 1
	}
	defer redisClient.Close()

	holder := session.NewHolder(session.NewRedisStore(kv.NewStore(redisClient, cfg.SessionKey)), logger)
	client := backend.NewClient(cfg.BackendURL, cfg.BackendTimeout, holder, logger)
	ledgerCLI, err := cli.NewLedgerOpsCLI(
		ledger.NewService(client, logger, nil),
		auth.NewService(client, holder, logger),
		cfg.WorkerEmail, cfg.WorkerPassword,
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ledger %s: %v\n", sub, err)
		return 1
	}

	switch sub {
	case "export":
		return ledgerCLI.ExportCommand(ctx, opts)
	case "check":
		return ledgerCLI.CheckCommand(ctx, opts)
	default:
		fmt.Fprintln(os.Stderr, usage)
		return 2
	}
}
