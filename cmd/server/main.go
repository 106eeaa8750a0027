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

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	pauseconfig "flowguard/internal/pause/config"
	"flowguard/internal/pause/handler"
	pausemetrics "flowguard/internal/pause/metrics"
	"flowguard/internal/pause/notify"
	"flowguard/internal/pause/ports"
	"flowguard/internal/pause/runner"
	"flowguard/internal/pause/service/engine"
	"flowguard/internal/pause/service/policyadmin"
	"flowguard/internal/pause/service/resolver"
	"flowguard/internal/pause/service/scheduler"
	ledgerstore "flowguard/internal/pause/store/ledger"
	policystore "flowguard/internal/pause/store/policy"
	timerstore "flowguard/internal/pause/store/timer"
	"flowguard/internal/platform/config"
	"flowguard/internal/platform/httpserver"
	"flowguard/internal/platform/logger"
	"flowguard/internal/platform/postgres"
	platformredis "flowguard/internal/platform/redis"
	httptransport "flowguard/internal/transport/http"
	"flowguard/pkg/platform/audit"
	auditmem "flowguard/pkg/platform/audit/store/memory"
	auditpg "flowguard/pkg/platform/audit/store/postgres"
)

// main wires dependencies and runs the HTTP server, the resumption
// scheduler, and the audit worker under one lifecycle. Business logic lives
// in the internal services.
func main() {
	// .env is a dev convenience; absence is not an error.
	_ = godotenv.Load()

	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.Postgres)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	pauseCfg := pauseconfig.DefaultConfig()

	// Stores: postgres/redis when configured, in-memory otherwise.
	var (
		policies ports.PolicyStore
		ledger   ports.Ledger
		auditDst audit.Store
	)
	if db != nil {
		policies = policystore.NewPostgres(db)
		ledger = ledgerstore.NewPostgres(db)
		auditDst = auditpg.New(db)
	} else {
		log.Warn("no postgres configured; using in-memory stores")
		policies = policystore.New()
		ledger = ledgerstore.New()
		auditDst = auditmem.NewInMemoryStore()
	}

	var timers ports.TimerStore
	if redisClient != nil {
		timers = timerstore.NewRedis(redisClient.Client)
	} else {
		log.Warn("no redis configured; resume timers will not survive restarts")
		timers = timerstore.New()
	}

	// Audit pipeline: non-blocking inbox, store append, optional Kafka fan-out.
	inbox := make(chan audit.Event, pauseCfg.AuditInboxSize)
	auditPublisher := audit.NewChannelPublisher(inbox)
	var sinks []audit.Sink
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaSink, err := audit.NewKafkaSink(ctx, cfg.Kafka.Brokers)
		if err != nil {
			return err
		}
		defer kafkaSink.Close()
		sinks = append(sinks, kafkaSink)
	}
	auditWorker := audit.NewWorker(auditDst, inbox, sinks...)

	metrics := pausemetrics.New()

	var notifier ports.Notifier
	if cfg.NotifierURL != "" {
		notifier = notify.WithFallback(notify.NewHTTP(cfg.NotifierURL), notify.NewLog(log), log)
	} else {
		notifier = notify.NewLog(log)
	}

	flowRunner := runner.New(cfg.RunnerURL)

	policyResolver, err := resolver.New(policies)
	if err != nil {
		return err
	}
	pauseEngine, err := engine.New(
		ledger, policyResolver, flowRunner, notifier, timers, pauseCfg.Engine,
		engine.WithLogger(log),
		engine.WithAuditPublisher(auditPublisher),
		engine.WithMetrics(metrics),
	)
	if err != nil {
		return err
	}
	policyAdmin, err := policyadmin.New(
		policies,
		policyadmin.WithLogger(log),
		policyadmin.WithAuditPublisher(auditPublisher),
	)
	if err != nil {
		return err
	}
	resumeScheduler, err := scheduler.New(
		timers, ledger, flowRunner, pauseCfg.Scheduler,
		scheduler.WithLogger(log),
		scheduler.WithAuditPublisher(auditPublisher),
		scheduler.WithMetrics(metrics),
	)
	if err != nil {
		return err
	}

	h := handler.New(pauseEngine, policyAdmin, log)
	router := httptransport.NewRouter(h, httptransport.Config{AdminJWTSecret: cfg.AdminJWTSecret}, log)
	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting flowguard", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return resumeScheduler.Run(gctx)
	})

	g.Go(func() error {
		return auditWorker.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
