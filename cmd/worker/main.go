package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"leadintake_backend/internal/adapters"
	"leadintake_backend/internal/agents"
	"leadintake_backend/internal/email"
	"leadintake_backend/internal/events"
	"leadintake_backend/internal/intake"
	"leadintake_backend/internal/intake/archive"
	"leadintake_backend/internal/notification"
	"leadintake_backend/internal/scheduler"
	"leadintake_backend/platform/config"
	"leadintake_backend/platform/db"
	"leadintake_backend/platform/logger"
	"leadintake_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting worker", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	eventBus := events.NewInMemoryBus(log)

	sender, err := email.NewSender(cfg)
	if err != nil {
		log.Error("failed to initialize email sender", "error", err)
		panic("failed to initialize email sender: " + err.Error())
	}

	val := validator.New()

	// Drained leads run the same pipeline as fresh submissions, so the
	// worker wires the same modules the API does, minus HTTP handlers.
	agentsModule, err := agents.NewModule(pool, eventBus, val, cfg, log)
	if err != nil {
		log.Error("failed to initialize agents module", "error", err)
		panic("failed to initialize agents module: " + err.Error())
	}

	notificationModule := notification.NewModule(pool, sender, agentsModule.Service(), log)
	notificationModule.RegisterHandlers(eventBus)

	agentDirectory := adapters.NewAgentDirectory(agentsModule.Service())
	intakeModule := intake.NewModule(pool, eventBus, val, agentDirectory, notificationModule.InApp(), archive.NoopArchiver{}, log)

	forwarder := events.NewStreamForwarder(cfg, log)
	if forwarder != nil {
		forwarder.RegisterHandlers(eventBus)
		defer func() { _ = forwarder.Close() }()
	}

	drainer := intakeModule.Service()

	g, gctx := errgroup.WithContext(ctx)

	if cfg.GetRedisURL() != "" {
		worker, err := scheduler.NewWorker(cfg, drainer, log)
		if err != nil {
			log.Error("failed to initialize queue drain worker", "error", err)
			panic("failed to initialize queue drain worker: " + err.Error())
		}
		g.Go(func() error {
			worker.Run(gctx)
			return nil
		})
	} else {
		log.Warn("REDIS_URL not configured; running the periodic drain sweep only")
	}

	sweepInterval := getDurationEnv("QUEUE_DRAIN_SWEEP_INTERVAL", 5*time.Minute)
	sweep := scheduler.NewDrainSweep(drainer, log, sweepInterval)
	g.Go(func() error {
		sweep.Run(gctx)
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("worker stopped", "error", err)
	}
	log.Info("worker shut down")
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return fmt.Errorf("%s: %w", name, lastErr)
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}

	return parsed
}
