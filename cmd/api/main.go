package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leadintake_backend/internal/adapters"
	"leadintake_backend/internal/agents"
	"leadintake_backend/internal/email"
	"leadintake_backend/internal/events"
	apphttp "leadintake_backend/internal/http"
	"leadintake_backend/internal/http/router"
	"leadintake_backend/internal/intake"
	"leadintake_backend/internal/intake/archive"
	"leadintake_backend/internal/notification"
	"leadintake_backend/internal/scheduler"
	"leadintake_backend/internal/sources"
	"leadintake_backend/platform/config"
	"leadintake_backend/platform/db"
	"leadintake_backend/platform/logger"
	"leadintake_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

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
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	drainScheduler, closeScheduler := initDrainScheduler(cfg, log)
	if closeScheduler != nil {
		defer closeScheduler()
	}

	sender, err := email.NewSender(cfg)
	if err != nil {
		log.Error("failed to initialize email sender", "error", err)
		panic("failed to initialize email sender: " + err.Error())
	}

	// Shared validator instance for dependency injection
	val := validator.New()

	archiver := initArchiver(ctx, cfg, log)

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	sourcesModule := sources.NewModule(pool, val, log)

	agentsModule, err := agents.NewModule(pool, eventBus, val, cfg, log)
	if err != nil {
		log.Error("failed to initialize agents module", "error", err)
		panic("failed to initialize agents module: " + err.Error())
	}

	// Notification module subscribes to domain events for email delivery
	notificationModule := notification.NewModule(pool, sender, agentsModule.Service(), log)
	notificationModule.RegisterHandlers(eventBus)

	// The intake module reaches agents and notifications through adapters
	// so the pipeline stays decoupled from both bounded contexts.
	agentDirectory := adapters.NewAgentDirectory(agentsModule.Service())
	intakeModule := intake.NewModule(pool, eventBus, val, agentDirectory, notificationModule.InApp(), archiver, log)

	// Agents coming back online trigger a waiting queue drain on the worker.
	if drainScheduler != nil {
		eventBus.Subscribe(events.AgentAvailable{}.EventName(), events.HandlerFunc(func(ctx context.Context, evt events.Event) error {
			if _, ok := evt.(events.AgentAvailable); !ok {
				return nil
			}
			return drainScheduler.ScheduleQueueDrain(ctx, scheduler.QueueDrainPayload{Reason: "agent_available"})
		}))
		log.Info("queue drain scheduling enabled")
	}

	forwarder := events.NewStreamForwarder(cfg, log)
	if forwarder != nil {
		forwarder.RegisterHandlers(eventBus)
		defer func() { _ = forwarder.Close() }()
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:     cfg,
		Logger:     log,
		Health:     db.NewPoolAdapter(pool),
		EventBus:   eventBus,
		IntakeAuth: sourcesModule.Middleware(),
		Modules: []apphttp.Module{
			sourcesModule,
			agentsModule,
			notificationModule,
			intakeModule,
		},
	}

	engine := router.New(app)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "error", err)
		}
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func initDrainScheduler(cfg config.SchedulerConfig, log *logger.Logger) (scheduler.DrainScheduler, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; queue drain scheduling disabled")
		return nil, nil
	}

	drainClient, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize queue drain scheduler", "error", err)
		return nil, nil
	}

	return drainClient, func() {
		_ = drainClient.Close()
	}
}

func initArchiver(ctx context.Context, cfg config.ArchiveConfig, log *logger.Logger) archive.Archiver {
	if !cfg.IsArchiveEnabled() {
		log.Info("raw submission archive disabled")
		return archive.NoopArchiver{}
	}

	arch, err := archive.NewMinIOArchiver(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize submission archive", "error", err)
		panic("failed to initialize submission archive: " + err.Error())
	}
	log.Info("raw submission archive enabled")

	return arch
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
