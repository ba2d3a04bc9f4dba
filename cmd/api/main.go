package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"repaircrm_backend/internal/activity"
	"repaircrm_backend/internal/adapters"
	"repaircrm_backend/internal/customers"
	"repaircrm_backend/internal/email"
	"repaircrm_backend/internal/events"
	apphttp "repaircrm_backend/internal/http"
	"repaircrm_backend/internal/http/router"
	"repaircrm_backend/internal/leads"
	leadsvc "repaircrm_backend/internal/leads/service"
	"repaircrm_backend/internal/notification"
	"repaircrm_backend/internal/opportunities"
	"repaircrm_backend/internal/scheduler"
	"repaircrm_backend/internal/vocabulary"
	"repaircrm_backend/platform/config"
	"repaircrm_backend/platform/db"
	"repaircrm_backend/platform/logger"
	"repaircrm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, "migrations")
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

	vocab, err := vocabulary.Load(cfg.VocabularyPath)
	if err != nil {
		log.Error("failed to load intake vocabulary", "error", err)
		panic("failed to load intake vocabulary: " + err.Error())
	}

	followUpScheduler, closeScheduler := initFollowUpScheduler(cfg, log)
	if closeScheduler != nil {
		defer closeScheduler()
	}

	redisClient := initRedis(cfg, log)
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Assign the concrete sender only when it exists: a typed-nil *email.Sender
	// in the interface would pass the module's nil check.
	var sender notification.EmailSender
	if s := email.NewSender(cfg); s != nil {
		sender = s
	} else {
		log.Warn("email delivery disabled; follow-up reminders stay in-app only")
	}

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	activitySvc := activity.NewService(activity.NewRepository(pool), log)
	activityModule := activity.NewModule(activitySvc)

	leadsModule := leads.NewModule(pool, eventBus, val, cfg, log, vocab, activitySvc, followUpScheduler)
	customersModule := customers.NewModule(pool, eventBus, activitySvc, log)

	// Break the leads ↔ customers cycle with adapters.
	customersModule.Service().SetLeadReader(adapters.NewCustomerLeadReader(leadsModule.Repository()))
	leadsModule.SetConverter(adapters.NewLeadConverter(customersModule.Service()))

	opportunitiesModule := opportunities.NewModule(leadsModule.Repository(), redisClient, cfg, eventBus, log)

	notificationModule := notification.NewModule(leadsModule.Repository().CountActionable, sender, cfg, log)
	notificationModule.RegisterHandlers(eventBus)
	defer notificationModule.Close()

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			leadsModule,
			customersModule,
			opportunitiesModule,
			notificationModule,
			activityModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func initFollowUpScheduler(cfg config.SchedulerConfig, log *logger.Logger) (leadsvc.FollowUpScheduler, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; follow-up reminders disabled")
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize follow-up scheduler client", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
	}
}

func initRedis(cfg config.CacheConfig, log *logger.Logger) *redis.Client {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; stats cache disabled")
		return nil
	}

	opt, err := redis.ParseURL(cfg.GetRedisURL())
	if err != nil {
		log.Error("invalid REDIS_URL; stats cache disabled", "error", err)
		return nil
	}
	return redis.NewClient(opt)
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

	return errors.New(name + ": " + lastErr.Error())
}
