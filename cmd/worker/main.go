package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leadportal_backend/internal/auth/adapter"
	authrepo "leadportal_backend/internal/auth/repository"
	"leadportal_backend/internal/email"
	"leadportal_backend/internal/events"
	identityrepo "leadportal_backend/internal/identity/repository"
	identityservice "leadportal_backend/internal/identity/service"
	"leadportal_backend/internal/notification"
	"leadportal_backend/internal/scheduler"
	"leadportal_backend/platform/config"
	"leadportal_backend/platform/db"
	"leadportal_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// The worker consumes scheduled follow-up reminder tasks, republishes
// them as domain events and lets the notification module deliver them.
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
	for attempt := 1; attempt <= 5; attempt++ {
		pool, err = db.NewPool(ctx, cfg)
		if err == nil {
			break
		}
		log.Warn("database connection failed", "attempt", attempt, "error", err)
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Duration(attempt*attempt) * 2 * time.Second):
		}
	}
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	eventBus := events.NewInMemoryBus(log)

	var sender email.Sender = email.NoopSender{}
	if cfg.GetEmailEnabled() {
		sender = email.NewSMTPSender(cfg)
	}

	identitySvc := identityservice.New(identityrepo.New(pool), cfg, eventBus)
	actorProvider := adapter.NewActorProvider(authrepo.New(pool), identitySvc)

	notificationModule := notification.New(sender, actorProvider, log)
	notificationModule.RegisterHandlers(eventBus)

	worker, err := scheduler.NewWorker(cfg, pool, eventBus, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
}
