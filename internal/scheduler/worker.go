package scheduler

import (
	"context"
	"errors"
	"fmt"

	"leadportal_backend/internal/events"
	"leadportal_backend/internal/leads/repository"
	"leadportal_backend/platform/config"
	"leadportal_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Worker consumes scheduled tasks and turns them into domain events.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	repo   *repository.Repository
	bus    events.Bus
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, pool *pgxpool.Pool, bus events.Bus, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		repo:   repository.New(pool),
		bus:    bus,
		log:    log,
	}

	mux.HandleFunc(TaskFollowUpReminder, w.handleFollowUpReminder)

	return w, nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

// handleFollowUpReminder fires the reminder only when the lead still
// exists and its follow-up date matches the one the task was scheduled
// for. Stale tasks from rescheduled or cleared follow-ups are dropped.
func (w *Worker) handleFollowUpReminder(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseFollowUpReminderPayload(task)
	if err != nil {
		return err
	}

	leadKey, err := uuid.Parse(payload.LeadKey)
	if err != nil {
		return err
	}

	lead, err := w.repo.GetByID(ctx, leadKey)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if lead.FollowUpDate == nil || !lead.FollowUpDate.UTC().Equal(payload.FollowUpDate) {
		return nil
	}

	if w.bus == nil {
		return nil
	}

	w.bus.Publish(ctx, events.FollowUpDue{
		BaseEvent:      events.NewBaseEvent(),
		LeadKey:        lead.ID,
		LeadID:         lead.LeadID,
		LeadName:       lead.Name,
		OrganizationID: lead.OrganizationID,
		AssignedTo:     lead.AssignedTo,
		FollowUpDate:   *lead.FollowUpDate,
	})

	return nil
}
