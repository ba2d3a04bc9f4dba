package scheduler

import (
	"context"
	"errors"
	"fmt"

	"repaircrm_backend/internal/events"
	"repaircrm_backend/internal/leads/repository"
	"repaircrm_backend/platform/config"
	"repaircrm_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

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

	opt, err := redisClientOpt(redisURL)
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

	mux.HandleFunc(TaskLeadFollowUp, w.handleLeadFollowUp)

	return w, nil
}

// handleLeadFollowUp fires when a lead's follow-up window has elapsed. The
// task was scheduled at intake; most leads have been contacted by now, so the
// common path is a cheap read and a no-op. Only a lead still awaiting first
// contact produces a reminder event.
func (w *Worker) handleLeadFollowUp(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseLeadFollowUpPayload(task)
	if err != nil {
		return err
	}

	leadID, err := uuid.Parse(payload.LeadID)
	if err != nil {
		return err
	}

	lead, err := w.repo.GetByID(ctx, leadID)
	if errors.Is(err, repository.ErrNotFound) {
		// Deleted before the window elapsed; nothing to remind about.
		return nil
	}
	if err != nil {
		return err
	}

	if lead.FirstContactAt != nil {
		return nil
	}

	w.log.Info("lead uncontacted past follow-up window", "lead_id", lead.ID)
	return w.bus.PublishSync(ctx, events.LeadFollowUpDue{
		BaseEvent:     events.NewBaseEvent(),
		LeadID:        lead.ID,
		AssignedTo:    lead.AssignedTo,
		CustomerName:  lead.CustomerName,
		ContactNumber: lead.ContactNumber,
		DeviceType:    lead.DeviceType,
	})
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
