package scheduler

import (
	"context"
	"fmt"

	intakeservice "leadintake_backend/internal/intake/service"
	"leadintake_backend/platform/config"
	"leadintake_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// QueueDrainer reprocesses waiting leads. Satisfied by the intake service.
type QueueDrainer interface {
	DrainWaitingQueue(ctx context.Context) (intakeservice.DrainResult, error)
}

type Worker struct {
	server  *asynq.Server
	mux     *asynq.ServeMux
	drainer QueueDrainer
	log     *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, drainer QueueDrainer, log *logger.Logger) (*Worker, error) {
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
		server:  server,
		mux:     mux,
		drainer: drainer,
		log:     log,
	}

	mux.HandleFunc(TaskQueueDrain, w.handleQueueDrain)

	return w, nil
}

func (w *Worker) handleQueueDrain(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseQueueDrainPayload(task)
	if err != nil {
		return err
	}

	if w.drainer == nil {
		return nil
	}

	res, err := w.drainer.DrainWaitingQueue(ctx)
	if err != nil {
		w.log.Error("queue drain task failed", "reason", payload.Reason, "error", err)
		return err
	}

	w.log.Info("queue drain task finished",
		"reason", payload.Reason,
		"assigned", res.Assigned,
		"updated", res.Updated,
		"dropped", res.Dropped,
		"requeued", res.Requeued)

	return nil
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
