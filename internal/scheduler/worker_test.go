package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	intakeservice "leadintake_backend/internal/intake/service"
	"leadintake_backend/platform/logger"

	"github.com/hibiken/asynq"
)

type fakeDrainer struct {
	mu        sync.Mutex
	calls     int
	res       intakeservice.DrainResult
	err       error
	firstCall chan struct{}
}

func (d *fakeDrainer) DrainWaitingQueue(ctx context.Context) (intakeservice.DrainResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	if d.calls == 1 && d.firstCall != nil {
		close(d.firstCall)
	}
	return d.res, d.err
}

func (d *fakeDrainer) callCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

func drainTask(t *testing.T, reason string) *asynq.Task {
	t.Helper()
	task, err := NewQueueDrainTask(QueueDrainPayload{Reason: reason})
	if err != nil {
		t.Fatalf("NewQueueDrainTask: %v", err)
	}
	return task
}

func TestHandleQueueDrainRunsDrainer(t *testing.T) {
	dr := &fakeDrainer{res: intakeservice.DrainResult{Assigned: 2, Dropped: 1}}
	w := &Worker{drainer: dr, log: logger.New("development")}

	if err := w.handleQueueDrain(context.Background(), drainTask(t, "agent_available")); err != nil {
		t.Fatalf("handleQueueDrain: %v", err)
	}
	if dr.callCount() != 1 {
		t.Fatalf("expected one drain call, got %d", dr.callCount())
	}
}

func TestHandleQueueDrainPropagatesDrainError(t *testing.T) {
	drainErr := errors.New("database unavailable")
	dr := &fakeDrainer{err: drainErr}
	w := &Worker{drainer: dr, log: logger.New("development")}

	err := w.handleQueueDrain(context.Background(), drainTask(t, "sweep"))
	if !errors.Is(err, drainErr) {
		t.Fatalf("expected drain error to surface so asynq retries, got %v", err)
	}
}

func TestHandleQueueDrainRejectsMalformedPayload(t *testing.T) {
	dr := &fakeDrainer{}
	w := &Worker{drainer: dr, log: logger.New("development")}

	task := asynq.NewTask(TaskQueueDrain, []byte("{"))
	if err := w.handleQueueDrain(context.Background(), task); err == nil {
		t.Fatal("expected an error for a malformed payload")
	}
	if dr.callCount() != 0 {
		t.Fatal("drainer should not run for a malformed payload")
	}
}

func TestDrainSweepRunsImmediately(t *testing.T) {
	dr := &fakeDrainer{firstCall: make(chan struct{})}
	sweep := NewDrainSweep(dr, logger.New("development"), time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sweep.Run(ctx)

	select {
	case <-dr.firstCall:
	case <-time.After(2 * time.Second):
		t.Fatal("expected the sweep to drain once at startup")
	}
}
