package scheduler

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
)

type testSchedulerConfig struct {
	redisURL string
	queue    string
}

func (c testSchedulerConfig) GetRedisURL() string       { return c.redisURL }
func (c testSchedulerConfig) GetRedisTLSInsecure() bool { return false }
func (c testSchedulerConfig) GetAsynqQueueName() string { return c.queue }
func (c testSchedulerConfig) GetAsynqConcurrency() int  { return 1 }

func TestNewClientRequiresRedisURL(t *testing.T) {
	if _, err := NewClient(testSchedulerConfig{}); err == nil {
		t.Fatal("expected an error when no redis url is configured")
	}
}

func TestScheduleQueueDrainEnqueuesTask(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(testSchedulerConfig{redisURL: "redis://" + mr.Addr(), queue: "intake"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer client.Close()

	if err := client.ScheduleQueueDrain(context.Background(), QueueDrainPayload{Reason: "agent_available"}); err != nil {
		t.Fatalf("ScheduleQueueDrain: %v", err)
	}

	insp := asynq.NewInspector(asynq.RedisClientOpt{Addr: mr.Addr()})
	defer insp.Close()

	tasks, err := insp.ListPendingTasks("intake")
	if err != nil {
		t.Fatalf("ListPendingTasks: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected 1 pending task, got %d", len(tasks))
	}
	if tasks[0].Type != TaskQueueDrain {
		t.Fatalf("expected task type %q, got %q", TaskQueueDrain, tasks[0].Type)
	}

	payload, err := ParseQueueDrainPayload(asynq.NewTask(tasks[0].Type, tasks[0].Payload))
	if err != nil {
		t.Fatalf("ParseQueueDrainPayload: %v", err)
	}
	if payload.Reason != "agent_available" {
		t.Fatalf("expected reason agent_available, got %q", payload.Reason)
	}
}

func TestScheduleQueueDrainOnNilClient(t *testing.T) {
	var client *Client
	if err := client.ScheduleQueueDrain(context.Background(), QueueDrainPayload{Reason: "manual"}); err != nil {
		t.Fatalf("nil client should be a no-op, got %v", err)
	}
}

func TestRedisClientOpt(t *testing.T) {
	t.Run("plain url", func(t *testing.T) {
		opt, err := redisClientOpt("redis://:secret@localhost:6379/2", false)
		if err != nil {
			t.Fatalf("redisClientOpt: %v", err)
		}
		if opt.Addr != "localhost:6379" {
			t.Errorf("expected addr localhost:6379, got %q", opt.Addr)
		}
		if opt.Password != "secret" {
			t.Errorf("expected password to carry over, got %q", opt.Password)
		}
		if opt.DB != 2 {
			t.Errorf("expected db 2, got %d", opt.DB)
		}
		if opt.TLSConfig != nil {
			t.Error("expected no tls config for redis scheme")
		}
	})

	t.Run("tls with insecure override", func(t *testing.T) {
		opt, err := redisClientOpt("rediss://localhost:6380", true)
		if err != nil {
			t.Fatalf("redisClientOpt: %v", err)
		}
		if opt.TLSConfig == nil {
			t.Fatal("expected tls config for rediss scheme")
		}
		if !opt.TLSConfig.InsecureSkipVerify {
			t.Error("expected InsecureSkipVerify to be set")
		}
	})

	t.Run("invalid url", func(t *testing.T) {
		if _, err := redisClientOpt("not-a-redis-url", false); err == nil {
			t.Fatal("expected an error for an invalid url")
		}
	})
}
