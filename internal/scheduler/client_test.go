package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type testSchedulerConfig struct {
	redisURL string
}

func (c testSchedulerConfig) GetRedisURL() string       { return c.redisURL }
func (c testSchedulerConfig) GetRedisTLSInsecure() bool { return false }
func (c testSchedulerConfig) GetAsynqQueueName() string { return "default" }
func (c testSchedulerConfig) GetAsynqConcurrency() int  { return 1 }

func TestNewClientRequiresRedisURL(t *testing.T) {
	if _, err := NewClient(testSchedulerConfig{}); err == nil {
		t.Fatal("expected error when redis url is missing")
	}
}

func TestScheduleFollowUpEnqueuesScheduledTask(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(testSchedulerConfig{redisURL: "redis://" + mr.Addr()})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer client.Close()

	leadKey := uuid.New()
	runAt := time.Now().Add(24 * time.Hour).Truncate(time.Second)

	if err := client.ScheduleFollowUp(context.Background(), leadKey, runAt); err != nil {
		t.Fatalf("ScheduleFollowUp: %v", err)
	}

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: mr.Addr()})
	defer inspector.Close()

	tasks, err := inspector.ListScheduledTasks("default")
	if err != nil {
		t.Fatalf("ListScheduledTasks: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected 1 scheduled task, got %d", len(tasks))
	}

	task := tasks[0]
	if task.Type != TaskFollowUpReminder {
		t.Errorf("task type = %q, want %q", task.Type, TaskFollowUpReminder)
	}

	payload, err := ParseFollowUpReminderPayload(asynq.NewTask(task.Type, task.Payload))
	if err != nil {
		t.Fatalf("parse payload: %v", err)
	}
	if payload.LeadKey != leadKey.String() {
		t.Errorf("payload lead key = %q, want %q", payload.LeadKey, leadKey)
	}
	if !payload.FollowUpDate.Equal(runAt) {
		t.Errorf("payload follow-up date = %v, want %v", payload.FollowUpDate, runAt)
	}
}

func TestScheduleFollowUpWithNilClientIsNoop(t *testing.T) {
	var client *Client
	if err := client.ScheduleFollowUp(context.Background(), uuid.New(), time.Now()); err != nil {
		t.Fatalf("nil client should be a noop, got %v", err)
	}
}
