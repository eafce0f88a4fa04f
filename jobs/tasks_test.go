package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
)

func TestDeletionFollowUpTaskPayload(t *testing.T) {
	requested := time.Date(2026, 5, 2, 10, 0, 0, 0, time.UTC)
	task, err := NewDeletionFollowUpTask(DeletionFollowUpPayload{
		EntityType:  "companies",
		EntityID:    "c-1",
		ActorID:     "u-9",
		RequestedAt: requested,
	})
	if err != nil {
		t.Fatalf("new task: %v", err)
	}
	if task.Type() != TaskDeletionFollowUp {
		t.Fatalf("unexpected task type %q", task.Type())
	}

	var payload DeletionFollowUpPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if payload.EntityType != "companies" || payload.EntityID != "c-1" || payload.ActorID != "u-9" {
		t.Fatalf("unexpected payload %+v", payload)
	}
	if !payload.RequestedAt.Equal(requested) {
		t.Fatalf("unexpected requested_at %v", payload.RequestedAt)
	}
}

func TestDeletionFollowUpPayloadCarriesIdentifiersOnly(t *testing.T) {
	task, err := NewDeletionFollowUpTask(DeletionFollowUpPayload{EntityType: "companies", EntityID: "c-1"})
	if err != nil {
		t.Fatalf("new task: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(task.Payload(), &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for key := range raw {
		switch key {
		case "entity_type", "entity_id", "actor_id", "requested_at":
		default:
			t.Fatalf("unexpected payload key %q", key)
		}
	}
}

func TestDeletionFollowUpSkipsRetryOnBadPayload(t *testing.T) {
	job := NewDeletionFollowUpJob(nil, nil, nil)
	task := asynq.NewTask(TaskDeletionFollowUp, []byte("{not json"))

	err := job.Handle(context.Background(), task)
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("malformed payload should skip retry, got %v", err)
	}
}

func TestActivityPruneTask(t *testing.T) {
	task, err := NewActivityPruneTask()
	if err != nil {
		t.Fatalf("new task: %v", err)
	}
	if task.Type() != TaskActivityPrune {
		t.Fatalf("unexpected task type %q", task.Type())
	}
}
