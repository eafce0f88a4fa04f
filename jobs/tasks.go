package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/tucano-platform/tucano-admin/internal/jobs"
	"github.com/tucano-platform/tucano-admin/internal/shared"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskDeletionFollowUp re-checks LGPD deletion requests after the
	// statutory processing window.
	TaskDeletionFollowUp = "lgpd:deletion_followup"
	// TaskActivityPrune trims activity entries past the retention window.
	TaskActivityPrune = "lgpd:activity_prune"
)

// DeletionFollowUpPayload identifies a filed deletion request. Only record
// identifiers travel through the queue, never revealed values.
type DeletionFollowUpPayload struct {
	EntityType  string    `json:"entity_type"`
	EntityID    string    `json:"entity_id"`
	ActorID     string    `json:"actor_id"`
	RequestedAt time.Time `json:"requested_at"`
}

// NewDeletionFollowUpTask constructs an Asynq task.
func NewDeletionFollowUpTask(payload DeletionFollowUpPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDeletionFollowUp, data), nil
}

// ActivityRecorder writes entries into the panel activity trail.
type ActivityRecorder interface {
	Record(ctx context.Context, entry shared.Activity) error
}

// ActivityPruner trims the panel activity trail.
type ActivityPruner interface {
	Prune(ctx context.Context, retention time.Duration) (int64, error)
}

// DeletionFollowUpJob records a follow-up marker in the activity trail so
// admins can verify the platform completed the erasure.
type DeletionFollowUpJob struct {
	activity ActivityRecorder
	logger   *slog.Logger
	metrics  *jobmetrics.Metrics
}

// NewDeletionFollowUpJob builds the job.
func NewDeletionFollowUpJob(activity ActivityRecorder, logger *slog.Logger, metrics *jobmetrics.Metrics) *DeletionFollowUpJob {
	return &DeletionFollowUpJob{activity: activity, logger: logger, metrics: metrics}
}

// Handle processes TaskDeletionFollowUp tasks.
func (j *DeletionFollowUpJob) Handle(ctx context.Context, t *asynq.Task) error {
	tracker := j.metrics.Track("deletion_followup")
	var payload DeletionFollowUpPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		_ = tracker.End(err)
		return asynq.SkipRetry
	}
	entry := shared.Activity{
		ActorID:  payload.ActorID,
		Action:   "DELETION_FOLLOWUP_DUE",
		Entity:   payload.EntityType,
		EntityID: payload.EntityID,
		Meta:     map[string]any{"requested_at": payload.RequestedAt.Format(time.RFC3339)},
	}
	if err := j.activity.Record(ctx, entry); err != nil {
		j.logger.Error("deletion follow-up record", slog.Any("error", err))
		return tracker.End(err)
	}
	j.logger.Info("deletion follow-up recorded",
		slog.String("entity", payload.EntityType),
		slog.String("entity_id", payload.EntityID))
	return tracker.End(nil)
}

// ActivityPruneJob trims panel activity entries past the retention window,
// keeping the local trail aligned with the LGPD storage limitation principle.
type ActivityPruneJob struct {
	activity  ActivityPruner
	retention time.Duration
	logger    *slog.Logger
	metrics   *jobmetrics.Metrics
}

// NewActivityPruneJob builds the job.
func NewActivityPruneJob(activity ActivityPruner, retention time.Duration, logger *slog.Logger, metrics *jobmetrics.Metrics) *ActivityPruneJob {
	if retention <= 0 {
		retention = 180 * 24 * time.Hour
	}
	return &ActivityPruneJob{activity: activity, retention: retention, logger: logger, metrics: metrics}
}

// NewActivityPruneTask constructs the recurring prune task.
func NewActivityPruneTask() (*asynq.Task, error) {
	return asynq.NewTask(TaskActivityPrune, nil), nil
}

// Handle processes TaskActivityPrune tasks.
func (j *ActivityPruneJob) Handle(ctx context.Context, t *asynq.Task) error {
	tracker := j.metrics.Track("activity_prune")
	deleted, err := j.activity.Prune(ctx, j.retention)
	if err != nil {
		j.logger.Error("activity prune", slog.Any("error", err))
		return tracker.End(err)
	}
	if deleted > 0 {
		j.logger.Info("activity prune", slog.Int64("deleted", deleted))
	}
	return tracker.End(nil)
}
