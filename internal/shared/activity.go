package shared

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/blake2b"
)

// Activity represents one panel-side access event stored in activity_log.
// It records metadata only: who asked the platform to reveal what, never the
// revealed value itself. Digest allows correlating a reveal with the
// platform audit trail without storing data.
type Activity struct {
	ActorID  string
	Action   string
	Entity   string
	EntityID string
	Meta     map[string]any
	At       time.Time
}

// ActivityLogger writes records into activity_log.
type ActivityLogger struct {
	pool *pgxpool.Pool
}

// NewActivityLogger returns a new ActivityLogger.
func NewActivityLogger(pool *pgxpool.Pool) *ActivityLogger {
	return &ActivityLogger{pool: pool}
}

// Record persists the activity entry.
func (l *ActivityLogger) Record(ctx context.Context, entry Activity) error {
	if l == nil || l.pool == nil {
		return errors.New("activity logger not initialised")
	}
	if entry.Action == "" || entry.Entity == "" || entry.EntityID == "" {
		return errors.New("activity log requires action/entity/entity_id")
	}
	metaJSON, err := json.Marshal(entry.Meta)
	if err != nil {
		return err
	}
	if entry.At.IsZero() {
		entry.At = time.Now().UTC()
	}
	_, err = l.pool.Exec(ctx, `INSERT INTO activity_log (actor_id, action, entity, entity_id, meta, occurred_at) VALUES ($1, $2, $3, $4, $5, $6)`, entry.ActorID, entry.Action, entry.Entity, entry.EntityID, metaJSON, entry.At)
	return err
}

// Prune deletes activity entries older than the retention window and returns
// the number of deleted rows.
func (l *ActivityLogger) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	if l == nil || l.pool == nil {
		return 0, errors.New("activity logger not initialised")
	}
	tag, err := l.pool.Exec(ctx, `DELETE FROM activity_log WHERE occurred_at < $1`, time.Now().UTC().Add(-retention))
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Digest hashes a revealed payload for correlation. The hash goes into the
// activity meta; the payload itself is never written anywhere.
func Digest(payload string) string {
	sum := blake2b.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:8])
}
