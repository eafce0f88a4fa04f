package lgpd

import (
	"context"
	"sync"
	"time"
)

// DefaultAutoHide is how long a revealed value stays visible before the
// field reverts to its masked placeholder.
const DefaultAutoHide = 180 * time.Second

// Phase is the reveal state of one field instance.
type Phase string

const (
	PhaseMasked    Phase = "masked"
	PhaseRevealing Phase = "revealing"
	PhaseRevealed  Phase = "revealed"
)

// Revealer abstracts the platform call behind a single-field reveal.
type Revealer interface {
	RevealField(ctx context.Context, entityType EntityType, entityID, field string) (string, error)
}

// FieldReveal is the state machine of one sensitive field instance:
// Masked → Revealing → Revealed → Masked, with a single-shot auto-hide timer
// and stale-response discard. The generation counter bumps on every reset so
// a response arriving after the instance moved on is ignored rather than
// applied.
type FieldReveal struct {
	mu sync.Mutex

	client   Revealer
	notifier Notifier

	entityType EntityType
	entityID   string
	field      string
	kind       FieldKind

	phase Phase
	value string
	gen   uint64

	timer    *time.Timer
	autoHide time.Duration

	lastTouch time.Time
}

// FieldOption customizes a FieldReveal.
type FieldOption func(*FieldReveal)

// WithAutoHide overrides the auto-hide duration. Used by tests and the
// config-driven TTL override.
func WithAutoHide(d time.Duration) FieldOption {
	return func(f *FieldReveal) {
		if d > 0 {
			f.autoHide = d
		}
	}
}

// NewFieldReveal builds a masked field instance.
func NewFieldReveal(client Revealer, notifier Notifier, entityType EntityType, entityID, field string, opts ...FieldOption) *FieldReveal {
	f := &FieldReveal{
		client:     client,
		notifier:   notifier,
		entityType: entityType,
		entityID:   entityID,
		field:      field,
		kind:       KindFor(field),
		phase:      PhaseMasked,
		autoHide:   DefaultAutoHide,
		lastTouch:  time.Now(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Reveal performs the audited reveal call. A second Reveal while one is in
// flight is a no-op: the button is disabled while loading. On success the
// formatted value becomes visible and the auto-hide timer starts; on failure
// the field returns to masked with a user-facing error notification.
func (f *FieldReveal) Reveal(ctx context.Context) error {
	f.mu.Lock()
	if f.phase == PhaseRevealing {
		f.mu.Unlock()
		return nil
	}
	f.stopTimerLocked()
	f.phase = PhaseRevealing
	f.gen++
	gen := f.gen
	entityType, entityID, field := f.entityType, f.entityID, f.field
	f.lastTouch = time.Now()
	f.mu.Unlock()

	value, err := f.client.RevealField(ctx, entityType, entityID, field)

	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.gen {
		// The instance was reset while the request was in flight. The
		// response, success or failure, must not touch the new state.
		return nil
	}
	if err != nil {
		f.phase = PhaseMasked
		f.value = ""
		f.notify(Notification{Kind: NotifyError, Message: UserMessage(err)})
		return err
	}
	f.value = FormatRevealed(f.kind, value)
	f.phase = PhaseRevealed
	f.startTimerLocked(gen)
	f.notify(Notification{Kind: NotifySuccess, Message: "Dado revelado. Ele será ocultado automaticamente."})
	return nil
}

// Hide masks the field again on explicit user action.
func (f *FieldReveal) Hide() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resetLocked()
}

// Rebind points the instance at another entity. Any revealed value, running
// timer or in-flight request belonging to the previous identity is discarded.
func (f *FieldReveal) Rebind(entityID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.entityID == entityID {
		return
	}
	f.entityID = entityID
	f.resetLocked()
}

// Close releases the instance: timer stopped, value discarded.
func (f *FieldReveal) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resetLocked()
}

// Display returns what the UI shows right now: the formatted revealed value
// or the field-shaped masked placeholder.
func (f *FieldReveal) Display() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.phase == PhaseRevealed {
		return f.value
	}
	return Placeholder(f.kind)
}

// Phase returns the current state.
func (f *FieldReveal) Phase() Phase {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.phase
}

// Loading reports whether a reveal request is in flight.
func (f *FieldReveal) Loading() bool {
	return f.Phase() == PhaseRevealing
}

// Revealed reports whether the value is currently visible.
func (f *FieldReveal) Revealed() bool {
	return f.Phase() == PhaseRevealed
}

// Field returns the platform field name.
func (f *FieldReveal) Field() string { return f.field }

// Kind returns the field kind.
func (f *FieldReveal) Kind() FieldKind { return f.kind }

// idle reports how long ago the instance was last used.
func (f *FieldReveal) idle(now time.Time) time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return now.Sub(f.lastTouch)
}

// resetLocked returns to masked and invalidates in-flight work. Callers hold
// the mutex.
func (f *FieldReveal) resetLocked() {
	f.stopTimerLocked()
	f.gen++
	f.value = ""
	f.phase = PhaseMasked
	f.lastTouch = time.Now()
}

// startTimerLocked arms the single auto-hide timer. Any previous timer was
// already stopped; the generation guards against a timer outliving a reset.
func (f *FieldReveal) startTimerLocked(gen uint64) {
	f.timer = time.AfterFunc(f.autoHide, func() {
		f.expire(gen)
	})
}

func (f *FieldReveal) stopTimerLocked() {
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
}

func (f *FieldReveal) expire(gen uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.gen || f.phase != PhaseRevealed {
		return
	}
	f.resetLocked()
	f.notify(Notification{Kind: NotifyInfo, Message: "Dado ocultado automaticamente por segurança."})
}

func (f *FieldReveal) notify(n Notification) {
	if f.notifier != nil {
		f.notifier.Notify(n)
	}
}
