package lgpd

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// AddressAttributes are the components revealed together by the consolidated
// address card.
var AddressAttributes = []string{"street", "number", "complement", "neighborhood", "zip_code"}

// AddressFieldKey builds the synthetic field name the platform uses for bulk
// address reveals.
func AddressFieldKey(addressID, attribute string) string {
	return fmt.Sprintf("address_%s_%s", addressID, attribute)
}

// BulkRevealer abstracts the platform call behind a grouped reveal.
type BulkRevealer interface {
	RevealFields(ctx context.Context, entityType EntityType, entityID string, fields []string) (map[string]string, error)
}

// GroupReveal applies the field reveal state machine to a group of naturally
// co-located fields (an address) revealed and hidden as one atomic unit with
// a single backend call and a single audit entry. Timer and stale-response
// semantics are identical to FieldReveal.
type GroupReveal struct {
	mu sync.Mutex

	client   BulkRevealer
	notifier Notifier

	entityType EntityType
	entityID   string
	addressID  string

	phase  Phase
	values map[string]string
	gen    uint64

	timer    *time.Timer
	autoHide time.Duration

	lastTouch time.Time
}

// GroupOption customizes a GroupReveal.
type GroupOption func(*GroupReveal)

// WithGroupAutoHide overrides the auto-hide duration.
func WithGroupAutoHide(d time.Duration) GroupOption {
	return func(g *GroupReveal) {
		if d > 0 {
			g.autoHide = d
		}
	}
}

// NewGroupReveal builds a masked address group instance.
func NewGroupReveal(client BulkRevealer, notifier Notifier, entityType EntityType, entityID, addressID string, opts ...GroupOption) *GroupReveal {
	g := &GroupReveal{
		client:     client,
		notifier:   notifier,
		entityType: entityType,
		entityID:   entityID,
		addressID:  addressID,
		phase:      PhaseMasked,
		autoHide:   DefaultAutoHide,
		lastTouch:  time.Now(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Reveal fetches the whole group in one call. Re-entry while in flight is a
// no-op.
func (g *GroupReveal) Reveal(ctx context.Context) error {
	g.mu.Lock()
	if g.phase == PhaseRevealing {
		g.mu.Unlock()
		return nil
	}
	g.stopTimerLocked()
	g.phase = PhaseRevealing
	g.gen++
	gen := g.gen
	entityType, entityID := g.entityType, g.entityID
	fields := make([]string, 0, len(AddressAttributes))
	for _, attr := range AddressAttributes {
		fields = append(fields, AddressFieldKey(g.addressID, attr))
	}
	g.lastTouch = time.Now()
	g.mu.Unlock()

	values, err := g.client.RevealFields(ctx, entityType, entityID, fields)

	g.mu.Lock()
	defer g.mu.Unlock()
	if gen != g.gen {
		return nil
	}
	if err != nil {
		g.phase = PhaseMasked
		g.values = nil
		g.notify(Notification{Kind: NotifyError, Message: UserMessage(err)})
		return err
	}
	formatted := make(map[string]string, len(values))
	for key, value := range values {
		formatted[key] = FormatRevealed(attributeKind(key), value)
	}
	g.values = formatted
	g.phase = PhaseRevealed
	g.startTimerLocked(gen)
	g.notify(Notification{Kind: NotifySuccess, Message: "Endereço revelado. Ele será ocultado automaticamente."})
	return nil
}

// Hide masks the whole group on explicit user action.
func (g *GroupReveal) Hide() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.resetLocked()
}

// Rebind points the group at another entity, discarding any revealed values
// and in-flight work.
func (g *GroupReveal) Rebind(entityID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.entityID == entityID {
		return
	}
	g.entityID = entityID
	g.resetLocked()
}

// Close releases the instance.
func (g *GroupReveal) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.resetLocked()
}

// Display returns the visible value of one address attribute: revealed text
// or its masked placeholder.
func (g *GroupReveal) Display(attribute string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.phase == PhaseRevealed {
		if v, ok := g.values[AddressFieldKey(g.addressID, attribute)]; ok {
			return v
		}
	}
	return Placeholder(attributeMaskKind(attribute))
}

// Phase returns the current state.
func (g *GroupReveal) Phase() Phase {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.phase
}

// Loading reports whether a reveal request is in flight.
func (g *GroupReveal) Loading() bool {
	return g.Phase() == PhaseRevealing
}

// Revealed reports whether the group is currently visible.
func (g *GroupReveal) Revealed() bool {
	return g.Phase() == PhaseRevealed
}

func (g *GroupReveal) idle(now time.Time) time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	return now.Sub(g.lastTouch)
}

func (g *GroupReveal) resetLocked() {
	g.stopTimerLocked()
	g.gen++
	g.values = nil
	g.phase = PhaseMasked
	g.lastTouch = time.Now()
}

func (g *GroupReveal) startTimerLocked(gen uint64) {
	g.timer = time.AfterFunc(g.autoHide, func() {
		g.expire(gen)
	})
}

func (g *GroupReveal) stopTimerLocked() {
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
}

func (g *GroupReveal) expire(gen uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if gen != g.gen || g.phase != PhaseRevealed {
		return
	}
	g.resetLocked()
	g.notify(Notification{Kind: NotifyInfo, Message: "Endereço ocultado automaticamente por segurança."})
}

func (g *GroupReveal) notify(n Notification) {
	if g.notifier != nil {
		g.notifier.Notify(n)
	}
}

// attributeKind resolves the formatting kind from a synthetic address key.
func attributeKind(key string) FieldKind {
	if len(key) >= len("zip_code") && key[len(key)-len("zip_code"):] == "zip_code" {
		return KindPostalCode
	}
	return KindGeneric
}

func attributeMaskKind(attribute string) FieldKind {
	if attribute == "zip_code" {
		return KindPostalCode
	}
	return KindGeneric
}
