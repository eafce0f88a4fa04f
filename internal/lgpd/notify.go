package lgpd

import "sync"

// NotificationKind classifies a reveal notification.
type NotificationKind string

const (
	NotifySuccess NotificationKind = "success"
	NotifyInfo    NotificationKind = "info"
	NotifyError   NotificationKind = "error"
)

// Notification is one user-facing message produced by the reveal protocol.
type Notification struct {
	Kind    NotificationKind
	Message string
}

// Notifier receives reveal notifications. Implementations must be safe for
// concurrent use: auto-hide timers fire from their own goroutine.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(n Notification)

// Notify implements Notifier.
func (f NotifierFunc) Notify(n Notification) {
	if f != nil {
		f(n)
	}
}

// Queue buffers notifications per session until the next page render drains
// them. Timer-fired hides land here since no request is in flight when the
// timer expires.
type Queue struct {
	mu      sync.Mutex
	pending map[string][]Notification
}

// NewQueue builds an empty notification queue.
func NewQueue() *Queue {
	return &Queue{pending: map[string][]Notification{}}
}

// Push appends a notification for a session.
func (q *Queue) Push(sessionID string, n Notification) {
	if q == nil || sessionID == "" {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending[sessionID] = append(q.pending[sessionID], n)
}

// Drain returns and clears the pending notifications for a session.
func (q *Queue) Drain(sessionID string) []Notification {
	if q == nil {
		return nil
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.pending[sessionID]
	delete(q.pending, sessionID)
	return out
}

// ForSession returns a Notifier bound to one session.
func (q *Queue) ForSession(sessionID string) Notifier {
	return NotifierFunc(func(n Notification) {
		q.Push(sessionID, n)
	})
}
