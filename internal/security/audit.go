package security

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fsgate/fsgate/internal/logging"
)

// EventKind classifies a security event.
type EventKind string

const (
	EventTraversal          EventKind = "traversal"
	EventUnauthorizedAccess EventKind = "unauthorized_access"
	EventPermissionDenied   EventKind = "permission_denied"
)

// Event records one rejected policy-bypass attempt. Events are append-only
// and never mutated after creation.
type Event struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Kind      EventKind `json:"kind"`
	Attempted string    `json:"attempted"`
	Resolved  string    `json:"resolved,omitempty"`
}

// Audit is the shared security event log. Appends are serialized behind a
// single coarse lock; no cross-call ordering is guaranteed beyond causal
// append order within one validator instance.
type Audit struct {
	mu     sync.Mutex
	events []Event
	logger *logging.Logger
}

// NewAudit creates an event log. The logger may be nil.
func NewAudit(logger *logging.Logger) *Audit {
	return &Audit{logger: logger}
}

// Record appends an event. When logging is requested it also emits a
// structured warning with the event fields.
func (a *Audit) Record(kind EventKind, attempted, resolved string, logged bool) Event {
	event := Event{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		Kind:      kind,
		Attempted: attempted,
		Resolved:  resolved,
	}

	a.mu.Lock()
	a.events = append(a.events, event)
	a.mu.Unlock()

	if logged && a.logger != nil {
		a.logger.Warn("security violation",
			zap.String("event_id", event.ID),
			zap.String("kind", string(kind)),
			zap.String("attempted", attempted),
		)
	}
	return event
}

// Events returns a snapshot copy of the accumulated events.
func (a *Audit) Events() []Event {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Event, len(a.events))
	copy(out, a.events)
	return out
}

// Clear discards all accumulated events.
func (a *Audit) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = nil
}

// Len reports the number of accumulated events.
func (a *Audit) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.events)
}
