package memory

import (
	"context"
	"sync"
	"time"
)

// AuditEvent records one step execution for inspection. Unlike the memory
// store, the audit trail is diagnostic only: it never feeds back into
// planning and failures to record never affect run outcome.
type AuditEvent struct {
	Goal       string
	RunID      string
	Action     string
	Status     string
	Result     string
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}

const (
	AuditStatusSucceeded = "succeeded"
	AuditStatusFailed    = "failed"
	AuditStatusSkipped   = "skipped"
)

// AuditStore persists step execution events.
type AuditStore interface {
	Record(ctx context.Context, event AuditEvent) error
	List(ctx context.Context, filter AuditFilter) ([]AuditEvent, error)
}

// AuditFilter limits audit event queries.
type AuditFilter struct {
	Goal   string
	RunID  string
	Status string
	Limit  int
}

// MemoryAuditStore keeps audit events in memory.
type MemoryAuditStore struct {
	mu     sync.Mutex
	events []AuditEvent
}

// NewMemoryAuditStore returns an in-memory audit store.
func NewMemoryAuditStore() *MemoryAuditStore {
	return &MemoryAuditStore{}
}

// Record appends an audit event.
func (s *MemoryAuditStore) Record(_ context.Context, event AuditEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// List returns filtered audit events.
func (s *MemoryAuditStore) List(_ context.Context, filter AuditFilter) ([]AuditEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]AuditEvent, 0, len(s.events))
	for _, ev := range s.events {
		if filter.Goal != "" && ev.Goal != filter.Goal {
			continue
		}
		if filter.RunID != "" && ev.RunID != filter.RunID {
			continue
		}
		if filter.Status != "" && ev.Status != filter.Status {
			continue
		}
		out = append(out, ev)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

// normalizeAuditTime ensures timestamps are stored in UTC.
func normalizeAuditTime(value time.Time) time.Time {
	if value.IsZero() {
		return value
	}
	return value.UTC()
}
