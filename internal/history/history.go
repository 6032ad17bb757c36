// Package history keeps an optional log of conversions.
//
// The log is write-mostly: every conversion records one Entry, and the CLI
// and HTTP layers list the most recent ones. PostgreSQL backs the log when a
// database is configured; otherwise a Nop store discards entries.
package history

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status is the outcome of a conversion.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// DefaultLimit is used when a caller asks for a non-positive number of entries.
const DefaultLimit = 20

// MaxLimit caps how many entries Recent returns.
const MaxLimit = 500

// Entry is one recorded conversion.
type Entry struct {
	ID        uuid.UUID     `json:"id"`
	Kind      string        `json:"kind"`     // knowledge_points or prerequisites
	Source    string        `json:"source"`   // input file name
	Encoding  string        `json:"encoding"` // encoding the input was decoded with
	Records   int           `json:"records"`  // nodes or relationships emitted
	Status    Status        `json:"status"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration_ns"`
	CreatedAt time.Time     `json:"created_at"`
}

// NewEntry returns an Entry with a fresh ID and timestamp.
func NewEntry(kind, source string) Entry {
	return Entry{
		ID:        uuid.New(),
		Kind:      kind,
		Source:    source,
		Status:    StatusSuccess,
		CreatedAt: time.Now().UTC(),
	}
}

// Fail marks the entry failed with err's message.
func (e *Entry) Fail(err error) {
	e.Status = StatusFailed
	if err != nil {
		e.Error = err.Error()
	}
}

// Recorder records conversions.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
}

// Store records conversions and lists recent ones.
type Store interface {
	Recorder
	Recent(ctx context.Context, limit int) ([]Entry, error)
	Close()
}

// clampLimit applies DefaultLimit and MaxLimit.
func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Nop discards entries. It is used when no database is configured.
type Nop struct{}

func (Nop) Record(context.Context, Entry) error { return nil }

func (Nop) Recent(context.Context, int) ([]Entry, error) { return nil, nil }

func (Nop) Close() {}

// Memory keeps the most recent entries in process memory.
// The zero value is not usable; create one with NewMemory.
type Memory struct {
	mu      sync.Mutex
	entries []Entry
	cap     int
}

// NewMemory creates a Memory store holding at most capacity entries.
func NewMemory(capacity int) *Memory {
	if capacity <= 0 {
		capacity = MaxLimit
	}
	return &Memory{cap: capacity}
}

func (m *Memory) Record(_ context.Context, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = append(m.entries, e)
	if len(m.entries) > m.cap {
		m.entries = m.entries[len(m.entries)-m.cap:]
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (m *Memory) Recent(_ context.Context, limit int) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	limit = clampLimit(limit)
	out := make([]Entry, 0, min(limit, len(m.entries)))
	for i := len(m.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.entries[i])
	}
	return out, nil
}

func (m *Memory) Close() {}
