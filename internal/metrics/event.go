// Package metrics records usage events for the drafting pipeline and
// aggregates them for reporting. Recording is best-effort and never fails a
// request.
package metrics

import (
	"context"
	"crypto/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// EventType identifies the pipeline stage an event belongs to.
type EventType string

// Event types
const (
	EventUpload     EventType = "upload"
	EventAnalysis   EventType = "analysis"
	EventGeneration EventType = "generation"

	errorPrefix = "error_"
)

// ErrorEvent returns the event type for a failure in stage (e.g. "error_upload").
func ErrorEvent(stage EventType) EventType {
	return EventType(errorPrefix + string(stage))
}

// IsError reports whether t records a failure.
func (t EventType) IsError() bool {
	return strings.HasPrefix(string(t), errorPrefix)
}

// Event is a single append-only metrics record. Zero values are stored as NULL.
type Event struct {
	ID                string    `json:"id"`
	Timestamp         time.Time `json:"timestamp"`
	Type              EventType `json:"event_type"`
	OrganizationName  string    `json:"organization_name,omitempty"`
	DeclineReason     string    `json:"decline_reason,omitempty"`
	ProcessingTimeMS  float64   `json:"processing_time_ms,omitempty"`
	FileSizeBytes     int64     `json:"file_size_bytes,omitempty"`
	ProposalWordCount int       `json:"proposal_word_count,omitempty"`
	SessionID         string    `json:"user_session_id,omitempty"`
	ErrorMessage      string    `json:"error_message,omitempty"`
	LLMProvider       string    `json:"llm_provider,omitempty"`
	LLMTokensUsed     int       `json:"llm_tokens_used,omitempty"`
}

// Sink is an append-only event log.
type Sink interface {
	Record(ctx context.Context, event Event) error
}

// EventSource reads events back for aggregation.
type EventSource interface {
	EventsSince(ctx context.Context, since time.Time) ([]Event, error)
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewID returns a new time-ordered event id.
func NewID(ts time.Time) string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(ts), entropy).String()
}

// withDefaults fills in the id and timestamp.
func (e Event) withDefaults(now time.Time) Event {
	if e.Timestamp.IsZero() {
		e.Timestamp = now
	}
	e.Timestamp = e.Timestamp.UTC()
	if e.ID == "" {
		e.ID = NewID(e.Timestamp)
	}
	return e
}
