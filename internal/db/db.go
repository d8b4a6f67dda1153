// Package db provides persistent storage for the metrics event log, on
// PostgreSQL or SQLite depending on the configured database URL.
package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/joshuamtm/nyct-no-writer-mvp/internal/metrics"
)

// DefaultURL is used when no database URL is configured.
const DefaultURL = "sqlite://./metrics.db"

// Store is a persistent metrics event log.
type Store interface {
	metrics.Sink
	metrics.EventSource
	Close() error
}

// Open connects to the store named by databaseURL.
// postgres:// and postgresql:// URLs use PostgreSQL; sqlite:// URLs use SQLite.
func Open(ctx context.Context, databaseURL string) (Store, error) {
	if strings.TrimSpace(databaseURL) == "" {
		databaseURL = DefaultURL
	}

	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		pg, err := Connect(ctx, databaseURL)
		if err != nil {
			return nil, err
		}
		return pg, nil
	case strings.HasPrefix(databaseURL, "sqlite:"):
		lite, err := OpenSQLite(SQLitePath(databaseURL))
		if err != nil {
			return nil, err
		}
		return lite, nil
	default:
		return nil, fmt.Errorf("unsupported database URL scheme: %q", scheme(databaseURL))
	}
}

// SQLitePath extracts the file path from a sqlite URL. Both sqlite://./x.db
// and the three-slash form sqlite:///./x.db name a relative file.
func SQLitePath(databaseURL string) string {
	path := strings.TrimPrefix(databaseURL, "sqlite:")
	path = strings.TrimPrefix(path, "//")
	if strings.HasPrefix(path, "/./") || strings.HasPrefix(path, "/../") {
		path = path[1:]
	}
	return path
}

func scheme(databaseURL string) string {
	if i := strings.Index(databaseURL, ":"); i >= 0 {
		return databaseURL[:i]
	}
	return databaseURL
}

// eventColumns lists the columns after id and timestamp, in insert order.
const eventColumns = `event_type, organization_name, decline_reason, processing_time_ms,
	file_size_bytes, proposal_word_count, user_session_id, error_message,
	llm_provider, llm_tokens_used`

// nullableFields holds scan targets for the nullable event columns.
type nullableFields struct {
	eventType  string
	org        *string
	reason     *string
	procMS     *float64
	fileSize   *int64
	wordCount  *int64
	session    *string
	errMessage *string
	provider   *string
	tokens     *int64
}

func (n *nullableFields) targets() []any {
	return []any{
		&n.eventType, &n.org, &n.reason, &n.procMS, &n.fileSize,
		&n.wordCount, &n.session, &n.errMessage, &n.provider, &n.tokens,
	}
}

func (n *nullableFields) apply(e *metrics.Event) {
	e.Type = metrics.EventType(n.eventType)
	e.OrganizationName = deref(n.org)
	e.DeclineReason = deref(n.reason)
	e.SessionID = deref(n.session)
	e.ErrorMessage = deref(n.errMessage)
	e.LLMProvider = deref(n.provider)
	if n.procMS != nil {
		e.ProcessingTimeMS = *n.procMS
	}
	if n.fileSize != nil {
		e.FileSizeBytes = *n.fileSize
	}
	if n.wordCount != nil {
		e.ProposalWordCount = int(*n.wordCount)
	}
	if n.tokens != nil {
		e.LLMTokensUsed = int(*n.tokens)
	}
}

// eventArgs returns the values for eventColumns. Zero values become NULL.
func eventArgs(e metrics.Event) []any {
	return []any{
		string(e.Type),
		nullString(e.OrganizationName),
		nullString(e.DeclineReason),
		nullFloat(e.ProcessingTimeMS),
		nullInt(e.FileSizeBytes),
		nullInt(int64(e.ProposalWordCount)),
		nullString(e.SessionID),
		nullString(e.ErrorMessage),
		nullString(e.LLMProvider),
		nullInt(int64(e.LLMTokensUsed)),
	}
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullFloat(f float64) any {
	if f == 0 {
		return nil
	}
	return f
}

func nullInt(i int64) any {
	if i == 0 {
		return nil
	}
	return i
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
