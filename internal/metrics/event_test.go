package metrics

import (
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorEvent(t *testing.T) {
	assert.Equal(t, EventType("error_upload"), ErrorEvent(EventUpload))
	assert.True(t, ErrorEvent(EventGeneration).IsError())
	assert.False(t, EventAnalysis.IsError())
}

func TestNewID_TimeOrdered(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	first := NewID(ts)
	second := NewID(ts)

	assert.Less(t, first, second, "ids from the same millisecond stay ordered")

	parsed, err := ulid.Parse(first)
	require.NoError(t, err)
	assert.True(t, ts.Equal(ulid.Time(parsed.Time())))
}

func TestEvent_WithDefaults(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 30, 0, 0, time.FixedZone("EST", -5*3600))

	e := Event{Type: EventUpload}.withDefaults(now)
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, time.UTC, e.Timestamp.Location())
	assert.True(t, e.Timestamp.Equal(now))

	kept := Event{ID: "fixed", Timestamp: now.Add(-time.Hour)}.withDefaults(now)
	assert.Equal(t, "fixed", kept.ID)
	assert.True(t, kept.Timestamp.Equal(now.Add(-time.Hour)))
}
