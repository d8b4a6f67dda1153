package metrics

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Recorder is the best-effort front of a Sink. Sink errors and panics are
// logged and swallowed so that metrics never fail a request.
type Recorder struct {
	sink       Sink
	logger     *zap.Logger
	collectors *Collectors
	enabled    bool
	now        func() time.Time
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithLogger sets the logger for sink failures.
func WithLogger(logger *zap.Logger) RecorderOption {
	return func(r *Recorder) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithCollectors mirrors every recorded event into Prometheus collectors.
func WithCollectors(c *Collectors) RecorderOption {
	return func(r *Recorder) { r.collectors = c }
}

// WithEnabled turns recording on or off.
func WithEnabled(enabled bool) RecorderOption {
	return func(r *Recorder) { r.enabled = enabled }
}

// WithClock overrides the event timestamp source.
func WithClock(now func() time.Time) RecorderOption {
	return func(r *Recorder) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRecorder creates a Recorder. A nil sink disables persistence.
func NewRecorder(sink Sink, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		sink:    sink,
		logger:  zap.NewNop(),
		enabled: true,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Enabled reports whether events are being recorded.
func (r *Recorder) Enabled() bool {
	return r != nil && r.enabled && r.sink != nil
}

// Record appends event to the sink. It never returns an error and never panics.
// Nothing is recorded once ctx is done, and collectors only count events the
// sink accepted.
func (r *Recorder) Record(ctx context.Context, event Event) {
	if !r.Enabled() {
		return
	}
	if err := ctx.Err(); err != nil {
		r.logger.Debug("metrics.record.skipped",
			zap.String("event_type", string(event.Type)),
			zap.Error(err),
		)
		return
	}
	event = event.withDefaults(r.now())

	if err := r.record(ctx, event); err != nil {
		r.logger.Warn("metrics.record.failed",
			zap.String("event_type", string(event.Type)),
			zap.String("event_id", event.ID),
			zap.Error(err),
		)
		return
	}
	if r.collectors != nil {
		r.collectors.Observe(event)
	}
}

func (r *Recorder) record(ctx context.Context, event Event) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("sink panicked: %v", p)
		}
	}()
	return r.sink.Record(ctx, event)
}
