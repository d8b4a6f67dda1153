// Package pipeline orchestrates the decline drafting stages: extract,
// summarize, generate and render. The HTTP API and the CLI both drive it.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/joshuamtm/nyct-no-writer-mvp/internal/drafting"
	"github.com/joshuamtm/nyct-no-writer-mvp/internal/ingestion"
	"github.com/joshuamtm/nyct-no-writer-mvp/internal/metrics"
	"github.com/joshuamtm/nyct-no-writer-mvp/internal/parsing"
	"github.com/joshuamtm/nyct-no-writer-mvp/internal/rendering"
	"github.com/joshuamtm/nyct-no-writer-mvp/internal/types"
)

// Limits
const (
	DefaultMaxUploadBytes = 10 * 1024 * 1024
	previewLength         = 200
)

// TooLargeError is returned when an upload exceeds the size limit.
type TooLargeError struct {
	Size  int64
	Limit int64
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("file too large: %d bytes (maximum is %d)", e.Size, e.Limit)
}

// Document is an uploaded proposal file.
type Document struct {
	Data     []byte
	Filename string
	// ContentType is the declared MIME type. When empty or generic the
	// filename extension decides the format.
	ContentType string
	SessionID   string
}

// Pipeline wires the stage components together and records a metrics event
// per stage.
type Pipeline struct {
	extractor  *ingestion.Extractor
	summarizer *parsing.Summarizer
	generator  *drafting.Generator
	recorder   *metrics.Recorder
	logger     *zap.Logger
	maxUpload  int64
	now        func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithRecorder sets the metrics recorder used for upload and analysis events.
func WithRecorder(r *metrics.Recorder) Option {
	return func(p *Pipeline) { p.recorder = r }
}

// WithMaxUploadBytes overrides DefaultMaxUploadBytes.
func WithMaxUploadBytes(n int64) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.maxUpload = n
		}
	}
}

// New creates a Pipeline.
func New(extractor *ingestion.Extractor, summarizer *parsing.Summarizer, generator *drafting.Generator, opts ...Option) *Pipeline {
	p := &Pipeline{
		extractor:  extractor,
		summarizer: summarizer,
		generator:  generator,
		logger:     zap.NewNop(),
		maxUpload:  DefaultMaxUploadBytes,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// AIEnabled reports whether summaries and drafts go through a provider.
func (p *Pipeline) AIEnabled() bool {
	return p.summarizer.AIEnabled() || p.generator.AIEnabled()
}

// MaxUploadBytes is the upload size limit.
func (p *Pipeline) MaxUploadBytes() int64 {
	return p.maxUpload
}

// NewSessionID returns a fresh session id.
func NewSessionID() string {
	return uuid.NewString()
}

func documentFormat(doc Document) ingestion.Format {
	if doc.ContentType == "" || doc.ContentType == "application/octet-stream" {
		return ingestion.FormatFromFilename(doc.Filename)
	}
	return ingestion.FormatFromContentType(doc.ContentType)
}

// Upload extracts and normalizes a document. Failures record an error_upload
// event unless the request was canceled.
func (p *Pipeline) Upload(ctx context.Context, doc Document) (types.UploadResult, error) {
	start := p.now()
	if doc.SessionID == "" {
		doc.SessionID = NewSessionID()
	}

	size := int64(len(doc.Data))
	if size > p.maxUpload {
		err := &TooLargeError{Size: size, Limit: p.maxUpload}
		p.recordError(ctx, metrics.EventUpload, doc.SessionID, err)
		return types.UploadResult{}, err
	}

	format := documentFormat(doc)
	raw, err := p.extractor.Extract(ctx, doc.Data, format)
	if err != nil {
		p.logger.Warn("pipeline.upload.failed",
			zap.String("filename", doc.Filename),
			zap.String("format", string(format)),
			zap.Error(err),
		)
		p.recordError(ctx, metrics.EventUpload, doc.SessionID, err)
		return types.UploadResult{}, err
	}

	cleaned := ingestion.Normalize(raw)
	elapsed := p.now().Sub(start)
	result := types.UploadResult{
		ProposalHash:     ingestion.DocumentHash(doc.Data),
		TextContent:      cleaned,
		Filename:         doc.Filename,
		Size:             len(doc.Data),
		WordCount:        ingestion.WordCount(cleaned),
		ExtractionTimeMS: elapsed.Milliseconds(),
		SessionID:        doc.SessionID,
	}

	p.logger.Info("pipeline.upload.extracted",
		zap.String("filename", doc.Filename),
		zap.Int("words", result.WordCount),
		zap.Duration("elapsed", elapsed),
	)
	p.recorder.Record(ctx, metrics.Event{
		Type:              metrics.EventUpload,
		FileSizeBytes:     size,
		ProposalWordCount: result.WordCount,
		ProcessingTimeMS:  millis(elapsed),
		SessionID:         doc.SessionID,
	})
	return result, nil
}

// Analyze summarizes proposal text. It never fails. A canceled request
// records no analysis event.
func (p *Pipeline) Analyze(ctx context.Context, req types.AnalyzeRequest) types.AnalyzeResult {
	start := p.now()
	summary := p.summarizer.Summarize(ctx, req.TextContent)
	elapsed := p.now().Sub(start)

	if ctx.Err() == nil {
		provider := p.summarizer.Provider()
		if provider == "" {
			provider = drafting.ProviderTemplate
		}
		p.recorder.Record(ctx, metrics.Event{
			Type:              metrics.EventAnalysis,
			OrganizationName:  types.ValueOr(summary.OrganizationName, ""),
			ProcessingTimeMS:  millis(elapsed),
			ProposalWordCount: ingestion.WordCount(req.TextContent),
			SessionID:         req.SessionID,
			LLMProvider:       provider,
		})
	}

	return types.AnalyzeResult{
		Summary:              summary,
		AnalysisTimeMS:       elapsed.Milliseconds(),
		ExtractedTextPreview: Preview(req.TextContent),
	}
}

// Generate drafts the memo and letter. It never fails.
func (p *Pipeline) Generate(ctx context.Context, req types.GenerateRequest) types.GeneratedOutput {
	reason := types.ParseDeclineReason(req.ReasonCode)
	return p.generator.Generate(ctx, req.ProposalSummary.Compact(), reason, req.SpecificReasons, req.SessionID)
}

// Export renders the decision packet as HTML.
func (p *Pipeline) Export(req types.ExportRequest) (string, error) {
	return rendering.RenderHTML(rendering.Packet{
		Summary:         req.ProposalSummary.Compact(),
		Reason:          types.ParseDeclineReason(req.ReasonCode),
		SpecificReasons: req.SpecificReasons,
		Output: types.GeneratedOutput{
			InternalRationale: req.InternalRationale,
			ExternalReply:     req.ExternalReply,
		},
		GeneratedAt: p.now(),
	})
}

// Preview returns the first 200 characters of text followed by "...".
func Preview(text string) string {
	r := []rune(text)
	if len(r) > previewLength {
		r = r[:previewLength]
	}
	return string(r) + "..."
}

func (p *Pipeline) recordError(ctx context.Context, stage metrics.EventType, sessionID string, err error) {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return
	}
	p.recorder.Record(ctx, metrics.Event{
		Type:         metrics.ErrorEvent(stage),
		SessionID:    sessionID,
		ErrorMessage: err.Error(),
	})
}

func millis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
