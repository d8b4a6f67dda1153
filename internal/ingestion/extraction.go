package ingestion

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// MinContentLength is the trimmed length below which a layout-aware PDF
// extraction is treated as a likely failure.
const MinContentLength = 100

// Strategy converts raw document bytes into text.
type Strategy interface {
	Name() string
	Extract(data []byte) (string, error)
}

// Extractor converts uploaded documents into plain text.
type Extractor struct {
	layout     Strategy
	stream     Strategy
	docx       Strategy
	minContent int
	logger     *zap.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Extractor) {
		e.logger = logger
	}
}

// WithPDFStrategies replaces the layout-aware and stream PDF strategies.
func WithPDFStrategies(layout, stream Strategy) Option {
	return func(e *Extractor) {
		e.layout = layout
		e.stream = stream
	}
}

// WithMinContentLength overrides MinContentLength.
func WithMinContentLength(n int) Option {
	return func(e *Extractor) {
		e.minContent = n
	}
}

// NewExtractor creates an Extractor backed by the default PDF and DOCX strategies.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		layout:     LayoutStrategy{},
		stream:     StreamStrategy{},
		docx:       DOCXStrategy{},
		minContent: MinContentLength,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the best-effort plain text of data.
// It fails with *UnsupportedFormatError for unknown formats and with
// *ExtractionFailedError when no strategy could read the document.
func (e *Extractor) Extract(ctx context.Context, data []byte, format Format) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	switch format {
	case FormatPDF:
		return e.extractPDF(ctx, data)
	case FormatDOCX:
		text, err := e.docx.Extract(data)
		if err != nil {
			return "", &ExtractionFailedError{Format: format, Cause: err}
		}
		return text, nil
	default:
		return "", &UnsupportedFormatError{Format: format}
	}
}

// extractPDF prefers the layout-aware result and only consults the stream
// strategy when the layout result looks empty or the layout strategy failed.
func (e *Extractor) extractPDF(ctx context.Context, data []byte) (string, error) {
	text, err := e.layout.Extract(data)
	if err != nil {
		e.logger.Warn("ingestion.extract.layout_failed",
			zap.String("strategy", e.layout.Name()), zap.Error(err))
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}

		text, err = e.stream.Extract(data)
		if err != nil {
			return "", &ExtractionFailedError{
				Format: FormatPDF,
				Cause:  fmt.Errorf("%s and %s strategies failed: %w", e.layout.Name(), e.stream.Name(), err),
			}
		}
		return strings.TrimSpace(text), nil
	}

	text = strings.TrimSpace(text)
	if len(text) >= e.minContent {
		return text, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", ctxErr
	}

	streamText, streamErr := e.stream.Extract(data)
	if streamErr != nil {
		e.logger.Warn("ingestion.extract.stream_failed",
			zap.String("strategy", e.stream.Name()),
			zap.Int("layout_length", len(text)),
			zap.Error(streamErr))
		return text, nil
	}

	streamText = strings.TrimSpace(streamText)
	if len(streamText) > len(text) {
		e.logger.Debug("ingestion.extract.fallback",
			zap.Int("layout_length", len(text)),
			zap.Int("stream_length", len(streamText)))
		return streamText, nil
	}
	return text, nil
}
