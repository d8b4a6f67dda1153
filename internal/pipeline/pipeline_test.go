package pipeline

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuamtm/nyct-no-writer-mvp/internal/drafting"
	"github.com/joshuamtm/nyct-no-writer-mvp/internal/ingestion"
	"github.com/joshuamtm/nyct-no-writer-mvp/internal/metrics"
	"github.com/joshuamtm/nyct-no-writer-mvp/internal/parsing"
	"github.com/joshuamtm/nyct-no-writer-mvp/internal/types"
)

// proposalDOCX packages one paragraph per line into a minimal .docx archive.
func proposalDOCX(t *testing.T, lines ...string) []byte {
	t.Helper()

	var body strings.Builder
	for _, line := range lines {
		body.WriteString(`<w:p><w:r><w:t xml:space="preserve">` + line + `</w:t></w:r></w:p>`)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body.String() +
		`</w:body></w:document>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func newTestPipeline(opts ...Option) (*Pipeline, *metrics.MemorySink) {
	sink := metrics.NewMemorySink()
	recorder := metrics.NewRecorder(sink)
	opts = append([]Option{WithRecorder(recorder)}, opts...)
	p := New(
		ingestion.NewExtractor(),
		parsing.NewSummarizer(nil),
		drafting.NewGenerator(nil, drafting.WithRecorder(recorder)),
		opts...,
	)
	return p, sink
}

var sampleLines = []string{
	"Organization: Astoria Cat Rescue",
	"We request $12,500 to expand our trap-neuter-return program.",
	"Project serves feral cat colonies across Queens.",
}

func TestUpload_DOCX(t *testing.T) {
	p, sink := newTestPipeline()
	data := proposalDOCX(t, sampleLines...)

	result, err := p.Upload(context.Background(), Document{
		Data:        data,
		Filename:    "proposal.docx",
		ContentType: ingestion.MIMETypeDOCX,
		SessionID:   "session-1",
	})
	require.NoError(t, err)

	assert.Equal(t, ingestion.DocumentHash(data), result.ProposalHash)
	assert.Len(t, result.ProposalHash, 12)
	assert.Equal(t, strings.Join(sampleLines, "\n"), result.TextContent)
	assert.Equal(t, "proposal.docx", result.Filename)
	assert.Equal(t, len(data), result.Size)
	assert.Equal(t, ingestion.WordCount(result.TextContent), result.WordCount)
	assert.Equal(t, "session-1", result.SessionID)

	events := sink.Events()
	require.Len(t, events, 1)
	assert.Equal(t, metrics.EventUpload, events[0].Type)
	assert.Equal(t, int64(len(data)), events[0].FileSizeBytes)
	assert.Equal(t, result.WordCount, events[0].ProposalWordCount)
	assert.Equal(t, "session-1", events[0].SessionID)
}

func TestUpload_FormatFromFilenameWhenContentTypeGeneric(t *testing.T) {
	p, _ := newTestPipeline()

	result, err := p.Upload(context.Background(), Document{
		Data:        proposalDOCX(t, sampleLines...),
		Filename:    "proposal.docx",
		ContentType: "application/octet-stream",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.SessionID, "a session id is generated when none is given")
}

func TestUpload_UnsupportedFormat(t *testing.T) {
	p, sink := newTestPipeline()

	_, err := p.Upload(context.Background(), Document{
		Data:        []byte("plain text"),
		Filename:    "proposal.txt",
		ContentType: "text/plain",
		SessionID:   "s",
	})
	require.Error(t, err)

	var unsupported *ingestion.UnsupportedFormatError
	assert.ErrorAs(t, err, &unsupported)

	events := sink.Events()
	require.Len(t, events, 1)
	assert.Equal(t, metrics.ErrorEvent(metrics.EventUpload), events[0].Type)
	assert.NotEmpty(t, events[0].ErrorMessage)
}

func TestUpload_TooLarge(t *testing.T) {
	p, sink := newTestPipeline(WithMaxUploadBytes(16))

	_, err := p.Upload(context.Background(), Document{
		Data:        bytes.Repeat([]byte("x"), 17),
		ContentType: ingestion.MIMETypePDF,
	})

	var tooLarge *TooLargeError
	require.ErrorAs(t, err, &tooLarge)
	assert.Equal(t, int64(17), tooLarge.Size)
	assert.Equal(t, int64(16), tooLarge.Limit)
	assert.Equal(t, int64(16), p.MaxUploadBytes())
	require.Len(t, sink.Events(), 1)
	assert.True(t, sink.Events()[0].Type.IsError())
}

func TestUpload_CorruptDOCX(t *testing.T) {
	p, _ := newTestPipeline()

	_, err := p.Upload(context.Background(), Document{
		Data:        []byte("not a zip archive"),
		ContentType: ingestion.MIMETypeDOCX,
	})

	var failed *ingestion.ExtractionFailedError
	assert.ErrorAs(t, err, &failed)
}

func TestAnalyze_Heuristic(t *testing.T) {
	p, sink := newTestPipeline()
	text := strings.Join(sampleLines, "\n")

	result := p.Analyze(context.Background(), types.AnalyzeRequest{
		TextContent: text,
		SessionID:   "s-1",
	})

	assert.Equal(t, "Astoria Cat Rescue", types.ValueOr(result.Summary.OrganizationName, ""))
	assert.Equal(t, "$12,500", types.ValueOr(result.Summary.GrantAmount, ""))
	assert.Equal(t, text+"...", result.ExtractedTextPreview)
	assert.False(t, p.AIEnabled())

	events := sink.Events()
	require.Len(t, events, 1)
	assert.Equal(t, metrics.EventAnalysis, events[0].Type)
	assert.Equal(t, "Astoria Cat Rescue", events[0].OrganizationName)
	assert.Equal(t, drafting.ProviderTemplate, events[0].LLMProvider)
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short...", Preview("short"))

	long := strings.Repeat("é", 250)
	assert.Equal(t, strings.Repeat("é", 200)+"...", Preview(long))
}

func TestGenerate_Template(t *testing.T) {
	p, sink := newTestPipeline()

	output := p.Generate(context.Background(), types.GenerateRequest{
		ReasonCode:      " GEOGRAPHIC_SCOPE ",
		SpecificReasons: "Serves Nassau County only.",
		ProposalSummary: types.ProposalSummary{OrganizationName: types.StringPtr("Astoria Cat Rescue")},
		SessionID:       "s-2",
	})

	assert.Contains(t, output.InternalRationale, "Astoria Cat Rescue")
	assert.Contains(t, output.ExternalReply, "Dear Astoria Cat Rescue")
	assert.NotContains(t, output.ExternalReply, "Nassau")

	events := sink.Events()
	require.Len(t, events, 1)
	assert.Equal(t, metrics.EventGeneration, events[0].Type)
	assert.Equal(t, "geographic_scope", events[0].DeclineReason)
}

func TestExport(t *testing.T) {
	p, _ := newTestPipeline()

	html, err := p.Export(types.ExportRequest{
		GenerateRequest: types.GenerateRequest{
			ReasonCode:      "higher_merit",
			ProposalSummary: types.ProposalSummary{OrganizationName: types.StringPtr("Astoria Cat Rescue")},
		},
		InternalRationale: "Memo text.",
		ExternalReply:     "Letter text.",
	})
	require.NoError(t, err)

	assert.Contains(t, html, "<title>")
	assert.Contains(t, html, "Other Projects Higher Merit")
	assert.Contains(t, html, "Memo text.")
	assert.Contains(t, html, "Letter text.")
}

func TestRun_EndToEnd(t *testing.T) {
	p, sink := newTestPipeline()
	dir := t.TempDir()
	input := filepath.Join(dir, "proposal.docx")
	require.NoError(t, os.WriteFile(input, proposalDOCX(t, sampleLines...), 0644))

	var out bytes.Buffer
	var progress []ProgressEvent
	result, err := p.Run(context.Background(), RunOptions{
		InputPath:       input,
		ReasonCode:      "sustainability",
		SpecificReasons: "No plan past year one.",
		HTMLPath:        filepath.Join(dir, "out", "packet.html"),
		Verbose:         true,
		Out:             &out,
		OnProgress:      func(e ProgressEvent) { progress = append(progress, e) },
	})
	require.NoError(t, err)

	assert.Equal(t, "Astoria Cat Rescue", types.ValueOr(result.Analysis.Summary.OrganizationName, ""))
	assert.Contains(t, result.Output.ExternalReply, "Astoria Cat Rescue")
	assert.NotEmpty(t, result.HTML)

	written, err := os.ReadFile(filepath.Join(dir, "out", "packet.html"))
	require.NoError(t, err)
	assert.Equal(t, result.HTML, string(written))

	require.Len(t, progress, 4)
	assert.Equal(t, "extract", progress[0].Step)
	assert.Equal(t, "render", progress[3].Step)
	assert.Equal(t, 4, progress[3].Total)

	assert.Contains(t, out.String(), "[1/4]")
	assert.Contains(t, out.String(), "PROPOSAL SUMMARY")
	assert.Contains(t, out.String(), "INTERNAL MEMO (Sustainability Concerns)")

	var kinds []metrics.EventType
	sessions := map[string]bool{}
	for _, e := range sink.Events() {
		kinds = append(kinds, e.Type)
		sessions[e.SessionID] = true
	}
	assert.Equal(t, []metrics.EventType{metrics.EventUpload, metrics.EventAnalysis, metrics.EventGeneration}, kinds)
	assert.Len(t, sessions, 1, "all stages share one session")
}

func TestRun_QuietWithoutHTML(t *testing.T) {
	p, _ := newTestPipeline()
	input := filepath.Join(t.TempDir(), "proposal.docx")
	require.NoError(t, os.WriteFile(input, proposalDOCX(t, sampleLines...), 0644))

	var out bytes.Buffer
	result, err := p.Run(context.Background(), RunOptions{
		InputPath:  input,
		ReasonCode: "higher_merit",
		Out:        &out,
	})
	require.NoError(t, err)

	assert.Empty(t, out.String())
	assert.Empty(t, result.HTML)
}

func TestRun_MissingFile(t *testing.T) {
	p, _ := newTestPipeline()

	_, err := p.Run(context.Background(), RunOptions{
		InputPath:  filepath.Join(t.TempDir(), "missing.pdf"),
		ReasonCode: "higher_merit",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read proposal")
}

func TestRun_CanceledContext(t *testing.T) {
	p, _ := newTestPipeline()
	input := filepath.Join(t.TempDir(), "proposal.docx")
	require.NoError(t, os.WriteFile(input, proposalDOCX(t, sampleLines...), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Run(ctx, RunOptions{InputPath: input, ReasonCode: "higher_merit"})
	assert.ErrorIs(t, err, context.Canceled)
}

// eagerSink stores every event without looking at the context.
type eagerSink struct {
	events []metrics.Event
}

func (s *eagerSink) Record(_ context.Context, event metrics.Event) error {
	s.events = append(s.events, event)
	return nil
}

func TestCanceledRequestRecordsNoEvents(t *testing.T) {
	sink := &eagerSink{}
	recorder := metrics.NewRecorder(sink)
	p := New(
		ingestion.NewExtractor(),
		parsing.NewSummarizer(nil),
		drafting.NewGenerator(nil, drafting.WithRecorder(recorder)),
		WithRecorder(recorder),
		WithMaxUploadBytes(1<<16),
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Upload(ctx, Document{Data: proposalDOCX(t, sampleLines...), Filename: "proposal.docx", SessionID: "s-1"})
	assert.ErrorIs(t, err, context.Canceled)

	_, err = p.Upload(ctx, Document{Data: bytes.Repeat([]byte("x"), 1<<16+1), Filename: "big.docx", SessionID: "s-1"})
	var tooLarge *TooLargeError
	assert.ErrorAs(t, err, &tooLarge)

	p.Analyze(ctx, types.AnalyzeRequest{TextContent: strings.Join(sampleLines, "\n"), SessionID: "s-1"})
	p.Generate(ctx, types.GenerateRequest{ReasonCode: "higher_merit", SessionID: "s-1"})

	assert.Empty(t, sink.events)
}

func TestUpload_CanceledExtractionIsNotAnUploadError(t *testing.T) {
	p, sink := newTestPipeline()
	p.recordError(context.Background(), metrics.EventUpload, "s-2", context.Canceled)
	p.recordError(context.Background(), metrics.EventUpload, "s-2", fmt.Errorf("read pdf: %w", context.DeadlineExceeded))
	assert.Empty(t, sink.Events())

	p.recordError(context.Background(), metrics.EventUpload, "s-2", errors.New("zip: not a valid zip file"))
	events := sink.Events()
	require.Len(t, events, 1)
	assert.Equal(t, metrics.ErrorEvent(metrics.EventUpload), events[0].Type)
}
