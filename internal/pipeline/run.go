package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/joshuamtm/nyct-no-writer-mvp/internal/observability"
	"github.com/joshuamtm/nyct-no-writer-mvp/internal/types"
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step    string `json:"step"`
	Index   int    `json:"index"`
	Total   int    `json:"total"`
	Message string `json:"message"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// RunOptions holds configuration for one end-to-end run
type RunOptions struct {
	InputPath       string
	ReasonCode      string
	SpecificReasons string
	SessionID       string
	// HTMLPath, when set, receives the rendered decision packet.
	HTMLPath   string
	Verbose    bool
	Out        io.Writer
	OnProgress ProgressCallback
}

// RunResult holds everything produced by Run.
type RunResult struct {
	Upload   types.UploadResult
	Analysis types.AnalyzeResult
	Output   types.GeneratedOutput
	HTML     string
}

// Run takes one proposal file through every stage.
func (p *Pipeline) Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	printer := observability.NewPrinter(out)

	total := 3
	if opts.HTMLPath != "" {
		total = 4
	}
	step := func(index int, name, message string) {
		if opts.OnProgress != nil {
			opts.OnProgress(ProgressEvent{Step: name, Index: index, Total: total, Message: message})
		}
		if opts.Verbose {
			printer.PrintStage(index, total, message)
		}
	}

	if opts.SessionID == "" {
		opts.SessionID = NewSessionID()
	}
	reason := types.ParseDeclineReason(opts.ReasonCode)
	if !reason.Known() {
		p.logger.Warn("pipeline.run.unknown_reason")
	}

	step(1, "extract", fmt.Sprintf("Extracting text from %s", filepath.Base(opts.InputPath)))
	data, err := os.ReadFile(opts.InputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read proposal: %w", err)
	}
	upload, err := p.Upload(ctx, Document{
		Data:      data,
		Filename:  filepath.Base(opts.InputPath),
		SessionID: opts.SessionID,
	})
	if err != nil {
		return nil, fmt.Errorf("extraction failed: %w", err)
	}
	if opts.Verbose {
		printer.PrintExtraction(upload.Filename, upload.WordCount, upload.ProposalHash)
	}

	step(2, "summarize", "Summarizing proposal")
	analysis := p.Analyze(ctx, types.AnalyzeRequest{
		ProposalHash: upload.ProposalHash,
		TextContent:  upload.TextContent,
		Filename:     upload.Filename,
		SessionID:    opts.SessionID,
	})
	if opts.Verbose {
		printer.PrintSummary(&analysis.Summary)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	step(3, "generate", fmt.Sprintf("Drafting memo and letter (%s)", reason.Label()))
	req := types.GenerateRequest{
		ReasonCode:      string(reason),
		SpecificReasons: opts.SpecificReasons,
		ProposalSummary: analysis.Summary,
		SessionID:       opts.SessionID,
	}
	output := p.Generate(ctx, req)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts.Verbose {
		printer.PrintOutput(reason, &output)
	}

	result := &RunResult{Upload: upload, Analysis: analysis, Output: output}

	if opts.HTMLPath != "" {
		step(4, "render", fmt.Sprintf("Rendering decision packet to %s", opts.HTMLPath))
		html, err := p.Export(types.ExportRequest{
			GenerateRequest:   req,
			InternalRationale: output.InternalRationale,
			ExternalReply:     output.ExternalReply,
		})
		if err != nil {
			return nil, err
		}
		if dir := filepath.Dir(opts.HTMLPath); dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create output directory: %w", err)
			}
		}
		if err := os.WriteFile(opts.HTMLPath, []byte(html), 0644); err != nil {
			return nil, fmt.Errorf("failed to write decision packet: %w", err)
		}
		result.HTML = html
	}

	return result, nil
}
