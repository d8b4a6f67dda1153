package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/joshuamtm/nyct-no-writer-mvp/internal/observability"
	"github.com/joshuamtm/nyct-no-writer-mvp/internal/pipeline"
	"github.com/joshuamtm/nyct-no-writer-mvp/internal/types"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Summarize a proposal into structured fields",
	Long: `Extract, normalize and summarize a proposal. The summary is written as JSON
to --out, or to stdout when --out is not set.

An AI provider is used when one is configured; otherwise the summary is built
from simple heuristics.`,
	RunE: runSummarize,
}

var (
	summarizeIn  string
	summarizeOut string
)

func init() {
	summarizeCmd.Flags().StringVarP(&summarizeIn, "in", "i", "", "Path to the proposal (.pdf or .docx)")
	summarizeCmd.Flags().StringVarP(&summarizeOut, "out", "o", "", "Output path for the summary JSON")

	_ = summarizeCmd.MarkFlagRequired("in")

	rootCmd.AddCommand(summarizeCmd)
}

func runSummarize(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	data, err := os.ReadFile(summarizeIn)
	if err != nil {
		return fmt.Errorf("failed to read proposal: %w", err)
	}

	sessionID := pipeline.NewSessionID()
	upload, err := a.pipeline.Upload(ctx, pipeline.Document{
		Data:      data,
		Filename:  filepath.Base(summarizeIn),
		SessionID: sessionID,
	})
	if err != nil {
		return fmt.Errorf("failed to extract %s: %w", summarizeIn, err)
	}

	analysis := a.pipeline.Analyze(ctx, types.AnalyzeRequest{
		ProposalHash: upload.ProposalHash,
		TextContent:  upload.TextContent,
		Filename:     upload.Filename,
		SessionID:    sessionID,
	})
	if verbose {
		observability.NewPrinter(cmd.ErrOrStderr()).PrintSummary(&analysis.Summary)
	}

	summaryJSON, err := json.MarshalIndent(analysis.Summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}

	if summarizeOut == "" {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(summaryJSON))
		return nil
	}
	if err := os.WriteFile(summarizeOut, summaryJSON, 0644); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Summary: %s\n", summarizeOut)
	return nil
}
