package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuamtm/nyct-no-writer-mvp/internal/pipeline"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run the full drafting pipeline end-to-end",
	Long: `Takes one proposal through every stage: extraction -> normalization ->
summary -> memo and letter -> (optional) HTML decision packet.

Usage events are recorded to the configured metrics store.`,
	RunE: runPipelineCmd,
}

var (
	runIn      string
	runReason  string
	runContext string
	runHTML    string
	runSession string
)

func init() {
	runCommand.Flags().StringVarP(&runIn, "in", "i", "", "Path to the proposal (.pdf or .docx)")
	runCommand.Flags().StringVarP(&runReason, "reason", "r", "", "Decline reason code")
	runCommand.Flags().StringVar(&runContext, "context", "", "Specific reasons for the internal memo")
	runCommand.Flags().StringVar(&runHTML, "html", "", "Write the decision packet as HTML to this path")
	runCommand.Flags().StringVar(&runSession, "session", "", "Session id for the recorded events (default: random)")

	_ = runCommand.MarkFlagRequired("in")
	_ = runCommand.MarkFlagRequired("reason")

	rootCmd.AddCommand(runCommand)
}

func runPipelineCmd(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.pipeline.Run(ctx, pipeline.RunOptions{
		InputPath:       runIn,
		ReasonCode:      runReason,
		SpecificReasons: runContext,
		SessionID:       runSession,
		HTMLPath:        runHTML,
		Verbose:         true,
		Out:             cmd.OutOrStdout(),
	})
	if err != nil {
		return fmt.Errorf("pipeline failed: %w", err)
	}

	if verbose {
		writeOutput(cmd.OutOrStdout(), result.Output)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "\nDone in %d ms (session %s)\n",
		result.Upload.ExtractionTimeMS+result.Analysis.AnalysisTimeMS+result.Output.GenerationTimeMS,
		result.Upload.SessionID)
	return nil
}
