package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuamtm/nyct-no-writer-mvp/internal/pipeline"
	"github.com/joshuamtm/nyct-no-writer-mvp/internal/schemas"
	"github.com/joshuamtm/nyct-no-writer-mvp/internal/types"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Draft the internal memo and the applicant letter",
	Long: `Draft the internal decline memo and the external letter from a summary JSON
file (as written by "summarize") and a decline reason code.

The --context text appears only in the internal memo, never in the letter.`,
	RunE: runGenerate,
}

var (
	generateSummary string
	generateReason  string
	generateContext string
	generateHTML    string
	generateJSON    bool
)

func init() {
	generateCmd.Flags().StringVarP(&generateSummary, "summary", "s", "", "Path to the summary JSON")
	generateCmd.Flags().StringVarP(&generateReason, "reason", "r", "", "Decline reason code (see reason-codes)")
	generateCmd.Flags().StringVar(&generateContext, "context", "", "Specific reasons for the internal memo")
	generateCmd.Flags().StringVar(&generateHTML, "html", "", "Also write the decision packet as HTML to this path")
	generateCmd.Flags().BoolVar(&generateJSON, "json", false, "Print the result as JSON")

	_ = generateCmd.MarkFlagRequired("summary")
	_ = generateCmd.MarkFlagRequired("reason")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	summary, err := readSummary(generateSummary)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	req := types.GenerateRequest{
		ReasonCode:      string(types.ParseDeclineReason(generateReason)),
		SpecificReasons: generateContext,
		ProposalSummary: summary,
		SessionID:       pipeline.NewSessionID(),
	}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}

	output := a.pipeline.Generate(ctx, req)
	if err := ctx.Err(); err != nil {
		return err
	}

	if generateHTML != "" {
		page, err := a.pipeline.Export(types.ExportRequest{
			GenerateRequest:   req,
			InternalRationale: output.InternalRationale,
			ExternalReply:     output.ExternalReply,
		})
		if err != nil {
			return err
		}
		if err := os.WriteFile(generateHTML, []byte(page), 0644); err != nil {
			return fmt.Errorf("failed to write decision packet: %w", err)
		}
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Decision packet: %s\n", generateHTML)
	}

	if generateJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(output)
	}
	writeOutput(cmd.OutOrStdout(), output)
	return nil
}

// readSummary loads a summary file, checking it against the summary schema first.
func readSummary(path string) (types.ProposalSummary, error) {
	var summary types.ProposalSummary

	content, err := os.ReadFile(path)
	if err != nil {
		return summary, fmt.Errorf("failed to read summary: %w", err)
	}
	if err := schemas.ValidateProposalSummary(string(content)); err != nil {
		return summary, fmt.Errorf("invalid summary %s: %w", path, err)
	}
	if err := json.Unmarshal(content, &summary); err != nil {
		return summary, fmt.Errorf("failed to parse summary: %w", err)
	}
	return summary.Compact(), nil
}

func writeOutput(w io.Writer, output types.GeneratedOutput) {
	_, _ = fmt.Fprintf(w, "=== INTERNAL MEMO ===\n%s\n\n", output.InternalRationale)
	_, _ = fmt.Fprintf(w, "=== EXTERNAL LETTER ===\n%s\n", output.ExternalReply)
}
