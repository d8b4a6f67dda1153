package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuamtm/nyct-no-writer-mvp/internal/ingestion"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract and normalize the text of a proposal",
	Long: `Extract the text of a PDF or Word proposal and normalize it.

Without --out the cleaned text is written to stdout. With --out the cleaned text
and a metadata file are written to that directory.`,
	RunE: runExtract,
}

var (
	extractIn  string
	extractOut string
)

func init() {
	extractCmd.Flags().StringVarP(&extractIn, "in", "i", "", "Path to the proposal (.pdf or .docx)")
	extractCmd.Flags().StringVarP(&extractOut, "out", "o", "", "Output directory")

	_ = extractCmd.MarkFlagRequired("in")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, _ []string) error {
	logger, err := newLogger(verbose)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	extractor := ingestion.NewExtractor(ingestion.WithLogger(logger))
	cleanedText, metadata, err := ingestion.IngestFromFile(cmd.Context(), extractor, extractIn)
	if err != nil {
		return fmt.Errorf("failed to extract %s: %w", extractIn, err)
	}

	stderr := cmd.ErrOrStderr()
	_, _ = fmt.Fprintf(stderr, "Hash: %s\n", metadata.Hash)
	_, _ = fmt.Fprintf(stderr, "Words: %d\n", metadata.WordCount)

	if extractOut == "" {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), cleanedText)
		return nil
	}

	if err := ingestion.WriteOutput(extractOut, cleanedText, metadata); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	_, _ = fmt.Fprintf(stderr, "Cleaned text: %s/proposal.cleaned.txt\n", extractOut)
	_, _ = fmt.Fprintf(stderr, "Metadata: %s/proposal.meta.json\n", extractOut)
	return nil
}
