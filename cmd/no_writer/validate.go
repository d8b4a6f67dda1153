package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuamtm/nyct-no-writer-mvp/internal/schemas"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a summary JSON file against the summary schema",
	RunE:  runValidate,
}

var validateIn string

func init() {
	validateCmd.Flags().StringVarP(&validateIn, "in", "i", "", "Path to the summary JSON")
	_ = validateCmd.MarkFlagRequired("in")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	if err := schemas.ValidateProposalSummaryFile(validateIn); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s is a valid proposal summary\n", validateIn)
	return nil
}
