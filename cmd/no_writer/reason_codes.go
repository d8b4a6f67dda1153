package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/joshuamtm/nyct-no-writer-mvp/internal/types"
)

var reasonCodesCmd = &cobra.Command{
	Use:   "reason-codes",
	Short: "List the decline reason codes",
	RunE: func(cmd *cobra.Command, _ []string) error {
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, r := range types.AllReasons() {
			_, _ = fmt.Fprintf(tw, "%s\t%s\n", r.Value, r.Label)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(reasonCodesCmd)
}
