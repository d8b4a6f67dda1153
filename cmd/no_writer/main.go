// Package main provides the no_writer command: the HTTP API server and the
// operator tools for drafting grant decline memos and letters.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "no_writer",
	Short: "Grant decline drafting assistant",
	Long: `no_writer turns a grant proposal (PDF or Word) and a decline reason into an
internal decline memo and a courteous letter to the applicant.

Configuration is read from the environment (and .env), optionally overlaid on a
JSON or YAML file passed with --config.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a JSON or YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print detailed progress and debug logs")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
