package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuamtm/nyct-no-writer-mvp/internal/db"
	"github.com/joshuamtm/nyct-no-writer-mvp/internal/metrics"
	"github.com/joshuamtm/nyct-no-writer-mvp/internal/observability"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Report usage from the metrics store",
	Long: `Print the usage summary and daily breakdown for the last --days days as JSON.
With --xlsx the same data is also written as a spreadsheet.`,
	RunE: runMetrics,
}

var (
	metricsDays int
	metricsXLSX string
)

func init() {
	metricsCmd.Flags().IntVar(&metricsDays, "days", 30, "Reporting period in days")
	metricsCmd.Flags().StringVar(&metricsXLSX, "xlsx", "", "Also write an .xlsx workbook to this path")
	rootCmd.AddCommand(metricsCmd)
}

// metricsReport is the JSON printed by the metrics command.
type metricsReport struct {
	Summary metrics.Summary     `json:"summary"`
	Daily   []metrics.DailyStat `json:"daily"`
}

func runMetrics(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	if metricsDays < 1 {
		return fmt.Errorf("--days must be at least 1, got %d", metricsDays)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.MetricsEnabled() {
		return errors.New("metrics are disabled (ENABLE_METRICS=false)")
	}

	store, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open metrics store: %w", err)
	}
	defer func() { _ = store.Close() }()

	agg := metrics.NewAggregator(store)
	summary, err := agg.Summary(ctx, metricsDays)
	if err != nil {
		return err
	}
	daily, err := agg.Daily(ctx, metricsDays)
	if err != nil {
		return err
	}

	if metricsXLSX != "" {
		f, err := os.Create(metricsXLSX)
		if err != nil {
			return fmt.Errorf("failed to create workbook: %w", err)
		}
		if err := metrics.WriteWorkbook(f, summary, daily); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to write workbook: %w", err)
		}
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Workbook: %s\n", metricsXLSX)
	}

	if verbose {
		observability.NewPrinter(cmd.ErrOrStderr()).PrintMetrics(&summary)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(metricsReport{Summary: summary, Daily: daily})
}
