// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/joshuamtm/nyct-no-writer-mvp/internal/metrics"
	"github.com/joshuamtm/nyct-no-writer-mvp/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
	// previewLines caps how much of a drafted text is echoed
	previewLines = 8
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	r := []rune(s)
	return string(r[:limit-3]) + "..."
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintStage prints a one-line progress marker.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintStage(step int, total int, name string) {
	fmt.Fprintf(p.out, "[%d/%d] %s\n", step, total, name)
}

// PrintExtraction outputs what was read from the uploaded document.
func (p *Printer) PrintExtraction(filename string, wordCount int, hash string) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("File:   %s\n", filename))
	sb.WriteString(fmt.Sprintf("Words:  %d\n", wordCount))
	if len(hash) > 16 {
		hash = hash[:16]
	}
	sb.WriteString(fmt.Sprintf("Hash:   %s", hash))

	p.printBox("EXTRACTED PROPOSAL", sb.String())
}

// PrintSummary outputs the populated fields of a proposal summary.
func (p *Printer) PrintSummary(summary *types.ProposalSummary) {
	if summary == nil {
		return
	}

	facts := []struct {
		label string
		value *string
	}{
		{"Organization", summary.OrganizationName},
		{"Mission", summary.OrganizationMission},
		{"Founded", summary.FoundingYear},
		{"Amount", summary.GrantAmount},
		{"Project", summary.ProjectDescription},
		{"Population", summary.TargetPopulation},
		{"Scope", summary.GeographicScope},
		{"Org budget", summary.CurrentBudget},
		{"Proj budget", summary.ProjectBudget},
		{"Served", summary.PeopleServed},
		{"Timeline", summary.Timeline},
		{"Evaluation", summary.EvaluationMethods},
	}

	var sb strings.Builder
	for _, f := range facts {
		if f.value == nil {
			continue
		}
		sb.WriteString(fmt.Sprintf("%-12s %s\n", f.label+":", truncate(*f.value, 40)))
	}
	writeList(&sb, "Deliverables", summary.KeyDeliverables)
	writeList(&sb, "Partners", summary.KeyPartners)

	content := strings.TrimSuffix(sb.String(), "\n")
	if content == "" {
		content = "(no fields extracted)"
	}
	p.printBox("PROPOSAL SUMMARY", content)
}

func writeList(sb *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString("\n" + title + ":\n")
	count := min(len(items), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", truncate(items[i], 50)))
	}
	if len(items) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-maxItemsToShow))
	}
}

// PrintOutput outputs the drafted memo and letter.
func (p *Printer) PrintOutput(reason types.DeclineReason, output *types.GeneratedOutput) {
	if output == nil {
		return
	}

	p.printBox(fmt.Sprintf("INTERNAL MEMO (%s)", reason.Label()), preview(output.InternalRationale))
	p.printBox(fmt.Sprintf("EXTERNAL LETTER (%d ms)", output.GenerationTimeMS), preview(output.ExternalReply))
}

func preview(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) <= previewLines {
		return strings.Join(lines, "\n")
	}
	return strings.Join(lines[:previewLines], "\n") + fmt.Sprintf("\n... %d more lines", len(lines)-previewLines)
}

// PrintMetrics outputs an aggregated metrics summary.
func (p *Printer) PrintMetrics(summary *metrics.Summary) {
	if summary == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Period:       last %d days\n", summary.PeriodDays))
	sb.WriteString(fmt.Sprintf("Uploads:      %d\n", summary.TotalUploads))
	sb.WriteString(fmt.Sprintf("Generations:  %d\n", summary.TotalGenerations))
	sb.WriteString(fmt.Sprintf("Sessions:     %d\n", summary.UniqueSessions))
	sb.WriteString(fmt.Sprintf("Avg analysis: %.2f ms\n", summary.AverageAnalysisTimeMS))
	sb.WriteString(fmt.Sprintf("Avg generate: %.2f ms\n", summary.AverageGenerationTimeMS))
	sb.WriteString(fmt.Sprintf("Errors:       %d (%.2f%%)\n", summary.ErrorCount, summary.ErrorRate))

	if len(summary.TopDeclineReasons) > 0 {
		sb.WriteString("\nTop decline reasons:\n")
		for i, rc := range summary.TopDeclineReasons {
			sb.WriteString(fmt.Sprintf("#%d  %-28s %d\n", i+1, types.DeclineReason(rc.Reason).Label(), rc.Count))
		}
	}

	p.printBox("USAGE METRICS", strings.TrimSuffix(sb.String(), "\n"))
}
