package ingestion

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var separatorRun = regexp.MustCompile(`[_\-=]{10,}`)

// Normalize cleans extracted text into its canonical form: trimmed lines with
// single spaces, no blank lines, and no decorative separator runs.
// Normalize(Normalize(x)) == Normalize(x).
func Normalize(content string) string {
	if content == "" {
		return ""
	}

	result := normalizeLines(content)
	stripped := separatorRun.ReplaceAllString(result, "")
	if stripped == result {
		return result
	}
	// Removing a separator can leave blank lines or doubled spaces behind.
	return normalizeLines(stripped)
}

// normalizeLines trims every line, collapses internal whitespace and drops empty lines.
// Whitespace is any Unicode space, so non-breaking and em spaces from PDFs collapse too.
func normalizeLines(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		words := strings.Fields(line)
		if len(words) == 0 {
			continue
		}
		cleaned = append(cleaned, strings.Join(words, " "))
	}
	return strings.Join(cleaned, "\n")
}

// IngestFromFile reads a document, extracts its text and normalizes it.
func IngestFromFile(ctx context.Context, extractor *Extractor, path string) (string, *Metadata, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, fmt.Errorf("file not found: %w", err)
		}
		return "", nil, fmt.Errorf("failed to read file: %w", err)
	}

	format := FormatFromFilename(path)
	raw, err := extractor.Extract(ctx, content, format)
	if err != nil {
		return "", nil, err
	}

	cleanedText := Normalize(raw)
	metadata := NewMetadata(content, filepath.Base(path), format, cleanedText)

	return cleanedText, metadata, nil
}

// WriteOutput writes the cleaned text and metadata to output files
func WriteOutput(outDir string, cleanedText string, metadata *Metadata) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	cleanedPath := filepath.Join(outDir, "proposal.cleaned.txt")
	if err := os.WriteFile(cleanedPath, []byte(cleanedText), 0644); err != nil {
		return fmt.Errorf("failed to write cleaned text: %w", err)
	}

	metaJSON, err := metadata.ToJSON()
	if err != nil {
		return err
	}
	metaPath := filepath.Join(outDir, "proposal.meta.json")
	if err := os.WriteFile(metaPath, metaJSON, 0644); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}

	return nil
}
