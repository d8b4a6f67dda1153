package ingestion

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// LayoutStrategy reads PDF text row by row using glyph positions, which keeps
// columns and tables closer to their visual reading order.
type LayoutStrategy struct{}

// Name returns the strategy identifier.
func (LayoutStrategy) Name() string { return "layout" }

// Extract implements Strategy.
func (LayoutStrategy) Extract(data []byte) (text string, err error) {
	defer recoverPDF(&err)

	reader, err := openPDF(data)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		rows, err := page.GetTextByRow()
		if err != nil {
			return "", fmt.Errorf("read rows on page %d: %w", i, err)
		}

		// Higher Y is nearer the top of the page
		sort.SliceStable(rows, func(a, b int) bool {
			return rows[a].Position > rows[b].Position
		})

		for _, row := range rows {
			line := joinRow(row.Content)
			if strings.TrimSpace(line) == "" {
				continue
			}
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
	}

	return sb.String(), nil
}

// StreamStrategy reads text in content-stream order.
type StreamStrategy struct{}

// Name returns the strategy identifier.
func (StreamStrategy) Name() string { return "stream" }

// Extract implements Strategy.
func (StreamStrategy) Extract(data []byte) (text string, err error) {
	defer recoverPDF(&err)

	reader, err := openPDF(data)
	if err != nil {
		return "", err
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read plain text: %w", err)
	}

	content, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("read plain text: %w", err)
	}
	return string(content), nil
}

func openPDF(data []byte) (*pdf.Reader, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("open PDF: empty document")
	}
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open PDF: %w", err)
	}
	return reader, nil
}

// recoverPDF converts a panic inside the PDF library into an error.
// Malformed documents can trip index and nil checks deep in the parser.
func recoverPDF(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("pdf parser panic: %v", r)
	}
}

// joinRow concatenates the glyph runs of a row left to right, inserting a
// space where the horizontal gap is wider than a fraction of the font size.
func joinRow(texts pdf.TextHorizontal) string {
	if len(texts) == 0 {
		return ""
	}

	sorted := make([]pdf.Text, len(texts))
	copy(sorted, texts)
	sort.SliceStable(sorted, func(a, b int) bool { return sorted[a].X < sorted[b].X })

	var sb strings.Builder
	prevEnd := sorted[0].X
	for i, t := range sorted {
		if i > 0 {
			gap := t.X - prevEnd
			threshold := t.FontSize * 0.15
			if threshold <= 0 {
				threshold = 1
			}
			if gap > threshold && !endsWithSpace(sb.String()) && !strings.HasPrefix(t.S, " ") {
				sb.WriteByte(' ')
			}
		}
		sb.WriteString(t.S)
		prevEnd = t.X + t.W
	}
	return sb.String()
}

func endsWithSpace(s string) bool {
	return s != "" && (s[len(s)-1] == ' ' || s[len(s)-1] == '\t')
}
