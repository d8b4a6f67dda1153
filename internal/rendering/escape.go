package rendering

import "strings"

// markdownSpecials are the characters goldmark would read as syntax.
const markdownSpecials = "\\`*_{}[]()<>#+-.!|~"

// EscapeMarkdown makes proposal text render literally. Carriage returns are
// dropped so Windows line endings from DOCX sources do not leak into output.
func EscapeMarkdown(text string) string {
	var b strings.Builder
	b.Grow(len(text) + len(text)/4)
	for _, r := range text {
		if r == '\r' {
			continue
		}
		if strings.ContainsRune(markdownSpecials, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// escapeCell escapes text for a single-line table cell.
func escapeCell(text string) string {
	return strings.Join(strings.Fields(EscapeMarkdown(text)), " ")
}
