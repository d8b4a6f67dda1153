package ingestion

import (
	"path/filepath"
	"strings"
)

// Format identifies a document format the extractor understands.
type Format string

// Supported document formats
const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
)

// MIME types accepted for upload
const (
	MIMETypePDF  = "application/pdf"
	MIMETypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMETypeDOC  = "application/msword"
)

// FormatFromContentType maps a MIME type to a Format.
// Unrecognized types are returned verbatim so Extract can name them in its error.
func FormatFromContentType(contentType string) Format {
	mediaType := strings.ToLower(strings.TrimSpace(contentType))
	if idx := strings.Index(mediaType, ";"); idx >= 0 {
		mediaType = strings.TrimSpace(mediaType[:idx])
	}

	switch mediaType {
	case MIMETypePDF:
		return FormatPDF
	case MIMETypeDOCX, MIMETypeDOC:
		return FormatDOCX
	default:
		return Format(mediaType)
	}
}

// FormatFromFilename maps a file extension to a Format.
func FormatFromFilename(name string) Format {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	switch ext {
	case "pdf":
		return FormatPDF
	case "docx", "doc":
		return FormatDOCX
	default:
		return Format(ext)
	}
}

// Supported reports whether f can be extracted.
func (f Format) Supported() bool {
	return f == FormatPDF || f == FormatDOCX
}
