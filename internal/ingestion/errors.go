package ingestion

import "fmt"

// UnsupportedFormatError is returned when a document format is not recognized.
type UnsupportedFormatError struct {
	Format Format
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported file type: %q", string(e.Format))
}

// ExtractionFailedError is returned when every extraction strategy failed.
type ExtractionFailedError struct {
	Format Format
	Cause  error
}

func (e *ExtractionFailedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("text extraction failed for %s: %v", e.Format, e.Cause)
	}
	return fmt.Sprintf("text extraction failed for %s", e.Format)
}

func (e *ExtractionFailedError) Unwrap() error {
	return e.Cause
}
