package parsing

import "fmt"

// snippetLength bounds the reply excerpt kept on a MalformedResponseError.
const snippetLength = 80

// ExtractionCallError is returned when the provider request for a summary fails.
type ExtractionCallError struct {
	Provider string
	Cause    error
}

func (e *ExtractionCallError) Error() string {
	return fmt.Sprintf("summary extraction via %s failed: %v", e.Provider, e.Cause)
}

func (e *ExtractionCallError) Unwrap() error {
	return e.Cause
}

// MalformedResponseError is returned when a provider reply cannot be read as a
// summary object at all. Individual bad fields are dropped, not reported here.
type MalformedResponseError struct {
	Reason string
	// Snippet is the start of the cleaned reply.
	Snippet string
	Cause   error
}

func (e *MalformedResponseError) Error() string {
	msg := fmt.Sprintf("malformed summary response (%s) near %q", e.Reason, e.Snippet)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Cause
}

func malformed(reason, reply string, cause error) *MalformedResponseError {
	return &MalformedResponseError{Reason: reason, Snippet: truncateRunes(reply, snippetLength), Cause: cause}
}
