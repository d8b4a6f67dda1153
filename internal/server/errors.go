package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/joshuamtm/nyct-no-writer-mvp/internal/ingestion"
	"github.com/joshuamtm/nyct-no-writer-mvp/internal/pipeline"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		unsupported *ingestion.UnsupportedFormatError
		failed      *ingestion.ExtractionFailedError
		tooLarge    *pipeline.TooLargeError
		maxBytes    *http.MaxBytesError
		invalid     *ErrValidation
		fields      validator.ValidationErrors
	)

	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &tooLarge), errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &unsupported), errors.As(err, &invalid), errors.As(err, &fields):
		return http.StatusBadRequest
	case errors.As(err, &failed):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// errorMessage is the client-facing text for err. Validation failures are
// listed per field by their JSON names.
func errorMessage(err error) string {
	var fields validator.ValidationErrors
	if errors.As(err, &fields) {
		msgs := make([]string, 0, len(fields))
		for _, fe := range fields {
			msgs = append(msgs, fmt.Sprintf("%s failed on '%s'", fieldName(fe), fe.Tag()))
		}
		return "validation error: " + strings.Join(msgs, "; ")
	}

	var unsupported *ingestion.UnsupportedFormatError
	if errors.As(err, &unsupported) {
		return fmt.Sprintf("Unsupported file type: %s. Only PDF and Word documents are allowed.", unsupported.Format)
	}
	var tooLarge *pipeline.TooLargeError
	if errors.As(err, &tooLarge) {
		return tooLargeMessage(tooLarge.Limit)
	}
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return tooLargeMessage(maxBytes.Limit)
	}
	return err.Error()
}

var fieldNames = map[string]string{
	"ReasonCode":        "reason_code",
	"SpecificReasons":   "specific_reasons",
	"SessionID":         "session_id",
	"TextContent":       "text_content",
	"ProposalHash":      "proposal_hash",
	"InternalRationale": "internal_rationale",
	"ExternalReply":     "external_reply",
}

func fieldName(fe validator.FieldError) string {
	if name, ok := fieldNames[fe.Field()]; ok {
		return name
	}
	return fe.Field()
}

func tooLargeMessage(limit int64) string {
	return fmt.Sprintf("File too large. Maximum size is %dMB.", limit/(1024*1024))
}
