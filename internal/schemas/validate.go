// Package schemas checks proposal summary documents against the embedded
// JSON Schema.
package schemas

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed proposal_summary.schema.json
var proposalSummarySchema string

const rootField = "(root)"

var summarySchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(proposalSummarySchema))
})

// ProposalSummarySchema returns the embedded proposal summary schema.
func ProposalSummarySchema() string {
	return proposalSummarySchema
}

// Violation is one schema failure at a dotted field path.
type Violation struct {
	Field   string
	Message string
}

// SummaryError lists every violation found in a summary document.
type SummaryError struct {
	Violations []Violation
}

func (e *SummaryError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.Field + ": " + v.Message
	}
	return "summary does not match schema: " + strings.Join(parts, "; ")
}

// Fields returns the distinct top-level summary fields that failed, sorted.
// Document-level failures such as a missing key are not attributed to a field.
func (e *SummaryError) Fields() []string {
	seen := map[string]bool{}
	for _, v := range e.Violations {
		field, _, _ := strings.Cut(v.Field, ".")
		if field != rootField {
			seen[field] = true
		}
	}
	out := make([]string, 0, len(seen))
	for field := range seen {
		out = append(out, field)
	}
	sort.Strings(out)
	return out
}

// DocumentError reports input that could not be checked at all: unreadable,
// not JSON, or checked against a schema that does not compile.
type DocumentError struct {
	Source string
	Cause  error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("cannot check %s: %v", e.Source, e.Cause)
}

func (e *DocumentError) Unwrap() error {
	return e.Cause
}

// ValidateProposalSummary checks summary JSON against the embedded schema.
func ValidateProposalSummary(doc string) error {
	schema, err := summarySchema()
	if err != nil {
		return &DocumentError{Source: "proposal summary schema", Cause: err}
	}
	return check(schema, "summary", doc)
}

// ValidateProposalSummaryFile checks a summary JSON file against the embedded schema.
func ValidateProposalSummaryFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("summary file not found: %s", path)
	}
	if err != nil {
		return &DocumentError{Source: path, Cause: err}
	}
	return ValidateProposalSummary(string(data))
}

func check(schema *gojsonschema.Schema, source, doc string) error {
	result, err := schema.Validate(gojsonschema.NewStringLoader(doc))
	if err != nil {
		return &DocumentError{Source: source, Cause: err}
	}
	if result.Valid() {
		return nil
	}

	serr := &SummaryError{Violations: make([]Violation, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = rootField
		}
		serr.Violations = append(serr.Violations, Violation{Field: field, Message: desc.Description()})
	}
	return serr
}
