package llm

import (
	"fmt"
	"strings"
)

// Field is one key of the JSON object a model is asked to return.
type Field struct {
	Key  string
	Hint string
	List bool
}

// ExtractionRequest asks a model to pull named facts out of a document as a
// single JSON object.
type ExtractionRequest struct {
	Task   string
	Fields []Field
}

var extractionRules = []string{
	"Use null when the document does not state a value.",
	"Copy facts from the text. Never estimate or embellish.",
	"Reply with the JSON object only, without code fences or commentary.",
}

// Prompt renders the request around text, which is fenced by <<< and >>>.
func (r ExtractionRequest) Prompt(text string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\nReply with one JSON object containing exactly these keys:\n", r.Task)
	for _, f := range r.Fields {
		kind := "string or null"
		if f.List {
			kind = "array of strings or null"
		}
		fmt.Fprintf(&b, "- %q (%s): %s\n", f.Key, kind, f.Hint)
	}

	b.WriteString("\nRules:\n")
	for _, rule := range extractionRules {
		b.WriteString("- " + rule + "\n")
	}
	fmt.Fprintf(&b, "\nDocument:\n<<<\n%s\n>>>\n", text)
	return b.String()
}

// ProposalSummaryRequest lists the fourteen proposal facts in summary order.
func ProposalSummaryRequest() ExtractionRequest {
	return ExtractionRequest{
		Task: "Extract the following facts from this grant proposal.",
		Fields: []Field{
			{Key: "organizationName", Hint: "legal or common name of the applicant"},
			{Key: "organizationMission", Hint: "one-sentence mission statement"},
			{Key: "foundingYear", Hint: "year the organization was founded"},
			{Key: "grantAmount", Hint: "amount requested, with the $ sign"},
			{Key: "projectDescription", Hint: "what the grant would pay for"},
			{Key: "targetPopulation", Hint: "who the project serves"},
			{Key: "geographicScope", Hint: "neighborhoods, boroughs or region served"},
			{Key: "currentBudget", Hint: "organization operating budget"},
			{Key: "projectBudget", Hint: "total project budget"},
			{Key: "peopleServed", Hint: "number of people the project reaches"},
			{Key: "keyDeliverables", Hint: "main outputs or outcomes", List: true},
			{Key: "timeline", Hint: "project duration or dates"},
			{Key: "keyPartners", Hint: "named partner organizations", List: true},
			{Key: "evaluationMethods", Hint: "how success will be measured"},
		},
	}
}
