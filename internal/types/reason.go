package types

import "strings"

// DeclineReason is one of the fixed decline reason codes.
type DeclineReason string

// Decline reason codes, in display order.
const (
	ReasonProjectCapability  DeclineReason = "project_capability"
	ReasonGeneralOperating   DeclineReason = "general_operating"
	ReasonHigherMerit        DeclineReason = "higher_merit"
	ReasonOutsideGuidelines  DeclineReason = "outside_guidelines"
	ReasonIncompleteProposal DeclineReason = "incomplete_proposal"
	ReasonGeographicScope    DeclineReason = "geographic_scope"
	ReasonStrategicMismatch  DeclineReason = "strategic_mismatch"
	ReasonSustainability     DeclineReason = "sustainability"
)

// DefaultReasonLabel is the label for codes outside the known set.
const DefaultReasonLabel = "Decline Reason"

var reasonLabels = map[DeclineReason]string{
	ReasonProjectCapability:  "Project Capability Problems",
	ReasonGeneralOperating:   "General Operating Support",
	ReasonHigherMerit:        "Other Projects Higher Merit",
	ReasonOutsideGuidelines:  "Outside Approved Guidelines",
	ReasonIncompleteProposal: "Incomplete Proposal",
	ReasonGeographicScope:    "Geographic Scope Limitation",
	ReasonStrategicMismatch:  "Strategic Priority Mismatch",
	ReasonSustainability:     "Sustainability Concerns",
}

var reasonOrder = []DeclineReason{
	ReasonProjectCapability,
	ReasonGeneralOperating,
	ReasonHigherMerit,
	ReasonOutsideGuidelines,
	ReasonIncompleteProposal,
	ReasonGeographicScope,
	ReasonStrategicMismatch,
	ReasonSustainability,
}

// ParseDeclineReason normalizes user input ("HIGHER_MERIT", " higher_merit ") to a code.
// Unknown values are returned as-is so they can still resolve to the default label.
func ParseDeclineReason(s string) DeclineReason {
	return DeclineReason(strings.ToLower(strings.TrimSpace(s)))
}

// Known reports whether r is one of the fixed codes.
func (r DeclineReason) Known() bool {
	_, ok := reasonLabels[r]
	return ok
}

// Label returns the human-readable label, or DefaultReasonLabel for unknown codes.
func (r DeclineReason) Label() string {
	if label, ok := reasonLabels[r]; ok {
		return label
	}
	return DefaultReasonLabel
}

// ReasonOption is a code/label pair as listed to clients.
type ReasonOption struct {
	Value DeclineReason `json:"value"`
	Label string        `json:"label"`
}

// AllReasons returns every known reason in display order.
func AllReasons() []ReasonOption {
	out := make([]ReasonOption, 0, len(reasonOrder))
	for _, r := range reasonOrder {
		out = append(out, ReasonOption{Value: r, Label: reasonLabels[r]})
	}
	return out
}
