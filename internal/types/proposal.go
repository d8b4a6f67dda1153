// Package types provides type definitions for structured data used throughout the decline drafting system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "strings"

// ProposalSummary is the structured extraction of a grant proposal.
// Every field is independently optional; nil means the proposal did not state it.
type ProposalSummary struct {
	OrganizationName    *string  `json:"organizationName"`
	OrganizationMission *string  `json:"organizationMission"`
	FoundingYear        *string  `json:"foundingYear"`
	GrantAmount         *string  `json:"grantAmount"`
	ProjectDescription  *string  `json:"projectDescription"`
	TargetPopulation    *string  `json:"targetPopulation"`
	GeographicScope     *string  `json:"geographicScope"`
	CurrentBudget       *string  `json:"currentBudget"`
	ProjectBudget       *string  `json:"projectBudget"`
	PeopleServed        *string  `json:"peopleServed"`
	Timeline            *string  `json:"timeline"`
	KeyDeliverables     []string `json:"keyDeliverables"`
	KeyPartners         []string `json:"keyPartners"`
	EvaluationMethods   *string  `json:"evaluationMethods"`
}

// StringPtr returns a pointer to s, or nil when s is blank.
func StringPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// ValueOr dereferences p, returning def when p is nil or blank.
func ValueOr(p *string, def string) string {
	if p == nil || strings.TrimSpace(*p) == "" {
		return def
	}
	return *p
}

// OrganizationOr returns the organization name or def.
func (s ProposalSummary) OrganizationOr(def string) string {
	return ValueOr(s.OrganizationName, def)
}

// Compact returns a copy with blank strings turned into nil and empty list items removed.
func (s ProposalSummary) Compact() ProposalSummary {
	out := s
	for _, f := range []**string{
		&out.OrganizationName, &out.OrganizationMission, &out.FoundingYear,
		&out.GrantAmount, &out.ProjectDescription, &out.TargetPopulation,
		&out.GeographicScope, &out.CurrentBudget, &out.ProjectBudget,
		&out.PeopleServed, &out.Timeline, &out.EvaluationMethods,
	} {
		if *f != nil {
			*f = StringPtr(**f)
		}
	}
	out.KeyDeliverables = compactList(s.KeyDeliverables)
	out.KeyPartners = compactList(s.KeyPartners)
	return out
}

// PresentFields counts the populated fields. Used for logging extraction quality.
func (s ProposalSummary) PresentFields() int {
	n := 0
	for _, f := range []*string{
		s.OrganizationName, s.OrganizationMission, s.FoundingYear,
		s.GrantAmount, s.ProjectDescription, s.TargetPopulation,
		s.GeographicScope, s.CurrentBudget, s.ProjectBudget,
		s.PeopleServed, s.Timeline, s.EvaluationMethods,
	} {
		if f != nil {
			n++
		}
	}
	if len(s.KeyDeliverables) > 0 {
		n++
	}
	if len(s.KeyPartners) > 0 {
		n++
	}
	return n
}

func compactList(items []string) []string {
	if items == nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
