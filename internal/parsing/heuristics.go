package parsing

import (
	"regexp"
	"strings"

	"github.com/joshuamtm/nyct-no-writer-mvp/internal/types"
)

const (
	// DefaultOrganizationName is used when no organization line is found.
	DefaultOrganizationName = "Organization"
	// DescriptionLength bounds the projectDescription of a heuristic summary.
	DescriptionLength = 500

	orgScanLines = 20
)

var currencyPattern = regexp.MustCompile(`\$[\d,]+(?:\.\d{2})?`)

// ExtractOrganizationName looks for an "Organization: ..." or "Applicant: ..."
// line within the first 20 lines of text.
func ExtractOrganizationName(text string) string {
	lines := strings.Split(text, "\n")
	if len(lines) > orgScanLines {
		lines = lines[:orgScanLines]
	}
	for _, line := range lines {
		lower := strings.ToLower(line)
		if !strings.Contains(lower, "organization") && !strings.Contains(lower, "applicant") {
			continue
		}
		_, after, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		if name := strings.TrimSpace(after); name != "" {
			return name
		}
	}
	return DefaultOrganizationName
}

// ExtractGrantAmount returns the first dollar amount in text, or "" if none.
func ExtractGrantAmount(text string) string {
	return currencyPattern.FindString(text)
}

// HeuristicSummary builds the minimal summary used without a provider and
// whenever the provider path fails: organization name, grant amount and a
// truncated project description. Every other field is absent.
func HeuristicSummary(text string) types.ProposalSummary {
	return types.ProposalSummary{
		OrganizationName:   types.StringPtr(ExtractOrganizationName(text)),
		GrantAmount:        types.StringPtr(ExtractGrantAmount(text)),
		ProjectDescription: types.StringPtr(truncateRunes(text, DescriptionLength)),
	}
}

// truncateRunes returns the first n characters of s.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
