package drafting

import (
	"strings"

	"github.com/joshuamtm/nyct-no-writer-mvp/internal/types"
)

// Placeholders used when a summary field is absent.
const (
	DefaultOrganization = "The organization"
	DefaultMission      = "serves the community"
	DefaultAmount       = "requested funding"
	DefaultDescription  = "their proposed project"
	DefaultAddressee    = "Applicant"

	unknownReasonPhrase = "the specified reason"
)

const letterBody = `Thank you for your proposal submission to The New York Community Trust. We genuinely appreciate your organization's dedication to serving the community and the considerable time you invested in preparing your application.

After careful review by our program team and board, we have determined that we will not be able to provide funding for this request at this time. While we recognize the important work your organization does, this proposal does not align with our current funding priorities.

We encourage you to review our updated funding guidelines on our website and invite you to consider applying for future opportunities that may better align with your organization's mission and our strategic priorities.

Thank you again for considering The New York Community Trust as a potential partner in your work.

Best regards,
NYCT Program Team`

// TemplateMemo renders the internal memo without a provider.
func TemplateMemo(summary types.ProposalSummary, reason types.DeclineReason, specificReasons string) string {
	var sb strings.Builder

	sb.WriteString(types.ValueOr(summary.OrganizationName, DefaultOrganization))
	if summary.FoundingYear != nil {
		sb.WriteString(", founded in ")
		sb.WriteString(strings.TrimSpace(*summary.FoundingYear))
		sb.WriteString(",")
	}
	sb.WriteString(" ")
	sb.WriteString(sentence(types.ValueOr(summary.OrganizationMission, DefaultMission)))

	sb.WriteString(" This ")
	sb.WriteString(types.ValueOr(summary.GrantAmount, DefaultAmount))
	sb.WriteString(" request is to support ")
	sb.WriteString(sentence(types.ValueOr(summary.ProjectDescription, DefaultDescription)))

	if summary.ProjectBudget != nil {
		sb.WriteString(" The project budget is ")
		sb.WriteString(sentence(*summary.ProjectBudget))
	}
	if summary.CurrentBudget != nil {
		sb.WriteString(" The organization's current operating budget is ")
		sb.WriteString(sentence(*summary.CurrentBudget))
	}

	sb.WriteString("\n\nI recommend this request be declined for ")
	sb.WriteString(reasonPhrase(reason))
	sb.WriteString(".")
	if specific := strings.TrimSpace(specificReasons); specific != "" {
		sb.WriteString(" ")
		sb.WriteString(specific)
	}

	sb.WriteString("\n\nRationale: ")
	sb.WriteString(reason.Label())
	return sb.String()
}

// TemplateLetter renders the external letter. Only the salutation varies.
func TemplateLetter(organization string) string {
	if strings.TrimSpace(organization) == "" {
		organization = DefaultAddressee
	}
	return "Dear " + strings.TrimSpace(organization) + ",\n\n" + letterBody
}

// reasonPhrase is the lower-cased label used mid-sentence.
func reasonPhrase(reason types.DeclineReason) string {
	if !reason.Known() {
		return unknownReasonPhrase
	}
	return strings.ToLower(reason.Label())
}

// sentence trims s and terminates it with exactly one period.
func sentence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, ".")
	return s + "."
}
