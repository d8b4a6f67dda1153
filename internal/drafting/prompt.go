package drafting

import (
	"strings"

	"github.com/joshuamtm/nyct-no-writer-mvp/internal/types"
)

// memoPromptValues fills the memo prompt. The opening line and the fact rules
// follow which summary fields are present, the same way TemplateMemo does.
func memoPromptValues(summary types.ProposalSummary, reason types.DeclineReason, specificReasons, summaryJSON string) map[string]string {
	values := map[string]string{
		"ReasonLabel":     reason.Label(),
		"SpecificReasons": specificReasons,
		"SummaryJSON":     summaryJSON,
	}

	if summary.FoundingYear != nil {
		values["FoundedClause"] = ", founded in [year],"
		values["FoundingRule"] = "Write the founding year exactly as given in the summary (" + strings.TrimSpace(*summary.FoundingYear) + ")."
	} else {
		values["FoundedClause"] = ""
		values["FoundingRule"] = `The summary has no founding year. Leave out the "founded in" clause entirely and do not guess a year.`
	}

	var clause strings.Builder
	var include, exclude []string
	if summary.ProjectBudget != nil {
		clause.WriteString(" The project budget is [project budget].")
		include = append(include, "project budget")
	} else {
		exclude = append(exclude, "project budget")
	}
	if summary.CurrentBudget != nil {
		clause.WriteString(" The organization's current operating budget is [current budget].")
		include = append(include, "current operating budget")
	} else {
		exclude = append(exclude, "current operating budget")
	}
	values["BudgetClause"] = clause.String()
	values["BudgetRule"] = budgetRule(include, exclude)

	return values
}

func budgetRule(include, exclude []string) string {
	if len(include) == 0 {
		return "The summary has no budget figures. Do not write any budget sentence."
	}
	rule := "Include a sentence for the " + strings.Join(include, " and the ") + ", using the summary's figures."
	if len(exclude) > 0 {
		rule += " The summary has no " + strings.Join(exclude, " or ") + ", so do not mention one."
	}
	return rule
}
