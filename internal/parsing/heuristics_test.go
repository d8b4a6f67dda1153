package parsing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractOrganizationName(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "organization line",
			text: "Grant Proposal\nOrganization: Astoria Cat Rescue\nAmount: $5,000",
			want: "Astoria Cat Rescue",
		},
		{
			name: "applicant line, case insensitive",
			text: "APPLICANT NAME:   Bronx River Alliance  ",
			want: "Bronx River Alliance",
		},
		{
			name: "keeps text after the first colon",
			text: "Organization: Queens Arts: A Collective",
			want: "Queens Arts: A Collective",
		},
		{
			name: "skips matching lines without a colon",
			text: "About our organization\nOrganization: Harlem Food Bank",
			want: "Harlem Food Bank",
		},
		{
			name: "skips an empty value",
			text: "Organization:\nApplicant: Brooklyn Youth Chorus",
			want: "Brooklyn Youth Chorus",
		},
		{
			name: "no match",
			text: "A proposal with no labelled lines.",
			want: DefaultOrganizationName,
		},
		{
			name: "empty text",
			text: "",
			want: DefaultOrganizationName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractOrganizationName(tt.text))
		})
	}
}

func TestExtractOrganizationName_OnlyFirstTwentyLines(t *testing.T) {
	lines := make([]string, 0, 25)
	for i := 0; i < 20; i++ {
		lines = append(lines, "filler line")
	}
	lines = append(lines, "Organization: Too Late Inc")

	assert.Equal(t, DefaultOrganizationName, ExtractOrganizationName(strings.Join(lines, "\n")))

	lines[19] = "Organization: Just In Time"
	assert.Equal(t, "Just In Time", ExtractOrganizationName(strings.Join(lines, "\n")))
}

func TestExtractGrantAmount(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"thousands separators", "We request $75,000 over two years.", "$75,000"},
		{"with cents", "Total: $1,250.50 for supplies", "$1,250.50"},
		{"first match wins", "Budget $2,000,000; request $50,000", "$2,000,000"},
		{"plain digits", "Request of $900", "$900"},
		{"single cent digit not included", "$12.5 million", "$12"},
		{"no amount", "We need funding.", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractGrantAmount(tt.text))
		})
	}
}

func TestHeuristicSummary(t *testing.T) {
	text := "Organization: Astoria Cat Rescue\nWe request $12,500 to expand our trap-neuter-return program."
	summary := HeuristicSummary(text)

	require.NotNil(t, summary.OrganizationName)
	assert.Equal(t, "Astoria Cat Rescue", *summary.OrganizationName)
	require.NotNil(t, summary.GrantAmount)
	assert.Equal(t, "$12,500", *summary.GrantAmount)
	require.NotNil(t, summary.ProjectDescription)
	assert.Equal(t, text, *summary.ProjectDescription)

	assert.Nil(t, summary.OrganizationMission)
	assert.Nil(t, summary.FoundingYear)
	assert.Nil(t, summary.CurrentBudget)
	assert.Nil(t, summary.KeyDeliverables)
	assert.Equal(t, 3, summary.PresentFields())
}

func TestHeuristicSummary_NoAmountAndLongText(t *testing.T) {
	text := strings.Repeat("é", 800)
	summary := HeuristicSummary(text)

	assert.Nil(t, summary.GrantAmount)
	require.NotNil(t, summary.ProjectDescription)
	assert.Equal(t, DescriptionLength, len([]rune(*summary.ProjectDescription)))
	assert.Equal(t, DefaultOrganizationName, *summary.OrganizationName)
}

func TestHeuristicSummary_EmptyText(t *testing.T) {
	summary := HeuristicSummary("")
	assert.Nil(t, summary.ProjectDescription)
	assert.Nil(t, summary.GrantAmount)
	assert.Equal(t, DefaultOrganizationName, *summary.OrganizationName)
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "abc", truncateRunes("abcdef", 3))
	assert.Equal(t, "abc", truncateRunes("abc", 10))
	assert.Equal(t, "", truncateRunes("abc", 0))
	assert.Equal(t, "日本", truncateRunes("日本語", 2))
}
