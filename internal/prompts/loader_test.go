package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	prompt, err := Get(SummaryFile, ExtractionSystem)
	require.NoError(t, err)
	assert.Contains(t, prompt, "grant proposal analyst")

	_, err = Get("nonexistent.json", "some-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")

	_, err = Get(SummaryFile, "nonexistent-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGet(t *testing.T) {
	assert.Panics(t, func() { MustGet("nonexistent.json", "some-key") })
	assert.NotPanics(t, func() { assert.NotEmpty(t, MustGet(DraftingFile, MemoSystem)) })
}

func TestKeys(t *testing.T) {
	keys, err := Keys(DraftingFile)
	require.NoError(t, err)
	assert.Equal(t, []string{LetterSystem, LetterUser, MemoSystem, MemoUser}, keys)
}

func TestRender_Memo(t *testing.T) {
	prompt, err := Render(DraftingFile, MemoUser, map[string]string{
		"ReasonLabel":     "Geographic Scope Limitation",
		"SpecificReasons": "Serves Nassau County only.",
		"SummaryJSON":     `{"organizationName": "Queens Food Pantry"}`,
		"FoundedClause":   ", founded in [year],",
		"BudgetClause":    "",
		"FoundingRule":    "Write the founding year exactly as given in the summary (1987).",
		"BudgetRule":      "The summary has no budget figures. Do not write any budget sentence.",
	})
	require.NoError(t, err)

	assert.Contains(t, prompt, "declined for Geographic Scope Limitation. Serves Nassau County only.")
	assert.Contains(t, prompt, "Rationale: Geographic Scope Limitation")
	assert.Contains(t, prompt, `"organizationName": "Queens Food Pantry"`)
	assert.Contains(t, prompt, "[Organization name], founded in [year], [mission/description].")
	assert.Contains(t, prompt, "- The summary has no budget figures.")
	assert.NotContains(t, prompt, "{{")
}

func TestRender_ValuesAreNotReparsed(t *testing.T) {
	prompt, err := Render(DraftingFile, LetterUser, map[string]string{
		"OrganizationName": "{{.Secret}} Arts",
	})
	require.NoError(t, err)
	assert.Contains(t, prompt, `Dear {{.Secret}} Arts,`)
}

func TestRender_MissingValue(t *testing.T) {
	_, err := Render(DraftingFile, LetterUser, map[string]string{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to render prompt")
}

func TestEmbeddedPromptsParse(t *testing.T) {
	for _, file := range []string{SummaryFile, DraftingFile} {
		set, err := Load(file)
		require.NoError(t, err, file)
		assert.NotEmpty(t, set, file)
	}
}
