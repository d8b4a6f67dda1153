package drafting

import (
	"strings"
	"unicode/utf8"

	"github.com/joshuamtm/nyct-no-writer-mvp/internal/types"
)

// minLeakPhraseRunes is the shortest free-text context checked for leaks.
// Shorter text such as "." or "n/a" would match almost any letter.
const minLeakPhraseRunes = 4

// internalPhrases lists what an external letter must never contain. Unknown
// reason codes are caller input, not vocabulary, so only known codes and
// labels are checked.
func internalPhrases(reason types.DeclineReason, specificReasons string) []string {
	var phrases []string
	if reason.Known() {
		phrases = append(phrases, string(reason), reason.Label())
	}
	if specific := strings.TrimSpace(specificReasons); utf8.RuneCountInString(specific) >= minLeakPhraseRunes {
		phrases = append(phrases, specific)
	}
	return phrases
}

// leakedPhrases returns the phrases found in text (case-insensitive).
func leakedPhrases(text string, phrases []string) []string {
	if len(phrases) == 0 {
		return nil
	}

	normalizedText := strings.ToLower(text)

	var found []string
	seen := make(map[string]bool)
	for _, phrase := range phrases {
		normalized := strings.ToLower(strings.TrimSpace(phrase))
		if normalized == "" || seen[normalized] {
			continue
		}
		if strings.Contains(normalizedText, normalized) {
			found = append(found, strings.TrimSpace(phrase))
			seen[normalized] = true
		}
	}
	return found
}
