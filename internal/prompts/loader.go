// Package prompts holds the provider prompts for summary extraction and for
// drafting. Prompts live in JSON files embedded at compile time; user-side
// prompts are text/template strings filled in with Render.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"
	"text/template"
)

//go:embed *.json
var files embed.FS

// Prompt files.
const (
	SummaryFile  = "summary.json"
	DraftingFile = "drafting.json"
)

// Prompt keys.
const (
	ExtractionSystem = "extraction-system"
	MemoSystem       = "memo-system"
	MemoUser         = "memo-user"
	LetterSystem     = "letter-system"
	LetterUser       = "letter-user"
)

// Set is one prompt file: key to prompt text.
type Set map[string]string

var (
	mu     sync.Mutex
	loaded = map[string]Set{}
)

// Load returns the prompts in file, parsing it on first use.
func Load(file string) (Set, error) {
	mu.Lock()
	defer mu.Unlock()

	if set, ok := loaded[file]; ok {
		return set, nil
	}

	data, err := files.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", file, err)
	}
	var set Set
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", file, err)
	}
	loaded[file] = set
	return set, nil
}

// Get returns the prompt stored under key in file.
func Get(file, key string) (string, error) {
	set, err := Load(file)
	if err != nil {
		return "", err
	}
	prompt, ok := set[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found in %s", key, file)
	}
	return prompt, nil
}

// MustGet is Get for prompts that ship with the binary. It panics when the
// prompt is missing.
func MustGet(file, key string) string {
	prompt, err := Get(file, key)
	if err != nil {
		panic(fmt.Sprintf("failed to load prompt: %v", err))
	}
	return prompt
}

// Render fills the template stored under key with data. Every placeholder
// must have a value; values are inserted verbatim and never re-parsed.
func Render(file, key string, data map[string]string) (string, error) {
	text, err := Get(file, key)
	if err != nil {
		return "", err
	}

	tmpl, err := template.New(key).Option("missingkey=error").Parse(text)
	if err != nil {
		return "", fmt.Errorf("failed to parse prompt %s/%s: %w", file, key, err)
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("failed to render prompt %s/%s: %w", file, key, err)
	}
	return sb.String(), nil
}

// Keys lists the prompt keys in file, sorted.
func Keys(file string) ([]string, error) {
	set, err := Load(file)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys, nil
}
