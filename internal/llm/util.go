package llm

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
)

// fence matches a Markdown code fence with an optional language tag.
var fence = regexp.MustCompile("(?s)^```[A-Za-z0-9_-]*\\s*\\n?(.*?)\\n?```")

// CleanJSONBlock returns the first complete JSON object in a model reply,
// stripping code fences, preambles and trailing chatter. Replies with no
// decodable object come back trimmed and otherwise unchanged.
func CleanJSONBlock(reply string) string {
	text := strings.TrimSpace(reply)
	if m := fence.FindStringSubmatch(text); m != nil {
		text = strings.TrimSpace(m[1])
	}

	for offset := 0; offset < len(text); {
		i := strings.IndexByte(text[offset:], '{')
		if i < 0 {
			break
		}
		if obj, ok := leadingObject(text[offset+i:]); ok {
			return obj
		}
		offset += i + 1
	}
	return text
}

// leadingObject decodes the JSON object at the start of s and returns its
// exact source text.
func leadingObject(s string) (string, bool) {
	var raw json.RawMessage
	if err := json.NewDecoder(strings.NewReader(s)).Decode(&raw); err != nil {
		return "", false
	}
	if !bytes.HasPrefix(raw, []byte("{")) {
		return "", false
	}
	return string(raw), true
}
