package llm

import (
	"encoding/json"
	"strings"
)

// ExtractJSON pulls the first complete JSON object out of a model reply that
// may be wrapped in markdown fences or surrounded by prose.
func ExtractJSON(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimSuffix(text, "```")
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(text, "```")
	}

	for i := strings.IndexByte(text, '{'); i >= 0; {
		var obj json.RawMessage
		if err := json.NewDecoder(strings.NewReader(text[i:])).Decode(&obj); err == nil {
			return string(obj)
		}
		next := strings.IndexByte(text[i+1:], '{')
		if next < 0 {
			break
		}
		i += next + 1
	}
	return strings.TrimSpace(text)
}
