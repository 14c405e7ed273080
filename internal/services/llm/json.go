package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var fencePattern = regexp.MustCompile("(?s)^\\s*```(?:json|JSON)?\\s*\n?(.*?)\n?\\s*```\\s*$")

// cleanMarkdownFences removes markdown code fences from a model response
func cleanMarkdownFences(s string) string {
	s = strings.TrimSpace(s)

	if matches := fencePattern.FindStringSubmatch(s); len(matches) > 1 {
		s = matches[1]
	}

	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```JSON")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")

	return strings.TrimSpace(s)
}

// ParseJSONResponse extracts the JSON document from a model response.
// Models occasionally wrap output in markdown fences or lead with prose;
// this strips fences, then falls back to the outermost brace span before
// giving up.
func ParseJSONResponse(response string) (json.RawMessage, error) {
	cleaned := cleanMarkdownFences(response)

	if json.Valid([]byte(cleaned)) {
		return json.RawMessage(cleaned), nil
	}

	// Last resort: take the outermost {...} or [...] span
	for _, pair := range [][2]string{{"{", "}"}, {"[", "]"}} {
		start := strings.Index(cleaned, pair[0])
		end := strings.LastIndex(cleaned, pair[1])
		if start >= 0 && end > start {
			candidate := cleaned[start : end+1]
			if json.Valid([]byte(candidate)) {
				return json.RawMessage(candidate), nil
			}
		}
	}

	return nil, fmt.Errorf("response is not valid JSON")
}
