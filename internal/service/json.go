package service

import (
	"encoding/json"
	"fmt"
	"strings"
)

// decodeJSONObject parses a JSON object out of raw model text. The reply
// may be wrapped in markdown fences or surrounded by commentary, so the
// text is sliced between the outermost braces before unmarshalling.
func decodeJSONObject(content string, v any) error {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end == -1 || end < start {
		return fmt.Errorf("invalid response format: %s", content)
	}

	jsonStr := content[start : end+1]
	if err := json.Unmarshal([]byte(jsonStr), v); err == nil {
		return nil
	}

	// Strip markdown code fences and retry once.
	jsonStr = strings.TrimSpace(jsonStr)
	jsonStr = strings.TrimPrefix(jsonStr, "```json")
	jsonStr = strings.TrimPrefix(jsonStr, "```")
	jsonStr = strings.TrimSuffix(jsonStr, "```")
	jsonStr = strings.TrimSpace(jsonStr)

	if err := json.Unmarshal([]byte(jsonStr), v); err != nil {
		return fmt.Errorf("failed to parse JSON response: %w, content: %s", err, content)
	}
	return nil
}
