package provider

import (
	"encoding/json"
	"fmt"
)

// ExtractJSONObject returns the first balanced top-level brace-delimited span
// in s. Models often wrap the JSON payload in prose or code fences; this
// recovers the object without attempting a full parse.
func ExtractJSONObject(s string) (string, bool) {
	depth := 0
	start := -1
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			depth--
			if depth == 0 && start >= 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// parsePatch extracts and unmarshals a Patch from a raw model reply.
func parsePatch(reply string) (*Patch, error) {
	jsonStr, ok := ExtractJSONObject(reply)
	if !ok {
		jsonStr = reply
	}
	var patch Patch
	if err := json.Unmarshal([]byte(jsonStr), &patch); err != nil {
		return nil, fmt.Errorf("failed to parse model JSON: %w (payload: %s)", err, jsonStr)
	}
	return &patch, nil
}
