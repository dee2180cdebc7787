package ai

import (
	"fmt"
	"strings"
)

// SanitizeModelJSON strips the C0 and C1 control characters (plus DEL) that
// models occasionally emit raw inside what is supposed to be a JSON document.
// Escaped sequences like \n inside string values are two printable characters
// and survive untouched.
func SanitizeModelJSON(s string) string {
	return strings.Map(func(r rune) rune {
		if r <= 0x1F || (r >= 0x7F && r <= 0x9F) {
			return -1
		}
		return r
	}, s)
}

// ExtractJSONObject cuts the substring from the first '{' to the last '}' of a
// model reply, discarding any prose the model wrapped around the document.
func ExtractJSONObject(s string) (string, error) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return "", fmt.Errorf("no JSON object found in response")
	}
	return s[start : end+1], nil
}
