package blueprint

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	fencePattern         = regexp.MustCompile("(?i)```(json)?")
	trailingCommaPattern = regexp.MustCompile(`,(\s*[}\]])`)
	bareKeyPattern       = regexp.MustCompile(`([,{\n\r\t ]+)([A-Za-z0-9_]+):`)
)

// Heal recovers a JSON object from model output that may be fenced, wrapped
// in prose, carry trailing commas or use unquoted keys. It returns nil when
// nothing parseable remains.
//
// Bare-key quoting is textual, so a "word:" sequence inside a string value
// can be rewritten as well.
func Heal(raw string) map[string]any {
	text, ok := healText(raw)
	if !ok {
		return nil
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return nil
	}
	return obj
}

// healText returns the repaired object text, keeping the original key order.
func healText(raw string) (string, bool) {
	text := strings.TrimSpace(raw)
	text = fencePattern.ReplaceAllString(text, "")

	if start := strings.Index(text, "{"); start > 0 {
		text = text[start:]
	}
	end := strings.LastIndex(text, "}")
	if end < 0 {
		return "", false
	}
	text = text[:end+1]

	text = trailingCommaPattern.ReplaceAllString(text, "$1")

	if isObject(text) {
		return text, true
	}

	quoted := bareKeyPattern.ReplaceAllString(text, `$1"$2":`)
	if isObject(quoted) {
		return quoted, true
	}
	return "", false
}

func isObject(text string) bool {
	var obj map[string]any
	return json.Unmarshal([]byte(text), &obj) == nil && obj != nil
}

// HealBlueprint heals raw text and decodes the result into the typed model.
// The result is not validated.
func HealBlueprint(raw string) (*Blueprint, bool) {
	text, ok := healText(raw)
	if !ok {
		return nil, false
	}
	bp, err := Parse([]byte(text))
	if err != nil {
		return nil, false
	}
	return bp, true
}
