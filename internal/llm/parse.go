package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Model output is untrusted text: JSON mode still yields fence-wrapped,
// comma-damaged or quote-damaged documents often enough that a single
// json.Unmarshal is not a parse strategy.
var (
	fencedBlockRe   = regexp.MustCompile("(?s)```(?:json)?\\s*(.+?)\\s*```")
	lineBreaksRe    = regexp.MustCompile(`[\r\n\t]+`)
	doubleCommaRe   = regexp.MustCompile(`,\s*,`)
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
	reasonFieldRe   = regexp.MustCompile(`("reason"\s*:\s*")(.*?)("\s*[,}\]])`)
)

// ExtractJSON turns raw model output into a parseable JSON document:
// fenced-block extraction, then a direct parse, then one sanitization pass
// and a final parse. Failure after sanitization is a hard error; callers
// must not persist anything derived from it.
func ExtractJSON(text string) (json.RawMessage, error) {
	candidate := strings.TrimSpace(text)
	if m := fencedBlockRe.FindStringSubmatch(candidate); m != nil {
		candidate = m[1]
	} else {
		candidate = strings.ReplaceAll(candidate, "```json", "")
		candidate = strings.ReplaceAll(candidate, "```", "")
		candidate = strings.TrimSpace(candidate)
	}

	if json.Valid([]byte(candidate)) {
		return json.RawMessage(candidate), nil
	}

	sanitized := sanitizeJSON(candidate)
	if json.Valid([]byte(sanitized)) {
		return json.RawMessage(sanitized), nil
	}
	return nil, fmt.Errorf("model output is not valid JSON after sanitization")
}

// sanitizeJSON repairs the defects observed in practice: literal line breaks
// inside strings, stray commas, and quotes or backslashes the model embeds
// in its free-text "reason" fields.
func sanitizeJSON(s string) string {
	s = lineBreaksRe.ReplaceAllString(s, " ")
	s = reasonFieldRe.ReplaceAllStringFunc(s, func(match string) string {
		parts := reasonFieldRe.FindStringSubmatch(match)
		value := strings.ReplaceAll(parts[2], `\`, "")
		value = strings.ReplaceAll(value, `"`, "")
		return parts[1] + value + parts[3]
	})
	s = doubleCommaRe.ReplaceAllString(s, ",")
	s = trailingCommaRe.ReplaceAllString(s, "$1")
	return strings.TrimSpace(s)
}
