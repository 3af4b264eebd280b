package pipeline

import "strings"

// Assemble is the final cleanup before dispatch: bold markers are removed
// globally (the backend leaks them mid-sentence, not just as pairs) and
// surrounding whitespace is trimmed. The bool reports whether anything
// worth sending remains; a reply fully consumed by a reaction directive,
// or reduced to a stray emphasis marker, sends no text at all.
func Assemble(text string) (string, bool) {
	cleaned := strings.ReplaceAll(text, "**", "")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" || cleaned == "*" {
		return "", false
	}
	return cleaned, true
}
