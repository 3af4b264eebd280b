package pipeline

// Trim enforces the backend message budget. Over-long text is cut to
// maxLength minus the suffix, backed up to the last word boundary inside
// that window when one exists, and annotated with the suffix. Lengths are
// in runes. Trimming an already-trimmed string is a no-op, so the suffix
// is never applied twice.
func Trim(text string, maxLength int, suffix string) string {
	runes := []rune(text)
	if len(runes) <= maxLength {
		return text
	}

	cut := maxLength - len([]rune(suffix))
	if cut < 0 {
		cut = 0
	}
	trimmed := runes[:cut]

	// Back up to the last space so we don't cut mid-word. No space in the
	// window means a hard cut at the character boundary.
	if i := lastSpace(trimmed); i != -1 {
		trimmed = trimmed[:i]
	}

	return string(trimmed) + suffix
}

func lastSpace(runes []rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] == ' ' {
			return i
		}
	}
	return -1
}
