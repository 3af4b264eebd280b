package pipeline

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// emojiPlaceholder marks the emoji position in the configured trigger phrase.
const emojiPlaceholder = "{emoji}"

// emojiClass approximates the Unicode emoji property in RE2 terms: the
// symbol categories plus the joiners and modifiers that glue sequences
// together. The literal * is deliberately part of the class so that a
// trigger phrase styled with markdown emphasis still matches; the captured
// marker is filtered out again during extraction.
const emojiClass = `[\p{So}\p{Sk}\x{200D}\x{FE0F}\x{20E3}*]`

var emojiRunRE = regexp.MustCompile(emojiClass + `+`)

// ErrNoEmojiPlaceholder is returned when the configured trigger phrase
// does not contain exactly one {emoji} placeholder.
var ErrNoEmojiPlaceholder = errors.New("react trigger phrase needs exactly one {emoji} placeholder")

// Directive is one parsed react-with-emoji instruction: the matched spans
// to strip from the reply and the emoji to dispatch, in order of
// appearance with duplicates preserved. Emojis may be empty when the
// phrase matched but captured nothing real.
type Directive struct {
	Spans  []string
	Emojis []string
}

// TriggerMatcher holds the pattern compiled once from configuration.
type TriggerMatcher struct {
	re *regexp.Regexp
}

// NewTriggerMatcher builds the matcher from the configured phrase
// template. Literal text is matched case-insensitively, embedded emphasis
// markers become optional, internal whitespace is flexible, and the
// {emoji} placeholder becomes a Unicode emoji-class matcher.
func NewTriggerMatcher(phrase string) (*TriggerMatcher, error) {
	if strings.Count(phrase, emojiPlaceholder) != 1 {
		return nil, ErrNoEmojiPlaceholder
	}

	before, after, _ := strings.Cut(phrase, emojiPlaceholder)
	pattern := "(?i)" + flexQuote(before) + emojiClass + "+" + flexQuote(after)

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compiling react trigger pattern: %w", err)
	}
	return &TriggerMatcher{re: re}, nil
}

// flexQuote escapes a literal phrase fragment while relaxing it: emphasis
// markers become optional and runs of whitespace collapse to \s*.
func flexQuote(lit string) string {
	var b strings.Builder
	space := false
	for _, r := range lit {
		switch {
		case r == ' ' || r == '\t':
			if !space {
				b.WriteString(`\s*`)
				space = true
			}
			continue
		case r == '*':
			b.WriteString(`\*?`)
		case r == '_':
			b.WriteString(`_?`)
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
		space = false
	}
	return b.String()
}

// Extract finds every occurrence of the trigger phrase in the reply,
// collects the emoji inside each matched span and returns the reply with
// the spans removed. A match that captures no real emoji still has its
// span stripped but contributes no reactions.
func (m *TriggerMatcher) Extract(reply string) (Directive, string) {
	locs := m.re.FindAllStringIndex(reply, -1)
	if len(locs) == 0 {
		return Directive{}, reply
	}

	var d Directive
	var b strings.Builder
	last := 0
	for _, loc := range locs {
		span := reply[loc[0]:loc[1]]
		d.Spans = append(d.Spans, span)
		for _, run := range emojiRunRE.FindAllString(span, -1) {
			d.Emojis = append(d.Emojis, splitEmojiRuns(run)...)
		}
		b.WriteString(reply[last:loc[0]])
		last = loc[1]
	}
	b.WriteString(reply[last:])

	return d, b.String()
}

// splitEmojiRuns breaks a contiguous emoji-class run into individual
// emoji, keeping ZWJ sequences and variation/keycap modifiers attached to
// their base. The emphasis marker the class spuriously captures is
// discarded here; it is not a real emoji.
func splitEmojiRuns(run string) []string {
	var out []string
	var cur []rune
	joined := false

	flush := func() {
		if len(cur) > 0 {
			out = append(out, string(cur))
			cur = nil
		}
	}

	for _, r := range run {
		switch {
		case r == '*':
			continue
		case r == 0x200D: // zero-width joiner
			if len(cur) > 0 {
				cur = append(cur, r)
				joined = true
			}
		case r == 0xFE0F || r == 0x20E3 || (r >= 0x1F3FB && r <= 0x1F3FF):
			// variation selector, keycap, skin tone: attach to the base
			if len(cur) > 0 {
				cur = append(cur, r)
			}
		default:
			if joined && len(cur) > 0 {
				cur = append(cur, r)
			} else {
				flush()
				cur = []rune{r}
			}
			joined = false
		}
	}
	flush()

	return out
}
