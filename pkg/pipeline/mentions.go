package pipeline

import (
	"regexp"
	"strings"

	"github.com/tinyland-inc/nomiclaw/pkg/bus"
)

// mentionCandidateRE finds @name and @&name references in backend replies.
// \w matches letters, digits and underscore, which covers the names the
// backend can plausibly echo back.
var mentionCandidateRE = regexp.MustCompile(`@&?(\w+)`)

// NormalizeInbound rewrites platform mention tokens in the message content
// into plain @Name references before the text leaves the platform domain.
// Every occurrence of a token is replaced, in both the plain and the
// nickname-bearing form; names not present in the mention lists stay
// untouched even if they appear as plain text.
func NormalizeInbound(msg bus.InboundMessage) string {
	content := msg.Content

	for _, u := range msg.UserMentions {
		name := "@" + u.Name()
		content = strings.ReplaceAll(content, "<@"+u.ID+">", name)
		content = strings.ReplaceAll(content, "<@!"+u.ID+">", name)
	}

	for _, r := range msg.RoleMentions {
		content = strings.ReplaceAll(content, "<@&"+r.ID+">", "@"+r.Name)
	}

	return content
}

// ResolveMentions scans the backend reply for @name candidates and
// rewrites each resolvable one into a platform-native mention token.
// Candidates are processed in order of first appearance; in guild context
// members win over roles, in DMs only the user cache is searched.
// Unresolved candidates are left as-is, and only one pass is made.
func ResolveMentions(reply string, direct bool, dir Directory) string {
	if dir == nil {
		return reply
	}

	matches := mentionCandidateRE.FindAllStringSubmatch(reply, -1)
	seen := make(map[string]bool, len(matches))

	for _, m := range matches {
		full, name := m[0], m[1]
		if seen[full] {
			continue
		}
		seen[full] = true

		p, ok := lookupParticipant(name, direct, dir)
		if !ok {
			continue
		}
		reply = strings.ReplaceAll(reply, full, p.MentionToken())
	}

	return reply
}

func lookupParticipant(name string, direct bool, dir Directory) (Participant, bool) {
	if direct {
		return dir.LookupUser(name)
	}
	if p, ok := dir.LookupMember(name); ok {
		return p, true
	}
	return dir.LookupRole(name)
}
