// Package pipeline implements the message translation pipeline between the
// chat platform and the conversational backend: inbound mention
// normalization, prefix composition and trimming on the way out, and
// mention resolution, reaction-trigger extraction and final cleanup on the
// way back. Every transform is pure; the only state a Pipeline carries is
// the read-only modifier set and the compiled trigger matcher.
package pipeline

import (
	"fmt"

	"github.com/tinyland-inc/nomiclaw/pkg/bus"
	"github.com/tinyland-inc/nomiclaw/pkg/config"
)

// Pipeline is constructed once at startup and shared by every relay turn.
// Concurrent turns never race: the pipeline holds no mutable state.
type Pipeline struct {
	mods    config.ModifiersConfig
	trigger *TriggerMatcher
}

func New(mods config.ModifiersConfig) (*Pipeline, error) {
	trigger, err := NewTriggerMatcher(mods.ReactTriggerPhrase)
	if err != nil {
		return nil, fmt.Errorf("building react trigger matcher: %w", err)
	}
	return &Pipeline{mods: mods, trigger: trigger}, nil
}

// BuildPrompt turns one inbound chat event into the backend prompt:
// normalize mention tokens, prepend the context prefix, trim to budget.
func (p *Pipeline) BuildPrompt(msg bus.InboundMessage) string {
	normalized := NormalizeInbound(msg)
	composed := Compose(p.mods, msg, normalized)
	return Trim(composed, p.mods.MaxMessageLength, p.mods.MessageSuffix)
}

// Fallback synthesizes the user-visible reply substituted when the backend
// call fails. It flows through the remaining stages like an ordinary reply.
func (p *Pipeline) Fallback(err error) string {
	return "❌ ERROR ❌\n" + err.Error()
}

// ProcessReply runs the outbound half over the backend's reply text:
// resolve @name references against the participant directory, extract any
// react-with-emoji directives, and clean up what remains. The returned
// bool reports whether the text is worth sending; the emoji slice is
// returned either way so reactions survive a fully-consumed reply.
func (p *Pipeline) ProcessReply(reply string, direct bool, dir Directory) (string, []string, bool) {
	resolved := ResolveMentions(reply, direct, dir)
	directive, remaining := p.trigger.Extract(resolved)
	text, ok := Assemble(remaining)
	return text, directive.Emojis, ok
}
