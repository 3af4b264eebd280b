package pipeline

import (
	"strings"

	"github.com/tinyland-inc/nomiclaw/pkg/bus"
	"github.com/tinyland-inc/nomiclaw/pkg/config"
)

// Compose assembles the outbound-to-backend text: the context-appropriate
// prefix template with {author}, {channel} and {guild} substituted,
// followed by the normalized message content. No length constraint is
// applied here; trimming is a separate later step.
func Compose(mods config.ModifiersConfig, msg bus.InboundMessage, normalized string) string {
	var tmpl string
	switch msg.Peer.Kind {
	case "direct":
		tmpl = mods.DMMessagePrefix
	case "channel":
		tmpl = mods.ChannelMessagePrefix
	default:
		tmpl = mods.DefaultMessagePrefix
	}

	// Channel and guild bind to empty in DMs, so a DM prefix that names
	// them still renders without leftover placeholders.
	prefix := strings.NewReplacer(
		"{author}", msg.SenderName,
		"{channel}", msg.ChannelName,
		"{guild}", msg.GuildName,
	).Replace(tmpl)

	return prefix + normalized
}
