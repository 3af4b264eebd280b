package bus

// Peer identifies where a message came from (a DM or a guild channel).
type Peer struct {
	Kind string `json:"kind"` // "direct" | "channel"
	ID   string `json:"id"`
}

// IsDirect reports whether the peer is a direct-message conversation.
func (p Peer) IsDirect() bool {
	return p.Kind == "direct"
}

// UserMention is a platform user referenced by mention token in a message.
type UserMention struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Nickname    string `json:"nickname,omitempty"`
}

// Name returns the name a human would use for the user, preferring the
// guild nickname over the account display name.
func (m UserMention) Name() string {
	if m.Nickname != "" {
		return m.Nickname
	}
	return m.DisplayName
}

// RoleMention is a platform role referenced by mention token in a message.
// Roles do not exist in DMs, so a direct-message event never carries any.
type RoleMention struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// InboundMessage is one parsed chat event. Messages from the bot's own
// identity are filtered by the channel adapter before publication.
type InboundMessage struct {
	Channel      string        `json:"channel"`
	SenderID     string        `json:"sender_id"`
	SenderName   string        `json:"sender_name"`
	ChatID       string        `json:"chat_id"`
	Content      string        `json:"content"`
	Peer         Peer          `json:"peer"`
	MessageID    string        `json:"message_id,omitempty"`
	ChannelName  string        `json:"channel_name,omitempty"` // empty for DMs
	GuildName    string        `json:"guild_name,omitempty"`   // empty for DMs
	GuildID      string        `json:"guild_id,omitempty"`     // empty for DMs
	UserMentions []UserMention `json:"user_mentions,omitempty"`
	RoleMentions []RoleMention `json:"role_mentions,omitempty"`
}

// OutboundMessage carries one finished relay turn back to the platform.
// Content may be empty when the whole backend reply was a reaction
// directive; Reactions target the original inbound message (ReplyToID),
// not the outbound text, and are applied after the text is sent.
type OutboundMessage struct {
	Channel   string   `json:"channel"`
	ChatID    string   `json:"chat_id"`
	Content   string   `json:"content"`
	ReplyToID string   `json:"reply_to_id,omitempty"`
	Reactions []string `json:"reactions,omitempty"`
}
