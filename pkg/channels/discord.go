package channels

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/tinyland-inc/nomiclaw/pkg/bus"
	"github.com/tinyland-inc/nomiclaw/pkg/config"
	"github.com/tinyland-inc/nomiclaw/pkg/logger"
	"github.com/tinyland-inc/nomiclaw/pkg/pipeline"
)

// discordMaxMessageLength is the platform's hard cap on message content.
const discordMaxMessageLength = 2000

// typingRefreshInterval re-arms the typing indicator, which Discord expires
// after about ten seconds.
const typingRefreshInterval = 8 * time.Second

type discordUser struct {
	ID         string
	Username   string
	GlobalName string
}

// DiscordChannel bridges a Discord bot session onto the message bus.
type DiscordChannel struct {
	*BaseChannel
	session *discordgo.Session
	config  config.DiscordConfig

	// userCache remembers every user seen in messages or mention lists so
	// DM replies can resolve @name references, where no guild member list
	// exists.
	userMu    sync.RWMutex
	userCache map[string]discordUser

	typingMu sync.Mutex
	typing   map[string]context.CancelFunc
}

func NewDiscordChannel(cfg config.DiscordConfig, messageBus *bus.MessageBus) (*DiscordChannel, error) {
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("creating discord session: %w", err)
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent

	c := &DiscordChannel{
		BaseChannel: NewBaseChannel("discord", cfg, messageBus, cfg.AllowFrom,
			WithMaxMessageLength(discordMaxMessageLength)),
		session:   session,
		config:    cfg,
		userCache: make(map[string]discordUser),
		typing:    make(map[string]context.CancelFunc),
	}

	session.AddHandler(c.onReady)
	session.AddHandler(c.onMessageCreate)

	return c, nil
}

func (c *DiscordChannel) Start(ctx context.Context) error {
	if err := c.session.Open(); err != nil {
		return fmt.Errorf("opening discord gateway: %w", err)
	}
	c.SetRunning(true)
	return nil
}

func (c *DiscordChannel) Stop(ctx context.Context) error {
	c.SetRunning(false)

	c.typingMu.Lock()
	for _, cancel := range c.typing {
		cancel()
	}
	c.typing = make(map[string]context.CancelFunc)
	c.typingMu.Unlock()

	return c.session.Close()
}

func (c *DiscordChannel) onReady(s *discordgo.Session, r *discordgo.Ready) {
	logger.InfoCF("discord", "Connected", map[string]any{
		"username": r.User.Username,
		"guilds":   len(r.Guilds),
	})
}

func (c *DiscordChannel) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.ID == s.State.User.ID || m.Author.Bot {
		return
	}

	c.cacheUser(m.Author)
	for _, u := range m.Mentions {
		c.cacheUser(u)
	}

	direct := m.GuildID == ""
	if !direct && c.config.MentionOnly && !mentionsUser(m, s.State.User.ID) {
		return
	}

	msg := bus.InboundMessage{
		SenderID:   m.Author.ID + "|" + m.Author.Username,
		SenderName: authorName(m),
		ChatID:     m.ChannelID,
		Content:    m.Content,
		MessageID:  m.ID,
		GuildID:    m.GuildID,
	}

	if direct {
		msg.Peer = bus.Peer{Kind: "direct", ID: m.ChannelID}
	} else {
		msg.Peer = bus.Peer{Kind: "channel", ID: m.ChannelID}
		if ch, err := s.State.Channel(m.ChannelID); err == nil {
			msg.ChannelName = ch.Name
		}
		if guild, err := s.State.Guild(m.GuildID); err == nil {
			msg.GuildName = guild.Name
		}
	}

	for _, u := range m.Mentions {
		mention := bus.UserMention{
			ID:          u.ID,
			DisplayName: displayName(u),
		}
		if !direct {
			if member, err := s.State.Member(m.GuildID, u.ID); err == nil {
				mention.Nickname = member.Nick
			}
		}
		msg.UserMentions = append(msg.UserMentions, mention)
	}

	for _, roleID := range m.MentionRoles {
		role, err := s.State.Role(m.GuildID, roleID)
		if err != nil {
			continue
		}
		msg.RoleMentions = append(msg.RoleMentions, bus.RoleMention{
			ID:   role.ID,
			Name: role.Name,
		})
	}

	c.HandleMessage(context.Background(), msg)
}

// Send delivers the turn's text first, then applies reactions to the
// original inbound message so they never land before the reply.
func (c *DiscordChannel) Send(ctx context.Context, msg bus.OutboundMessage) error {
	if msg.Content != "" {
		if _, err := c.session.ChannelMessageSend(msg.ChatID, msg.Content); err != nil {
			return fmt.Errorf("sending discord message: %w", err)
		}
	}

	if msg.ReplyToID == "" {
		return nil
	}
	for _, emoji := range msg.Reactions {
		if err := c.session.MessageReactionAdd(msg.ChatID, msg.ReplyToID, emoji); err != nil {
			if isUnknownEmoji(err) {
				logger.WarnCF("discord", "Skipping unrecognized reaction emoji", map[string]any{
					"emoji": emoji,
				})
				continue
			}
			return fmt.Errorf("adding reaction %q: %w", emoji, err)
		}
	}

	return nil
}

// SetTyping keeps the typing indicator alive for the chat until switched
// off. Discord expires each ChannelTyping call, so an active window runs a
// refresh loop.
func (c *DiscordChannel) SetTyping(ctx context.Context, chatID string, active bool) {
	c.typingMu.Lock()
	defer c.typingMu.Unlock()

	if cancel, ok := c.typing[chatID]; ok {
		cancel()
		delete(c.typing, chatID)
	}
	if !active {
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	c.typing[chatID] = cancel

	go func() {
		ticker := time.NewTicker(typingRefreshInterval)
		defer ticker.Stop()
		for {
			if err := c.session.ChannelTyping(chatID); err != nil {
				logger.DebugCF("discord", "Typing indicator failed", map[string]any{
					"chat_id": chatID,
					"error":   err.Error(),
				})
			}
			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

// Directory returns the participant directory for the conversation the
// message arrived on: guild members and roles in guild context, the user
// cache in DMs.
func (c *DiscordChannel) Directory(msg bus.InboundMessage) pipeline.Directory {
	return &discordDirectory{channel: c, guildID: msg.GuildID}
}

func (c *DiscordChannel) cacheUser(u *discordgo.User) {
	if u == nil || u.ID == "" {
		return
	}
	c.userMu.Lock()
	c.userCache[u.ID] = discordUser{
		ID:         u.ID,
		Username:   u.Username,
		GlobalName: u.GlobalName,
	}
	c.userMu.Unlock()
}

func (c *DiscordChannel) lookupCachedUser(name string) (pipeline.Participant, bool) {
	c.userMu.RLock()
	defer c.userMu.RUnlock()
	for _, u := range c.userCache {
		if strings.EqualFold(u.Username, name) || strings.EqualFold(u.GlobalName, name) {
			return pipeline.Participant{ID: u.ID}, true
		}
	}
	return pipeline.Participant{}, false
}

// discordDirectory resolves names against the session state for one guild.
type discordDirectory struct {
	channel *DiscordChannel
	guildID string
}

func (d *discordDirectory) LookupMember(name string) (pipeline.Participant, bool) {
	if d.guildID == "" {
		return pipeline.Participant{}, false
	}
	guild, err := d.channel.session.State.Guild(d.guildID)
	if err != nil {
		return pipeline.Participant{}, false
	}
	for _, member := range guild.Members {
		if member.User == nil {
			continue
		}
		if strings.EqualFold(member.Nick, name) ||
			strings.EqualFold(member.User.GlobalName, name) ||
			strings.EqualFold(member.User.Username, name) {
			return pipeline.Participant{ID: member.User.ID}, true
		}
	}
	return pipeline.Participant{}, false
}

func (d *discordDirectory) LookupRole(name string) (pipeline.Participant, bool) {
	if d.guildID == "" {
		return pipeline.Participant{}, false
	}
	guild, err := d.channel.session.State.Guild(d.guildID)
	if err != nil {
		return pipeline.Participant{}, false
	}
	for _, role := range guild.Roles {
		if strings.EqualFold(role.Name, name) {
			return pipeline.Participant{ID: role.ID, Role: true}, true
		}
	}
	return pipeline.Participant{}, false
}

func (d *discordDirectory) LookupUser(name string) (pipeline.Participant, bool) {
	return d.channel.lookupCachedUser(name)
}

func mentionsUser(m *discordgo.MessageCreate, userID string) bool {
	for _, u := range m.Mentions {
		if u.ID == userID {
			return true
		}
	}
	return false
}

func displayName(u *discordgo.User) string {
	if u.GlobalName != "" {
		return u.GlobalName
	}
	return u.Username
}

func authorName(m *discordgo.MessageCreate) string {
	if m.Member != nil && m.Member.Nick != "" {
		return m.Member.Nick
	}
	return displayName(m.Author)
}

func isUnknownEmoji(err error) bool {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Message != nil {
		return restErr.Message.Code == discordgo.ErrCodeUnknownEmoji
	}
	return false
}
