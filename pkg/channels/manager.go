package channels

import (
	"context"
	"fmt"

	"github.com/tinyland-inc/nomiclaw/pkg/bus"
	"github.com/tinyland-inc/nomiclaw/pkg/config"
	"github.com/tinyland-inc/nomiclaw/pkg/logger"
	"github.com/tinyland-inc/nomiclaw/pkg/pipeline"
)

// Manager owns the enabled channel adapters and runs the outbound dispatch
// loop: every message the relay publishes is routed to its channel, capped
// to the channel's message budget and sent.
type Manager struct {
	channels map[string]Channel
	bus      *bus.MessageBus
}

func NewManager(cfg *config.Config, messageBus *bus.MessageBus) (*Manager, error) {
	m := &Manager{
		channels: make(map[string]Channel),
		bus:      messageBus,
	}

	if cfg.Channels.Discord.Enabled {
		discord, err := NewDiscordChannel(cfg.Channels.Discord, messageBus)
		if err != nil {
			return nil, fmt.Errorf("creating discord channel: %w", err)
		}
		m.channels["discord"] = discord
	}

	if len(m.channels) == 0 {
		return nil, fmt.Errorf("no channels enabled")
	}

	return m, nil
}

func (m *Manager) GetChannel(name string) (Channel, bool) {
	ch, ok := m.channels[name]
	return ch, ok
}

func (m *Manager) GetEnabledChannels() []string {
	names := make([]string, 0, len(m.channels))
	for name := range m.channels {
		names = append(names, name)
	}
	return names
}

func (m *Manager) StartAll(ctx context.Context) error {
	for name, ch := range m.channels {
		if err := ch.Start(ctx); err != nil {
			return fmt.Errorf("starting %s channel: %w", name, err)
		}
		logger.InfoC("channels", "Started channel: "+name)
	}
	return nil
}

func (m *Manager) StopAll(ctx context.Context) {
	for name, ch := range m.channels {
		if err := ch.Stop(ctx); err != nil {
			logger.ErrorCF("channels", "Error stopping channel", map[string]any{
				"channel": name,
				"error":   err.Error(),
			})
		}
	}
}

// SetTyping toggles the typing indicator on channels that support one.
func (m *Manager) SetTyping(ctx context.Context, channel, chatID string, active bool) {
	ch, ok := m.channels[channel]
	if !ok {
		return
	}
	if notifier, ok := ch.(TypingNotifier); ok {
		notifier.SetTyping(ctx, chatID, active)
	}
}

// DirectoryFor returns the mention directory for the conversation the
// message arrived on, or nil when the channel cannot resolve names.
func (m *Manager) DirectoryFor(msg bus.InboundMessage) pipeline.Directory {
	ch, ok := m.channels[msg.Channel]
	if !ok {
		return nil
	}
	if provider, ok := ch.(DirectoryProvider); ok {
		return provider.Directory(msg)
	}
	return nil
}

// DispatchLoop consumes outbound messages until the context is canceled or
// the bus closes. Content over the channel's budget is truncated at a rune
// boundary; reactions are unaffected.
func (m *Manager) DispatchLoop(ctx context.Context) {
	for {
		msg, ok := m.bus.SubscribeOutbound(ctx)
		if !ok {
			return
		}

		ch, found := m.channels[msg.Channel]
		if !found {
			logger.WarnCF("channels", "Dropping message for unknown channel", map[string]any{
				"channel": msg.Channel,
			})
			continue
		}

		if provider, ok := ch.(MessageLengthProvider); ok {
			if limit := provider.MaxMessageLength(); limit > 0 {
				msg.Content = truncateRunes(msg.Content, limit)
			}
		}

		if err := ch.Send(ctx, msg); err != nil {
			logger.ErrorCF("channels", "Failed to deliver message", map[string]any{
				"channel": msg.Channel,
				"chat_id": msg.ChatID,
				"error":   err.Error(),
			})
		}
	}
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
