package channels

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tinyland-inc/nomiclaw/pkg/bus"
	"github.com/tinyland-inc/nomiclaw/pkg/config"
)

type fakeChannel struct {
	*BaseChannel

	mu     sync.Mutex
	sent   []bus.OutboundMessage
	typing map[string]bool
}

func newFakeChannel(b *bus.MessageBus, maxLen int) *fakeChannel {
	return &fakeChannel{
		BaseChannel: NewBaseChannel("fake", nil, b, nil, WithMaxMessageLength(maxLen)),
		typing:      make(map[string]bool),
	}
}

func (c *fakeChannel) Start(ctx context.Context) error { c.SetRunning(true); return nil }
func (c *fakeChannel) Stop(ctx context.Context) error  { c.SetRunning(false); return nil }

func (c *fakeChannel) Send(ctx context.Context, msg bus.OutboundMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, msg)
	return nil
}

func (c *fakeChannel) SetTyping(ctx context.Context, chatID string, active bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.typing[chatID] = active
}

func (c *fakeChannel) sentMessages() []bus.OutboundMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]bus.OutboundMessage(nil), c.sent...)
}

func newTestManager(b *bus.MessageBus, ch Channel) *Manager {
	return &Manager{
		channels: map[string]Channel{ch.Name(): ch},
		bus:      b,
	}
}

func waitForSent(t *testing.T, ch *fakeChannel, n int) []bus.OutboundMessage {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if sent := ch.sentMessages(); len(sent) >= n {
			return sent
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d sent messages", n)
	return nil
}

func TestNewManager_NoChannelsEnabled(t *testing.T) {
	cfg := config.DefaultConfig()
	if _, err := NewManager(cfg, bus.NewMessageBus()); err == nil {
		t.Fatal("NewManager: want error when nothing is enabled")
	}
}

func TestManager_DispatchLoop_RoutesAndTruncates(t *testing.T) {
	b := bus.NewMessageBus()
	ch := newFakeChannel(b, 10)
	m := newTestManager(b, ch)

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()
	go m.DispatchLoop(ctx)

	long := strings.Repeat("x", 25)
	if err := b.PublishOutbound(ctx, bus.OutboundMessage{Channel: "fake", ChatID: "c1", Content: long}); err != nil {
		t.Fatalf("PublishOutbound: %v", err)
	}

	sent := waitForSent(t, ch, 1)
	if got := sent[0].Content; len([]rune(got)) != 10 {
		t.Errorf("Content = %q (%d runes), want 10 runes", got, len([]rune(got)))
	}
}

func TestManager_DispatchLoop_ReactionsSurviveTruncation(t *testing.T) {
	b := bus.NewMessageBus()
	ch := newFakeChannel(b, 5)
	m := newTestManager(b, ch)

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()
	go m.DispatchLoop(ctx)

	msg := bus.OutboundMessage{
		Channel:   "fake",
		ChatID:    "c1",
		Content:   "too long to fit",
		ReplyToID: "m9",
		Reactions: []string{"🎉"},
	}
	if err := b.PublishOutbound(ctx, msg); err != nil {
		t.Fatalf("PublishOutbound: %v", err)
	}

	sent := waitForSent(t, ch, 1)
	if len(sent[0].Reactions) != 1 || sent[0].Reactions[0] != "🎉" {
		t.Errorf("Reactions = %q, want [🎉]", sent[0].Reactions)
	}
	if sent[0].ReplyToID != "m9" {
		t.Errorf("ReplyToID = %q, want m9", sent[0].ReplyToID)
	}
}

func TestManager_DispatchLoop_UnknownChannelDropped(t *testing.T) {
	b := bus.NewMessageBus()
	ch := newFakeChannel(b, 0)
	m := newTestManager(b, ch)

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()
	go m.DispatchLoop(ctx)

	b.PublishOutbound(ctx, bus.OutboundMessage{Channel: "nope", Content: "lost"})
	b.PublishOutbound(ctx, bus.OutboundMessage{Channel: "fake", Content: "kept"})

	sent := waitForSent(t, ch, 1)
	if sent[0].Content != "kept" {
		t.Errorf("Content = %q, want kept", sent[0].Content)
	}
}

func TestManager_SetTyping(t *testing.T) {
	b := bus.NewMessageBus()
	ch := newFakeChannel(b, 0)
	m := newTestManager(b, ch)

	m.SetTyping(t.Context(), "fake", "c1", true)
	m.SetTyping(t.Context(), "missing", "c1", true) // no panic

	ch.mu.Lock()
	defer ch.mu.Unlock()
	if !ch.typing["c1"] {
		t.Error("typing not forwarded to channel")
	}
}

func TestManager_DirectoryFor_UnsupportedChannel(t *testing.T) {
	b := bus.NewMessageBus()
	ch := newFakeChannel(b, 0)
	m := newTestManager(b, ch)

	if dir := m.DirectoryFor(bus.InboundMessage{Channel: "fake"}); dir != nil {
		t.Error("DirectoryFor: want nil for channel without a directory")
	}
}
