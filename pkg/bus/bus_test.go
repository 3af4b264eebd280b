package bus

import (
	"context"
	"testing"
	"time"
)

func TestMessageBus_InboundRoundTrip(t *testing.T) {
	b := NewMessageBus()
	defer b.Close()

	in := InboundMessage{Channel: "discord", Content: "hi"}
	if err := b.PublishInbound(t.Context(), in); err != nil {
		t.Fatalf("PublishInbound: %v", err)
	}

	got, ok := b.ConsumeInbound(t.Context())
	if !ok {
		t.Fatal("ConsumeInbound: want a message")
	}
	if got.Content != "hi" {
		t.Errorf("Content = %q, want hi", got.Content)
	}
}

func TestMessageBus_OutboundRoundTrip(t *testing.T) {
	b := NewMessageBus()
	defer b.Close()

	out := OutboundMessage{Channel: "discord", Content: "reply", Reactions: []string{"👍"}}
	if err := b.PublishOutbound(t.Context(), out); err != nil {
		t.Fatalf("PublishOutbound: %v", err)
	}

	got, ok := b.SubscribeOutbound(t.Context())
	if !ok {
		t.Fatal("SubscribeOutbound: want a message")
	}
	if got.Content != "reply" || len(got.Reactions) != 1 {
		t.Errorf("got %+v", got)
	}
}

func TestMessageBus_PublishAfterClose(t *testing.T) {
	b := NewMessageBus()
	b.Close()

	if err := b.PublishInbound(t.Context(), InboundMessage{}); err != ErrBusClosed {
		t.Errorf("PublishInbound after close = %v, want ErrBusClosed", err)
	}
	if err := b.PublishOutbound(t.Context(), OutboundMessage{}); err != ErrBusClosed {
		t.Errorf("PublishOutbound after close = %v, want ErrBusClosed", err)
	}
}

func TestMessageBus_ConsumeRespectsContext(t *testing.T) {
	b := NewMessageBus()
	defer b.Close()

	ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
	defer cancel()

	if _, ok := b.ConsumeInbound(ctx); ok {
		t.Error("ConsumeInbound: want false on context timeout")
	}
}

func TestPeer_IsDirect(t *testing.T) {
	if !(Peer{Kind: "direct"}).IsDirect() {
		t.Error("direct peer should report IsDirect")
	}
	if (Peer{Kind: "channel"}).IsDirect() {
		t.Error("channel peer should not report IsDirect")
	}
}

func TestUserMention_Name(t *testing.T) {
	if got := (UserMention{DisplayName: "Ann", Nickname: "Annie"}).Name(); got != "Annie" {
		t.Errorf("Name() = %q, want nickname", got)
	}
	if got := (UserMention{DisplayName: "Ann"}).Name(); got != "Ann" {
		t.Errorf("Name() = %q, want display name", got)
	}
}
