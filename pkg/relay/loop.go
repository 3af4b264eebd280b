// Package relay runs the turn loop: consume an inbound chat event, forward
// it to the backend, translate the reply and publish it for dispatch. Each
// turn runs on its own goroutine so a slow backend call never blocks other
// conversations.
package relay

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/tinyland-inc/nomiclaw/pkg/bus"
	"github.com/tinyland-inc/nomiclaw/pkg/logger"
	"github.com/tinyland-inc/nomiclaw/pkg/pipeline"
	"github.com/tinyland-inc/nomiclaw/pkg/providers"
)

// Dispatcher is the slice of the channel manager the relay needs: typing
// indicators and mention directories. Outbound delivery itself goes through
// the bus.
type Dispatcher interface {
	SetTyping(ctx context.Context, channel, chatID string, active bool)
	DirectoryFor(msg bus.InboundMessage) pipeline.Directory
}

type RelayLoop struct {
	bus        *bus.MessageBus
	provider   providers.Provider
	pipeline   *pipeline.Pipeline
	dispatcher Dispatcher
	wg         sync.WaitGroup
}

func NewRelayLoop(
	messageBus *bus.MessageBus,
	provider providers.Provider,
	p *pipeline.Pipeline,
	dispatcher Dispatcher,
) *RelayLoop {
	return &RelayLoop{
		bus:        messageBus,
		provider:   provider,
		pipeline:   p,
		dispatcher: dispatcher,
	}
}

// Run consumes inbound messages until the context is canceled or the bus
// closes, spawning one goroutine per turn.
func (r *RelayLoop) Run(ctx context.Context) {
	for {
		msg, ok := r.bus.ConsumeInbound(ctx)
		if !ok {
			return
		}
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			r.handle(ctx, msg)
		}()
	}
}

// Wait blocks until every in-flight turn has finished.
func (r *RelayLoop) Wait() {
	r.wg.Wait()
}

func (r *RelayLoop) handle(ctx context.Context, msg bus.InboundMessage) {
	runID := uuid.New().String()[:8]

	logger.InfoCF("relay", "Handling message", map[string]any{
		"run_id":  runID,
		"channel": msg.Channel,
		"sender":  msg.SenderName,
		"chat_id": msg.ChatID,
	})

	r.dispatcher.SetTyping(ctx, msg.Channel, msg.ChatID, true)
	defer r.dispatcher.SetTyping(ctx, msg.Channel, msg.ChatID, false)

	prompt := r.pipeline.BuildPrompt(msg)

	reply, err := r.provider.SendMessage(ctx, prompt)
	if err != nil {
		logger.ErrorCF("relay", "Backend call failed", map[string]any{
			"run_id":   runID,
			"provider": r.provider.Name(),
			"error":    err.Error(),
		})
		reply = r.pipeline.Fallback(err)
	}

	dir := r.dispatcher.DirectoryFor(msg)
	text, emojis, hasText := r.pipeline.ProcessReply(reply, msg.Peer.IsDirect(), dir)

	if !hasText && len(emojis) == 0 {
		logger.DebugCF("relay", "Reply produced nothing to send", map[string]any{
			"run_id": runID,
		})
		return
	}

	out := bus.OutboundMessage{
		Channel:   msg.Channel,
		ChatID:    msg.ChatID,
		Content:   text,
		ReplyToID: msg.MessageID,
		Reactions: emojis,
	}
	if err := r.bus.PublishOutbound(ctx, out); err != nil {
		logger.ErrorCF("relay", "Failed to publish reply", map[string]any{
			"run_id": runID,
			"error":  err.Error(),
		})
		return
	}

	logger.InfoCF("relay", "Turn complete", map[string]any{
		"run_id":    runID,
		"reactions": len(emojis),
		"has_text":  hasText,
	})
}
