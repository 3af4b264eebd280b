package gateway

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/tinyland-inc/nomiclaw/cmd/nomiclaw/internal"
	"github.com/tinyland-inc/nomiclaw/pkg/bus"
	"github.com/tinyland-inc/nomiclaw/pkg/channels"
	"github.com/tinyland-inc/nomiclaw/pkg/health"
	"github.com/tinyland-inc/nomiclaw/pkg/heartbeat"
	"github.com/tinyland-inc/nomiclaw/pkg/logger"
	"github.com/tinyland-inc/nomiclaw/pkg/pipeline"
	"github.com/tinyland-inc/nomiclaw/pkg/providers"
	"github.com/tinyland-inc/nomiclaw/pkg/providers/nomi"
	"github.com/tinyland-inc/nomiclaw/pkg/relay"
)

func gatewayCmd(debug bool) error {
	if debug {
		logger.SetLevel(logger.DEBUG)
		fmt.Println("🔍 Debug mode enabled")
	}

	cfg, err := internal.LoadConfig()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	provider, err := providers.CreateProvider(cfg)
	if err != nil {
		return fmt.Errorf("error creating provider: %w", err)
	}

	p, err := pipeline.New(cfg.Modifiers)
	if err != nil {
		return fmt.Errorf("error building pipeline: %w", err)
	}

	msgBus := bus.NewMessageBus()

	channelManager, err := channels.NewManager(cfg, msgBus)
	if err != nil {
		return fmt.Errorf("error creating channel manager: %w", err)
	}

	relayLoop := relay.NewRelayLoop(msgBus, provider, p, channelManager)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if nomiClient, ok := provider.(*nomi.Client); ok {
		if profile, err := nomiClient.FetchProfile(ctx); err != nil {
			fmt.Printf("⚠ Could not fetch Nomi profile: %v\n", err)
		} else {
			fmt.Printf("✓ %s is ready. Happy chatting!\n", profile.Name)
			logger.InfoCF("gateway", "Nomi profile loaded", map[string]any{
				"name": profile.Name,
				"uuid": profile.UUID,
			})
		}
	}

	heartbeatService := heartbeat.NewService(cfg.Heartbeat)
	if err := heartbeatService.Start(ctx); err != nil {
		fmt.Printf("Error starting heartbeat service: %v\n", err)
	} else if cfg.Heartbeat.Enabled {
		fmt.Println("✓ Heartbeat keepalive started")
	}

	if err := channelManager.StartAll(ctx); err != nil {
		return fmt.Errorf("error starting channels: %w", err)
	}
	fmt.Printf("✓ Channels enabled: %s\n", channelManager.GetEnabledChannels())

	healthServer := health.NewServer(cfg.Gateway.Host, cfg.Gateway.Port)
	healthErrs := healthServer.Start()
	go func() {
		if err := <-healthErrs; err != nil {
			logger.ErrorCF("health", "Health server error", map[string]any{"error": err.Error()})
		}
	}()
	fmt.Printf("✓ Health endpoints available at http://%s:%d/health and /heartbeat\n",
		cfg.Gateway.Host, cfg.Gateway.Port)

	go channelManager.DispatchLoop(ctx)
	go relayLoop.Run(ctx)

	fmt.Printf("✓ Gateway started with provider %q\n", provider.Name())
	fmt.Println("Press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	<-sigChan

	fmt.Println("\nShutting down...")
	cancel()
	relayLoop.Wait()
	healthServer.Stop(context.Background())
	heartbeatService.Stop()
	channelManager.StopAll(context.Background())
	msgBus.Close()
	fmt.Println("✓ Gateway stopped")

	return nil
}
