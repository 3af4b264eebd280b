// Package heartbeat keeps the hosting platform from idling the gateway.
// On the configured cron schedule it fetches the service's own public
// /heartbeat endpoint, which counts as external traffic on hosts that
// sleep idle web services.
package heartbeat

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/adhocore/gronx"

	"github.com/tinyland-inc/nomiclaw/pkg/config"
	"github.com/tinyland-inc/nomiclaw/pkg/logger"
)

type Service struct {
	cfg        config.HeartbeatConfig
	gron       *gronx.Gronx
	httpClient *http.Client
	cancel     context.CancelFunc
}

func NewService(cfg config.HeartbeatConfig) *Service {
	return &Service{
		cfg:  cfg,
		gron: gronx.New(),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Start validates the schedule and begins the tick loop. Disabled or
// unconfigured services start as a no-op.
func (s *Service) Start(ctx context.Context) error {
	if !s.cfg.Enabled || s.cfg.ExternalURL == "" {
		logger.DebugC("heartbeat", "Keepalive disabled")
		return nil
	}
	if !s.gron.IsValid(s.cfg.Schedule) {
		return fmt.Errorf("invalid heartbeat schedule %q", s.cfg.Schedule)
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	go s.run(loopCtx)

	logger.InfoCF("heartbeat", "Keepalive started", map[string]any{
		"schedule": s.cfg.Schedule,
		"url":      s.pingURL(),
	})
	return nil
}

func (s *Service) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
}

// run wakes once a minute and pings when the cron expression is due.
func (s *Service) run(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			due, err := s.gron.IsDue(s.cfg.Schedule)
			if err != nil {
				logger.ErrorCF("heartbeat", "Schedule check failed", map[string]any{
					"error": err.Error(),
				})
				continue
			}
			if due {
				s.ping(ctx)
			}
		}
	}
}

func (s *Service) ping(ctx context.Context) {
	url := s.pingURL()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		logger.ErrorCF("heartbeat", "Bad keepalive URL", map[string]any{
			"url":   url,
			"error": err.Error(),
		})
		return
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		logger.WarnCF("heartbeat", "Keepalive ping failed", map[string]any{
			"url":   url,
			"error": err.Error(),
		})
		return
	}
	resp.Body.Close()

	logger.DebugCF("heartbeat", "Keepalive ping", map[string]any{
		"url":    url,
		"status": resp.StatusCode,
	})
}

func (s *Service) pingURL() string {
	base := strings.TrimRight(s.cfg.ExternalURL, "/")
	if base != "" && !strings.Contains(base, "://") {
		base = "https://" + base
	}
	return base + "/heartbeat"
}
