package heartbeat

import (
	"testing"

	"github.com/tinyland-inc/nomiclaw/pkg/config"
)

func TestService_StartDisabledIsNoop(t *testing.T) {
	s := NewService(config.HeartbeatConfig{Enabled: false})
	if err := s.Start(t.Context()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	s.Stop()
}

func TestService_StartRejectsBadSchedule(t *testing.T) {
	s := NewService(config.HeartbeatConfig{
		Enabled:     true,
		Schedule:    "not a cron line",
		ExternalURL: "example.com",
	})
	if err := s.Start(t.Context()); err == nil {
		t.Fatal("Start: want error for invalid schedule")
	}
}

func TestService_StartValidSchedule(t *testing.T) {
	s := NewService(config.HeartbeatConfig{
		Enabled:     true,
		Schedule:    "*/14 * * * *",
		ExternalURL: "https://example.com",
	})
	if err := s.Start(t.Context()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	s.Stop()
}

func TestService_PingURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://app.example.com", "https://app.example.com/heartbeat"},
		{"https://app.example.com/", "https://app.example.com/heartbeat"},
		{"app.example.com", "https://app.example.com/heartbeat"},
		{"http://localhost:18791", "http://localhost:18791/heartbeat"},
	}
	for _, tt := range tests {
		s := NewService(config.HeartbeatConfig{ExternalURL: tt.in})
		if got := s.pingURL(); got != tt.want {
			t.Errorf("pingURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
