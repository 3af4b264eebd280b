// Package health serves the gateway's liveness endpoints. Hosting
// platforms probe /health; the heartbeat keepalive fetches /heartbeat.
package health

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tinyland-inc/nomiclaw/pkg/logger"
)

type Server struct {
	httpServer *http.Server
}

func NewServer(host string, port int) *Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", handleProbe)
	mux.HandleFunc("/heartbeat", handleProbe)

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", host, port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Start begins serving in the background. Listen errors other than a clean
// shutdown are reported through the returned channel.
func (s *Server) Start() <-chan error {
	errCh := make(chan error, 1)
	go func() {
		logger.InfoCF("health", "Listening", map[string]any{
			"addr": s.httpServer.Addr,
		})
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	return errCh
}

func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func handleProbe(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	logger.DebugCF("health", "Probe", map[string]any{
		"path":   r.URL.Path,
		"remote": r.RemoteAddr,
	})

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodGet {
		fmt.Fprintln(w, "ok")
	}
}
