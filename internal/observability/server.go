package observability

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"sigs.k8s.io/controller-runtime/pkg/metrics"
)

// Server serves spec.md §6's single HTTP surface: "/" (JSON snapshot),
// "/health" and "/metrics" (Prometheus text format), all on one listening
// port. The manager's own /healthz and /readyz probes stay on their
// separate probe port, unrelated to this surface.
type Server struct {
	httpServer *http.Server
}

// NewServer wires a ServeMux exposing the process-level snapshot view.
func NewServer(addr string, snapshot *Snapshot) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           newMux(snapshot),
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// newMux builds the "/", "/health" and "/metrics" handlers shared by
// NewServer and its tests. /metrics serves the same
// sigs.k8s.io/controller-runtime/pkg/metrics.Registry that
// internal/observability/metrics.go registers its collectors against.
func newMux(snapshot *Snapshot) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, snapshot.View())
	})
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"status": "ok"})
	})
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	return mux
}

// Start runs the HTTP server until ctx is cancelled, matching the
// signature controller-runtime expects of a manager.Runnable.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
