package metrics_server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	ports "yatube/internal/domain/ports/output"
)

// CacheClearer purges the page cache of the running process.
type CacheClearer interface {
	Clear(ctx context.Context) error
}

type MetricsServer struct {
	mux     *http.ServeMux
	server  *http.Server
	address string
	port    int
	log     ports.Logger
}

func NewMetricsServer(address string, port int, log ports.Logger) *MetricsServer {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	return &MetricsServer{
		mux: mux,
		server: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", address, port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		address: address,
		port:    port,
		log:     log,
	}
}

// HandleCacheClear exposes POST /cache/clear on the internal listener. It is
// the operator path to a page cache that lives inside this process.
func (s *MetricsServer) HandleCacheClear(cache CacheClearer) {
	s.mux.HandleFunc("POST /cache/clear", func(w http.ResponseWriter, r *http.Request) {
		if err := cache.Clear(r.Context()); err != nil {
			s.log.Error("Failed to clear page cache on request", slog.String("error", err.Error()))
			http.Error(w, "failed to clear page cache", http.StatusInternalServerError)
			return
		}
		s.log.Info("Page cache cleared on request", slog.String("remote_addr", r.RemoteAddr))
		w.WriteHeader(http.StatusNoContent)
	})
}

func (s *MetricsServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *MetricsServer) Run() error {
	s.log.Info("Starting metrics server", slog.String("address", s.address), slog.Int("port", s.port))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}

func (s *MetricsServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
