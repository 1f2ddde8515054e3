package http_server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	ports "yatube/internal/domain/ports/output"
)

type Server struct {
	server  *http.Server
	address string
	port    int
	log     ports.Logger
}

func NewServer(handler http.Handler, address string, port int, readTimeout, writeTimeout time.Duration, log ports.Logger) *Server {
	return &Server{
		server: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", address, port),
			Handler:           handler,
			ReadTimeout:       readTimeout,
			ReadHeaderTimeout: readTimeout,
			WriteTimeout:      writeTimeout,
		},
		address: address,
		port:    port,
		log:     log,
	}
}

func (s *Server) Run() error {
	s.log.Info("Starting HTTP server", slog.String("address", s.address), slog.Int("port", s.port))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
