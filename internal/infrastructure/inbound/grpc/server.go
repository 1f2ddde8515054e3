package delivery_grpc

import (
	"fmt"
	"log/slog"
	"net"

	grpc_middleware "github.com/grpc-ecosystem/go-grpc-middleware"
	grpc_recovery "github.com/grpc-ecosystem/go-grpc-middleware/recovery"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health/grpc_health_v1"

	ports "yatube/internal/domain/ports/output"
)

// Server exposes grpc.health.v1 for orchestrators and load balancers.
type Server struct {
	health  *HealthService
	server  *grpc.Server
	address string
	port    int
	log     ports.Logger
}

func NewServer(health *HealthService, address string, port int, log ports.Logger) *Server {
	s := &Server{
		health:  health,
		address: address,
		port:    port,
		log:     log,
	}
	s.server = grpc.NewServer(
		grpc.UnaryInterceptor(grpc_middleware.ChainUnaryServer(
			UnaryLoggerInterceptor(log),
			grpc_recovery.UnaryServerInterceptor(),
		)),
	)
	grpc_health_v1.RegisterHealthServer(s.server, health)
	return s
}

func (s *Server) Run() error {
	address := fmt.Sprintf("%s:%d", s.address, s.port)
	lis, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to listen: %v", err)
	}
	return s.Serve(lis)
}

// Serve runs the server on an existing listener.
func (s *Server) Serve(lis net.Listener) error {
	s.log.Info("Starting gRPC server", slog.String("address", lis.Addr().String()))
	return s.server.Serve(lis)
}

func (s *Server) Shutdown() error {
	if s.server != nil {
		s.server.GracefulStop()
	}
	return nil
}
