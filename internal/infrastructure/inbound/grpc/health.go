package delivery_grpc

import (
	"context"
	"log/slog"
	"sort"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	ports "yatube/internal/domain/ports/output"
)

// Probe reports whether one dependency is usable.
type Probe func(ctx context.Context) error

// HealthService answers health checks by running its probes on demand.
// The empty service name covers the whole process; every probe name is
// also a service name of its own.
type HealthService struct {
	grpc_health_v1.UnimplementedHealthServer
	probes  map[string]Probe
	log     ports.Logger
	metrics ports.MetricsProvider
}

func NewHealthService(probes map[string]Probe, log ports.Logger, metrics ports.MetricsProvider) *HealthService {
	return &HealthService{probes: probes, log: log, metrics: metrics}
}

func (h *HealthService) Check(ctx context.Context, req *grpc_health_v1.HealthCheckRequest) (*grpc_health_v1.HealthCheckResponse, error) {
	service := req.GetService()
	if service == "" {
		healthy := true
		for _, name := range h.names() {
			if !h.run(ctx, name) {
				healthy = false
			}
		}
		h.metrics.SetServiceHealth(healthy)
		return response(healthy), nil
	}

	if _, ok := h.probes[service]; !ok {
		return nil, status.Errorf(codes.NotFound, "unknown service %q", service)
	}
	return response(h.run(ctx, service)), nil
}

func (h *HealthService) run(ctx context.Context, name string) bool {
	if err := h.probes[name](ctx); err != nil {
		h.log.Warn("Health probe failed", slog.String("probe", name), slog.String("error", err.Error()))
		return false
	}
	return true
}

func (h *HealthService) names() []string {
	names := make([]string, 0, len(h.probes))
	for name := range h.probes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func response(healthy bool) *grpc_health_v1.HealthCheckResponse {
	if healthy {
		return &grpc_health_v1.HealthCheckResponse{Status: grpc_health_v1.HealthCheckResponse_SERVING}
	}
	return &grpc_health_v1.HealthCheckResponse{Status: grpc_health_v1.HealthCheckResponse_NOT_SERVING}
}
