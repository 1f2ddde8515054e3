package delivery_grpc

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	ports "yatube/internal/domain/ports/output"
)

func UnaryLoggerInterceptor(log ports.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		attrs := []any{
			slog.String("method", info.FullMethod),
			slog.Duration("duration", time.Since(start)),
			slog.String("code", status.Code(err).String()),
		}
		if err != nil {
			log.Warn("gRPC request failed", append(attrs, slog.String("error", err.Error()))...)
			return resp, err
		}
		log.Debug("gRPC request", attrs...)
		return resp, nil
	}
}
