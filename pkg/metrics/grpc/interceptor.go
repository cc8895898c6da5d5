package grpc

import (
	"context"
	"time"

	"github.com/RigelNana/arktutor/pkg/metrics"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// ServerOptions returns the unary and stream interceptors for serviceName.
func ServerOptions(serviceName string) []grpc.ServerOption {
	return []grpc.ServerOption{
		grpc.UnaryInterceptor(UnaryServerInterceptor(serviceName)),
		grpc.StreamInterceptor(StreamServerInterceptor(serviceName)),
	}
}

// UnaryServerInterceptor 记录一元调用的次数与耗时，状态标签为 gRPC code
func UnaryServerInterceptor(serviceName string) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		metrics.RecordRequest(serviceName, info.FullMethod, status.Code(err).String(), time.Since(start))
		return resp, err
	}
}

// StreamServerInterceptor 记录流式调用（如 Health/Watch）的次数与耗时
func StreamServerInterceptor(serviceName string) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		start := time.Now()
		err := handler(srv, ss)
		metrics.RecordRequest(serviceName, info.FullMethod, status.Code(err).String(), time.Since(start))
		return err
	}
}
