package health

import (
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// NewGRPCServer builds a gRPC server exposing grpc.health.v1.Health, whose
// status follows the monitor, plus server reflection.
func NewGRPCServer(monitor *Monitor, service string, opts ...grpc.ServerOption) *grpc.Server {
	srv := grpc.NewServer(opts...)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(srv, healthServer)
	reflection.Register(srv)

	monitor.AttachServer(healthServer, service)

	return srv
}
