package grpcserver

import (
	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const PortalService = "portal.v1.PaymentSession"

// Health serves grpc.health.v1 for the portal so orchestrators can probe it
// the same way as the other gRPC services.
type Health struct {
	Server *grpc.Server
	status *health.Server
}

func NewHealth() *Health {
	srv := grpc.NewServer(
		grpc.UnaryInterceptor(grpc_prometheus.UnaryServerInterceptor),
		grpc.StreamInterceptor(grpc_prometheus.StreamServerInterceptor),
	)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	grpc_prometheus.Register(srv)

	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(PortalService, healthpb.HealthCheckResponse_SERVING)
	return &Health{Server: srv, status: hs}
}

// Drain reports NOT_SERVING so probes fail before the listener closes.
func (h *Health) Drain() {
	h.status.Shutdown()
}
