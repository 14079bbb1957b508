package grpc

import (
	"context"
	"net"

	"github.com/vogiaan1904/ticketbottle-waitlist/pkg/logger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the name reported to gRPC health checks.
const ServiceName = "ticketbottle.waitlist"

// Server exposes the standard gRPC health service for the waitlist daemon.
type Server struct {
	srv    *grpc.Server
	health *health.Server
	l      logger.Logger
}

func NewServer(l logger.Logger) *Server {
	srv := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)

	s := &Server{srv: srv, health: hs, l: l}
	s.SetServing(false)
	return s
}

func (s *Server) Serve(lnr net.Listener) error {
	return s.srv.Serve(lnr)
}

func (s *Server) SetServing(serving bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(ServiceName, st)
	s.l.Debugf(context.Background(), "grpc health status: %s", st)
}

// GracefulStop reports NOT_SERVING to every watcher, then drains the server.
func (s *Server) GracefulStop() {
	s.health.Shutdown()
	s.srv.GracefulStop()
}
