// Package grpc exposes the user directory over gRPC as the
// userdir.v1.UserService protobuf service.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/userdir/internal/logging"
	pb "github.com/dmitrijs2005/userdir/internal/proto"
	"github.com/dmitrijs2005/userdir/internal/server/auth"
	"github.com/dmitrijs2005/userdir/internal/server/metrics"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// authenticator turns an authorization metadata value into an identity.
type authenticator interface {
	Authenticate(headerValue string) (auth.Identity, error)
}

type GRPCServer struct {
	pb.UnimplementedUserServiceServer
	address string
	users   userService
	gate    authenticator
	metrics *metrics.Metrics
	health  *health.Server
	logger  logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, us userService, gate authenticator, m *metrics.Metrics) *GRPCServer {
	return &GRPCServer{
		address: a,
		logger:  l.With("module", "grpc_server"),
		users:   us,
		gate:    gate,
		metrics: m,
		health:  health.NewServer(),
	}
}

// newServer builds the grpc.Server with the interceptor chain, the user
// service and the standard health service registered.
func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		s.requestIDInterceptor,
		s.loggingInterceptor,
		s.metricsInterceptor,
		s.accessTokenInterceptor,
	))
	pb.RegisterUserServiceServer(srv, s)
	healthpb.RegisterHealthServer(srv, s.health)
	return srv
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is done, then marks the
// health service NOT_SERVING and drains in-flight calls.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()
	s.health.SetServingStatus(pb.UserService_ServiceDesc.ServiceName, healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}
	return nil
}
