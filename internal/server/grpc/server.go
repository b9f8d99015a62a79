// Package grpc exposes the auth service over gRPC with a JSON codec.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/authkeeper/internal/server/ratelimit"
	"google.golang.org/grpc"
)

// Authorizer turns an authorization metadata value into an authenticated
// context. auth.Gate implements it.
type Authorizer interface {
	Authorize(ctx context.Context, authorization string) (context.Context, error)
}

type GRPCServer struct {
	address string
	users   AuthService
	gate    Authorizer
	guard   *ratelimit.LoginGuard
	logger  logging.Logger
	metrics *metrics.Metrics
}

func NewGRPCServer(a string, l logging.Logger, us AuthService, gate Authorizer, guard *ratelimit.LoginGuard, m *metrics.Metrics) *GRPCServer {
	return &GRPCServer{
		address: a,
		logger:  l.With("module", "grpc_server"),
		users:   us,
		gate:    gate,
		guard:   guard,
		metrics: m,
	}
}

// newServer builds the grpc.Server with interceptors and the service registered.
func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.errorInterceptor, s.accessTokenInterceptor))
	RegisterAuthServiceServer(srv, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.serve(ctx, listen)
}

func (s *GRPCServer) serve(ctx context.Context, listen net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
