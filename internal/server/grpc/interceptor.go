package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/metrics"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// protectedMethods require a bearer token in the authorization metadata.
var protectedMethods = map[string]bool{
	MethodMe: true,
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if !protectedMethods[info.FullMethod] {
		return handler(ctx, req)
	}

	var authorization string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(common.AuthorizationHeaderName); len(values) > 0 {
			authorization = values[0]
		}
	}

	authCtx, err := s.gate.Authorize(ctx, authorization)
	if err != nil {
		s.metrics.GateRejected(metrics.TransportGRPC)
		return nil, err
	}

	return handler(authCtx, req)
}

// errorInterceptor is the outermost interceptor: it logs each call and maps
// service errors to status codes.
func (s *GRPCServer) errorInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()

	resp, err := handler(ctx, req)
	if err == nil {
		s.logger.Info(ctx, "call served", "method", info.FullMethod, "latency", time.Since(start))
		return resp, nil
	}

	// Status errors raised by grpc itself (decoding and such) pass through.
	if _, ok := status.FromError(err); ok {
		return nil, err
	}

	st := toStatus(err)
	code := status.Code(st)
	args := []any{"method", info.FullMethod, "code", code.String(), "latency", time.Since(start)}
	if code == codes.Internal {
		s.logger.Error(ctx, "call failed", append(args, logging.ErrorAttrs(err)...)...)
	} else {
		s.logger.Warn(ctx, "call rejected", args...)
	}
	return nil, st
}
