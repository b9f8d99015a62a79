package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"google.golang.org/grpc/peer"
)

// AuthService is the business API the handlers call.
type AuthService interface {
	Signup(ctx context.Context, name, email, password string, role models.Role) (*models.PublicUser, error)
	Login(ctx context.Context, email, password string) (*models.AuthResponse, error)
	GetSelf(ctx context.Context, claims *models.TokenClaims) (*models.PublicUser, error)
}

// Handlers return service errors as is; errorInterceptor turns them into
// status errors.

func (s *GRPCServer) Signup(ctx context.Context, req *SignupRequest) (*SignupResponse, error) {
	user, err := s.users.Signup(ctx, req.Name, req.Email, req.Password, models.Role(req.Role))
	if err != nil {
		return nil, err
	}
	return &SignupResponse{Message: "User created successfully", User: user}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	client := peerHost(ctx)

	if s.guard != nil {
		if retry := s.guard.Allow(ctx, client); retry > 0 {
			s.metrics.Login(metrics.ResultThrottled)
			return nil, common.ErrTooManyAttempts
		}
	}

	resp, err := s.users.Login(ctx, req.Email, req.Password)
	if s.guard != nil {
		s.guard.Record(ctx, client, err)
	}
	if err != nil {
		return nil, err
	}

	return &LoginResponse{Token: resp.Token, User: resp.User}, nil
}

func (s *GRPCServer) Me(ctx context.Context, _ *MeRequest) (*MeResponse, error) {
	claims, ok := auth.ClaimsFromContext(ctx)
	if !ok {
		return nil, common.ErrorUnauthorized
	}

	user, err := s.users.GetSelf(ctx, claims)
	if err != nil {
		return nil, err
	}
	return &MeResponse{User: user}, nil
}

// peerHost is the remote IP used as the login throttling key.
func peerHost(ctx context.Context) string {
	p, ok := peer.FromContext(ctx)
	if !ok || p.Addr == nil {
		return "unknown"
	}
	host, _, err := net.SplitHostPort(p.Addr.String())
	if err != nil {
		return p.Addr.String()
	}
	return host
}
