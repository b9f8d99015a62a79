package grpc

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func newInterceptorServer(t *testing.T) (*GRPCServer, *auth.TokenService) {
	t.Helper()
	tokens := newTokens(t)
	return NewGRPCServer("", nopLogger{}, &fakeService{}, auth.NewGate(tokens), nil, metrics.New()), tokens
}

func TestInterceptor_UnprotectedMethod_AllowsWithoutToken(t *testing.T) {
	s, _ := newInterceptorServer(t)

	info := &grpc.UnaryServerInfo{FullMethod: MethodLogin}
	handlerCalled := false

	h := func(ctx context.Context, req any) (any, error) {
		handlerCalled = true
		return "ok", nil
	}

	resp, err := s.accessTokenInterceptor(context.Background(), nil, info, h)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !handlerCalled {
		t.Fatal("handler was not called")
	}
	if resp != "ok" {
		t.Fatalf("unexpected handler resp: %v", resp)
	}
}

func TestInterceptor_Me_MissingToken(t *testing.T) {
	s, _ := newInterceptorServer(t)

	info := &grpc.UnaryServerInfo{FullMethod: MethodMe}
	h := func(ctx context.Context, req any) (any, error) {
		t.Fatal("handler should not be called when token missing")
		return nil, nil
	}

	_, err := s.accessTokenInterceptor(context.Background(), nil, info, h)
	if !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("expected ErrorUnauthorized, got %v", err)
	}
	if got := testutil.ToFloat64(s.metrics.GateRejectionsTotal.WithLabelValues(metrics.TransportGRPC)); got != 1 {
		t.Fatalf("gate rejections = %v, want 1", got)
	}
}

func TestInterceptor_Me_InvalidToken(t *testing.T) {
	s, _ := newInterceptorServer(t)

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer not-a-jwt"))
	info := &grpc.UnaryServerInfo{FullMethod: MethodMe}
	h := func(ctx context.Context, req any) (any, error) {
		t.Fatal("handler should not be called with invalid token")
		return nil, nil
	}

	_, err := s.accessTokenInterceptor(ctx, nil, info, h)
	if !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("expected ErrorUnauthorized, got %v", err)
	}
}

func TestInterceptor_Me_ValidToken_PutsClaimsInContext(t *testing.T) {
	s, tokens := newInterceptorServer(t)

	token, err := tokens.Issue(models.TokenClaims{UserID: "u-42", Email: "ann@x.io", Name: "Ann", Role: models.RoleAdmin})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer "+token))
	info := &grpc.UnaryServerInfo{FullMethod: MethodMe}

	var got *models.TokenClaims
	h := func(ctx context.Context, req any) (any, error) {
		got, _ = auth.ClaimsFromContext(ctx)
		return "ok", nil
	}

	if _, err := s.accessTokenInterceptor(ctx, nil, info, h); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.UserID != "u-42" || got.Role != models.RoleAdmin {
		t.Fatalf("unexpected claims: %+v", got)
	}
}

func TestErrorInterceptor_MapsServiceErrors(t *testing.T) {
	s, _ := newInterceptorServer(t)
	info := &grpc.UnaryServerInfo{FullMethod: MethodSignup}

	tests := []struct {
		name string
		err  error
		code codes.Code
	}{
		{"validation", common.NewValidationError("email", "Valid email is required"), codes.InvalidArgument},
		{"conflict", common.ErrorAlreadyExists, codes.AlreadyExists},
		{"not found", common.ErrorNotFound, codes.NotFound},
		{"expired", common.ErrTokenExpired, codes.Unauthenticated},
		{"internal wins", common.Internal(common.ErrorNotFound), codes.Internal},
		{"unknown", errors.New("boom"), codes.Internal},
		{"status passes through", status.Error(codes.Canceled, "gone"), codes.Canceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := func(ctx context.Context, req any) (any, error) { return nil, tt.err }
			_, err := s.errorInterceptor(context.Background(), nil, info, h)
			if status.Code(err) != tt.code {
				t.Fatalf("code = %v, want %v", status.Code(err), tt.code)
			}
		})
	}
}
