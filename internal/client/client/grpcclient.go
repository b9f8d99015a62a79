package client

import (
	"context"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	authgrpc "github.com/dmitrijs2005/authkeeper/internal/server/grpc"
)

type GRPCClient struct {
	conn   *grpc.ClientConn
	client *authgrpc.AuthServiceClient
}

// NewGRPCClient connects lazily to endpointURL. Extra options are appended
// after the insecure transport credentials.
func NewGRPCClient(endpointURL string, opts ...grpc.DialOption) (*GRPCClient, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)

	conn, err := grpc.NewClient(endpointURL, opts...)
	if err != nil {
		return nil, err
	}
	return &GRPCClient{conn: conn, client: authgrpc.NewAuthServiceClient(conn)}, nil
}

func withAccessToken(ctx context.Context, token string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, common.AuthorizationHeaderName, common.BearerScheme+" "+token)
}

func (c *GRPCClient) Signup(ctx context.Context, name, email string, password []byte, role string) (*models.PublicUser, error) {
	req := &authgrpc.SignupRequest{Name: name, Email: email, Password: string(password), Role: role}

	resp, err := c.client.Signup(ctx, req)
	if err != nil {
		return nil, mapError(err)
	}
	return resp.User, nil
}

// Login returns the issued token together with the user it belongs to.
func (c *GRPCClient) Login(ctx context.Context, email string, password []byte) (string, *models.LoginUser, error) {
	req := &authgrpc.LoginRequest{Email: email, Password: string(password)}

	resp, err := c.client.Login(ctx, req)
	if err != nil {
		return "", nil, mapError(err)
	}
	return resp.Token, resp.User, nil
}

func (c *GRPCClient) Me(ctx context.Context, token string) (*models.PublicUser, error) {
	resp, err := c.client.Me(withAccessToken(ctx, token), &authgrpc.MeRequest{})
	if err != nil {
		return nil, mapError(err)
	}
	return resp.User, nil
}

func (c *GRPCClient) Close() error {
	return c.conn.Close()
}
