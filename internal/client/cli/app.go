package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/client/client"
	"github.com/dmitrijs2005/authkeeper/internal/client/config"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

// AuthClient is the remote API the commands use. client.GRPCClient
// implements it.
type AuthClient interface {
	Signup(ctx context.Context, name, email string, password []byte, role string) (*models.PublicUser, error)
	Login(ctx context.Context, email string, password []byte) (string, *models.LoginUser, error)
	Me(ctx context.Context, token string) (*models.PublicUser, error)
	Close() error
}

// Dialer opens an AuthClient for cfg.
type Dialer func(cfg *config.Config) (AuthClient, error)

// DialGRPC is the production Dialer.
func DialGRPC(cfg *config.Config) (AuthClient, error) {
	return client.NewGRPCClient(cfg.ServerEndpointAddr)
}

// App is the state shared by the commands of one invocation.
type App struct {
	config *config.Config
	client AuthClient
	reader *bufio.Reader
	// prompts go to prompt, results to out
	prompt io.Writer
	out    io.Writer
}

func (a *App) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.config.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.config.RequestTimeout)
}

func (a *App) printUser(u *models.PublicUser) {
	if u == nil {
		return
	}
	fmt.Fprintf(a.out, "id:      %s\n", u.ID)
	fmt.Fprintf(a.out, "email:   %s\n", u.Email)
	fmt.Fprintf(a.out, "name:    %s\n", u.Name)
	fmt.Fprintf(a.out, "role:    %s\n", u.Role)
	if !u.CreatedAt.IsZero() {
		fmt.Fprintf(a.out, "created: %s\n", u.CreatedAt.Format(time.RFC3339))
	}
}
