// Package server wires the authkeeper components together and runs the HTTP
// and gRPC transports until the process is signalled.
package server

import (
	"context"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/config"
	"github.com/dmitrijs2005/authkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/authkeeper/internal/server/ratelimit"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/authkeeper/internal/server/rest"
	"github.com/dmitrijs2005/authkeeper/internal/server/services"
	"github.com/gin-gonic/gin"

	gs "github.com/dmitrijs2005/authkeeper/internal/server/grpc"
)

const connectTimeout = 10 * time.Second

type App struct {
	config      *config.Config
	logger      logging.Logger
	closers     []io.Closer
	userService *services.UserService
	gate        *auth.Gate
	guard       *ratelimit.LoginGuard
	metrics     *metrics.Metrics
}

// NewApp connects to the database, applies migrations and builds the service
// graph. The returned App owns the connections; Run closes them.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(c.LogFormat, os.Stdout, c.Debug)
	gin.SetMode(c.GinMode)

	db, err := dbx.Open(ctx, "pgx", c.DatabaseDSN, connectTimeout)
	if err != nil {
		return nil, err
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	hasher, err := auth.NewBcryptHasher(c.BcryptCost)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	tokens, err := auth.NewTokenService(c.SecretKey, c.TokenValidityDuration)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	app := &App{config: c, logger: logger, closers: []io.Closer{db}}

	var limiter ratelimit.Limiter = ratelimit.Noop{}
	if c.RedisURL != "" {
		client, err := ratelimit.NewRedisClient(ctx, c.RedisURL, connectTimeout)
		if err != nil {
			app.close(ctx)
			return nil, err
		}
		app.closers = append(app.closers, client)
		limiter = ratelimit.NewRedisLimiter(client, c.LoginMaxAttempts, c.LoginWindow)
	} else {
		logger.Warn(ctx, "login throttling disabled, no redis url configured")
	}

	app.metrics = metrics.New()
	app.gate = auth.NewGate(tokens)
	app.guard = ratelimit.NewLoginGuard(limiter, logger)
	app.userService = services.NewUserService(db, rm, hasher, tokens, logger, app.metrics)

	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	router := rest.NewRouter(rest.RouterConfig{
		Handler:            rest.NewHandler(app.userService, app.guard, app.metrics),
		Gate:               app.gate,
		Metrics:            app.metrics,
		Logger:             app.logger,
		CORSAllowedOrigins: app.config.CORSAllowedOrigins,
	})

	s := rest.NewHTTPServer(app.config.EndpointAddrHTTP, router, app.logger)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, "http server failed", logging.ErrorAttrs(err)...)
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.userService, app.gate, app.guard, app.metrics)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, "grpc server failed", logging.ErrorAttrs(err)...)
		cancelFunc()
	}
}

// Run serves both transports until ctx is cancelled, a termination signal
// arrives or one of the servers fails, then releases the connections.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.close(context.WithoutCancel(ctx))
	app.logger.Info(ctx, "App stopped")
}

func (app *App) close(ctx context.Context) {
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i].Close(); err != nil {
			app.logger.Warn(ctx, "close failed", logging.ErrorAttrs(err)...)
		}
	}
	app.closers = nil
}
