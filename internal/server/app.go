// Package server wires the account store, the credential services and the
// HTTP and gRPC transports into one process and runs them until a shutdown
// signal arrives.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/memberkeeper/internal/cryptox"
	"github.com/dmitrijs2005/memberkeeper/internal/logging"
	"github.com/dmitrijs2005/memberkeeper/internal/server/auth"
	"github.com/dmitrijs2005/memberkeeper/internal/server/config"
	"github.com/dmitrijs2005/memberkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/memberkeeper/internal/server/services"
	"github.com/dmitrijs2005/memberkeeper/internal/server/validation"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	gs "github.com/dmitrijs2005/memberkeeper/internal/server/grpc"
	hs "github.com/dmitrijs2005/memberkeeper/internal/server/http"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	repos    repomanager.RepositoryManager
	accounts *services.AccountService
	gate     *services.AccessGate
	metrics  *hs.HTTPMetrics
	gatherer prometheus.Gatherer
}

// NewApp validates c and builds every component. The store is migrated
// before NewApp returns.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger, err := logging.New(c.LogBackend, os.Stdout)
	if err != nil {
		return nil, err
	}

	issuer, err := auth.NewTokenIssuer(c.SecretKey)
	if err != nil {
		return nil, err
	}
	verifier, err := auth.NewTokenVerifier(c.SecretKey)
	if err != nil {
		return nil, err
	}

	repos, err := repomanager.New(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := repos.RunMigrations(ctx); err != nil {
		_ = repos.Close()
		return nil, err
	}

	reg := prometheus.NewRegistry()
	metrics, err := hs.NewHTTPMetrics(hs.HTTPMetricsOptions{Registerer: reg})
	if err != nil {
		_ = repos.Close()
		return nil, err
	}

	hasher := cryptox.NewLimitedHasher(cryptox.NewArgon2idHasher(cryptox.Params{
		Iterations: uint32(c.HashIterations),
		MemoryKiB:  uint32(c.HashMemoryKiB),
	}), c.HashWorkers)

	return &App{
		config:   c,
		logger:   logger,
		repos:    repos,
		accounts: services.NewAccountService(repos.Accounts(), validation.NewValidator(nil), hasher, issuer, logger),
		gate:     services.NewAccessGate(verifier, repos.Accounts(), logger),
		metrics:  metrics,
		gatherer: reg,
	}, nil
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case <-sigs:
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	router := hs.NewRouter(hs.Dependencies{
		Accounts: app.accounts,
		Gate:     app.gate,
		Logger:   app.logger,
		Metrics:  app.metrics,
		Gatherer: app.gatherer,
	})

	s := hs.NewHTTPServer(app.config.EndpointAddrHTTP, router, app.logger)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.accounts, app.gate)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run starts the configured transports and blocks until ctx is cancelled,
// a signal arrives or a transport fails. The store is closed on return.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	gin.SetMode(gin.ReleaseMode)
	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(ctx, cancelFunc)

	var wg sync.WaitGroup

	if app.config.EndpointAddrHTTP != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startHTTPServer(ctx, cancelFunc)
		}()
	}

	if app.config.EndpointAddrGRPC != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startGRPCServer(ctx, cancelFunc)
		}()
	}

	wg.Wait()

	if err := app.repos.Close(); err != nil {
		app.logger.Error(ctx, "closing store failed", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
