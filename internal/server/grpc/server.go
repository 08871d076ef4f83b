package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/memberkeeper/internal/logging"
	"github.com/dmitrijs2005/memberkeeper/internal/server/models"
	"github.com/dmitrijs2005/memberkeeper/internal/server/services"
	"google.golang.org/grpc"
)

type AccountService interface {
	Register(ctx context.Context, f models.RegistrationFields) (*services.AuthResult, error)
	Authenticate(ctx context.Context, email, password string) (*services.AuthResult, error)
}

type AccessGate interface {
	Resolve(ctx context.Context, authorization string) (*models.Account, error)
}

type GRPCServer struct {
	address  string
	accounts AccountService
	gate     AccessGate
	logger   logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, accounts AccountService, gate AccessGate) *GRPCServer {
	return &GRPCServer{
		address:  a,
		logger:   l.With("module", "grpc_server"),
		accounts: accounts,
		gate:     gate,
	}
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on listen until ctx is cancelled, then stops
// gracefully.
func (s *GRPCServer) Serve(ctx context.Context, listen net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.accessGateInterceptor))
	srv.RegisterService(&AccountServiceDesc, s)

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
