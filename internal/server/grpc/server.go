// Package grpc exposes the identity workflow as the AccountService gRPC
// service.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/usersvc/internal/api"
	"github.com/dmitrijs2005/usersvc/internal/logging"
	"github.com/dmitrijs2005/usersvc/internal/server/auth"
	"github.com/dmitrijs2005/usersvc/internal/server/metrics"
	"github.com/dmitrijs2005/usersvc/internal/server/services"
	"google.golang.org/grpc"
)

// IdentityService is the workflow behind the endpoint.
// *services.IdentityService satisfies it.
type IdentityService interface {
	Lookup(ctx context.Context, id string) (*services.Identity, error)
	SignUp(ctx context.Context, draft services.SignUpDraft) error
	SignIn(ctx context.Context, creds services.Credentials) (*auth.Token, error)
}

// SubjectResolver extracts the subject id from a presented access token.
// *auth.Verifier satisfies it.
type SubjectResolver interface {
	Subject(token string) (string, error)
}

type GRPCServer struct {
	address  string
	identity IdentityService
	subjects SubjectResolver
	metrics  *metrics.Metrics
	logger   logging.Logger
}

// NewGRPCServer wires the endpoint. m may be nil to skip request metrics.
func NewGRPCServer(a string, l logging.Logger, identity IdentityService, subjects SubjectResolver, m *metrics.Metrics) *GRPCServer {
	return &GRPCServer{
		address:  a,
		logger:   l.With("module", "grpc_server"),
		identity: identity,
		subjects: subjects,
		metrics:  m,
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	chain := []grpc.UnaryServerInterceptor{s.requestLogInterceptor}
	if s.metrics != nil {
		chain = append(chain, s.metrics.UnaryInterceptor())
	}
	chain = append(chain, s.accessTokenInterceptor)

	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(chain...))
	api.RegisterAccountServer(srv, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
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

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
