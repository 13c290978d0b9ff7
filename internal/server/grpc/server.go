// Package grpc exposes the account boundary to service-to-service callers
// and registers the standard gRPC health service.
package grpc

import (
	"context"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/dmitrijs2005/accountkeeper/internal/logging"
	"github.com/dmitrijs2005/accountkeeper/internal/server/auth"
	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
	"github.com/dmitrijs2005/accountkeeper/internal/server/users"
)

// Account is the boundary the handlers call into. *account.Service
// implements it.
type Account interface {
	Authenticate(ctx context.Context, email, password string) (*auth.Session, error)
	VerifyToken(ctx context.Context, token string) (*models.User, bool)
	UpdateProfile(ctx context.Context, id string, in users.UpdateInput) (*models.PublicUser, error)
	GetBalanceView(user *models.User) string
	AvatarURL(ctx context.Context, user *models.User) (string, error)
}

type GRPCServer struct {
	address string
	account Account
	logger  logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, acc Account) *GRPCServer {
	return &GRPCServer{
		address: a,
		account: acc,
		logger:  l.With("module", "grpc_server"),
	}
}

// newServer builds a grpc.Server with the account and health services
// registered.
func (s *GRPCServer) newServer() (*grpc.Server, *health.Server) {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.accessTokenInterceptor))
	srv.RegisterService(&AccountServiceDesc, s)

	hs := health.NewServer()
	hs.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)

	return srv, hs
}

func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.serve(ctx, listen)
}

func (s *GRPCServer) serve(ctx context.Context, listen net.Listener) error {
	srv, hs := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		hs.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	return srv.Serve(listen)
}
