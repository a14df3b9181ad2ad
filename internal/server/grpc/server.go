// Package grpc exposes the funder services over gRPC. Messages are JSON
// encoded Go structs; there is no generated protobuf code.
package grpc

import (
	"context"
	"errors"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/paket-core/funder/internal/logging"
	"github.com/paket-core/funder/internal/server/models"
	"github.com/paket-core/funder/internal/server/services"
)

// UserAPI is the part of services.UserService the transport uses.
type UserAPI interface {
	CreateUser(ctx context.Context, pubkey, callSign string) (*models.User, error)
	GetUser(ctx context.Context, pubkey, callSign string) (*models.User, error)
	SetUserInfo(ctx context.Context, pubkey string, update models.UserInfoUpdate) (*models.UserInfo, error)
	GetUserInfo(ctx context.Context, pubkey string) (*models.UserInfo, error)
	ListUsers(ctx context.Context) ([]*models.UserSummary, error)
}

// AllowanceAPI is the part of services.AllowanceService the transport uses.
type AllowanceAPI interface {
	Quota(ctx context.Context, pubkey string, now time.Time) (services.Quota, error)
}

// PurchaseAPI is the part of services.PurchaseService the transport uses.
type PurchaseAPI interface {
	RequestPurchase(ctx context.Context, req services.PurchaseRequest) (*models.Purchase, error)
	ConfirmPayment(ctx context.Context, address string, paid bool) (*models.Purchase, error)
	GetPurchase(ctx context.Context, address string) (*models.Purchase, error)
	ListUnpaid(ctx context.Context) ([]*models.Purchase, error)
	ListPaid(ctx context.Context) ([]*models.Purchase, error)
}

type GRPCServer struct {
	address   string
	users     UserAPI
	allowance AllowanceAPI
	purchases PurchaseAPI
	health    *health.Server
	logger    logging.Logger
	now       func() time.Time
}

func NewGRPCServer(address string, l logging.Logger, us UserAPI, as AllowanceAPI, ps PurchaseAPI) *GRPCServer {
	return &GRPCServer{
		address:   address,
		logger:    l.With("module", "grpc_server"),
		users:     us,
		allowance: as,
		purchases: ps,
		health:    health.NewServer(),
		now:       time.Now,
	}
}

// newServer builds the gRPC server with the Funder and health services.
func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		s.recoveryInterceptor,
		s.requestIDInterceptor,
		statusInterceptor,
		s.loggingInterceptor,
	))
	RegisterFunderServer(srv, s)
	grpc_health_v1.RegisterHealthServer(srv, s.health)
	return srv
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is done, then stops gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.health.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)
	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}
