package cli

import (
	"bufio"
	"context"
	"io"
	"os"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	"github.com/paket-core/funder/internal/client/config"
	"github.com/paket-core/funder/internal/common"
	gs "github.com/paket-core/funder/internal/server/grpc"
)

// FunderAPI is the subset of the Funder client the console drives.
// *gs.Client satisfies it.
type FunderAPI interface {
	CreateUser(ctx context.Context, in *gs.CreateUserRequest, opts ...grpc.CallOption) (*gs.UserResponse, error)
	GetUser(ctx context.Context, in *gs.GetUserRequest, opts ...grpc.CallOption) (*gs.UserResponse, error)
	SetUserInfo(ctx context.Context, in *gs.SetUserInfoRequest, opts ...grpc.CallOption) (*gs.UserInfoResponse, error)
	GetUserInfo(ctx context.Context, in *gs.GetUserInfoRequest, opts ...grpc.CallOption) (*gs.UserInfoResponse, error)
	ListUsers(ctx context.Context, opts ...grpc.CallOption) (*gs.UsersResponse, error)
	GetAllowance(ctx context.Context, in *gs.GetAllowanceRequest, opts ...grpc.CallOption) (*gs.AllowanceResponse, error)
	RequestPurchase(ctx context.Context, in *gs.RequestPurchaseRequest, opts ...grpc.CallOption) (*gs.PurchaseResponse, error)
	ConfirmPayment(ctx context.Context, in *gs.ConfirmPaymentRequest, opts ...grpc.CallOption) (*gs.PurchaseResponse, error)
	GetPurchase(ctx context.Context, in *gs.GetPurchaseRequest, opts ...grpc.CallOption) (*gs.PurchaseResponse, error)
	ListUnpaid(ctx context.Context, opts ...grpc.CallOption) (*gs.PurchasesResponse, error)
	ListPaid(ctx context.Context, opts ...grpc.CallOption) (*gs.PurchasesResponse, error)
}

type App struct {
	config *config.Config
	api    FunderAPI
	conn   io.Closer
	reader *bufio.Reader
	out    io.Writer
}

// NewApp dials the configured endpoint. The connection is established lazily
// on the first call.
func NewApp(c *config.Config) (*App, error) {
	conn, err := grpc.NewClient(c.ServerEndpointAddr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(requestIDInterceptor),
	)
	if err != nil {
		return nil, err
	}

	return &App{
		config: c,
		api:    gs.NewClient(conn),
		conn:   conn,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}, nil
}

// Run starts the REPL and closes the connection once it returns.
func (a *App) Run(ctx context.Context) {
	defer a.conn.Close()
	a.Root(ctx)
}

// requestIDInterceptor attaches a fresh request id unless the caller set one.
func requestIDInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	md, _ := metadata.FromOutgoingContext(ctx)
	if len(md.Get(common.RequestIDHeaderName)) == 0 {
		ctx = metadata.AppendToOutgoingContext(ctx, common.RequestIDHeaderName, uuid.NewString())
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

func (a *App) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.config == nil || a.config.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.config.RequestTimeout)
}
