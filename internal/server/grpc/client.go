package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
)

// Client calls the Funder service over any gRPC connection.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(codecName)}, opts...)
	if err := cc.Invoke(ctx, fullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateUser(ctx context.Context, in *CreateUserRequest, opts ...grpc.CallOption) (*UserResponse, error) {
	return invoke[UserResponse](ctx, c.cc, "CreateUser", in, opts)
}

func (c *Client) GetUser(ctx context.Context, in *GetUserRequest, opts ...grpc.CallOption) (*UserResponse, error) {
	return invoke[UserResponse](ctx, c.cc, "GetUser", in, opts)
}

func (c *Client) SetUserInfo(ctx context.Context, in *SetUserInfoRequest, opts ...grpc.CallOption) (*UserInfoResponse, error) {
	return invoke[UserInfoResponse](ctx, c.cc, "SetUserInfo", in, opts)
}

func (c *Client) GetUserInfo(ctx context.Context, in *GetUserInfoRequest, opts ...grpc.CallOption) (*UserInfoResponse, error) {
	return invoke[UserInfoResponse](ctx, c.cc, "GetUserInfo", in, opts)
}

func (c *Client) ListUsers(ctx context.Context, opts ...grpc.CallOption) (*UsersResponse, error) {
	return invoke[UsersResponse](ctx, c.cc, "ListUsers", &emptypb.Empty{}, opts)
}

func (c *Client) GetAllowance(ctx context.Context, in *GetAllowanceRequest, opts ...grpc.CallOption) (*AllowanceResponse, error) {
	return invoke[AllowanceResponse](ctx, c.cc, "GetAllowance", in, opts)
}

func (c *Client) RequestPurchase(ctx context.Context, in *RequestPurchaseRequest, opts ...grpc.CallOption) (*PurchaseResponse, error) {
	return invoke[PurchaseResponse](ctx, c.cc, "RequestPurchase", in, opts)
}

func (c *Client) ConfirmPayment(ctx context.Context, in *ConfirmPaymentRequest, opts ...grpc.CallOption) (*PurchaseResponse, error) {
	return invoke[PurchaseResponse](ctx, c.cc, "ConfirmPayment", in, opts)
}

func (c *Client) GetPurchase(ctx context.Context, in *GetPurchaseRequest, opts ...grpc.CallOption) (*PurchaseResponse, error) {
	return invoke[PurchaseResponse](ctx, c.cc, "GetPurchase", in, opts)
}

func (c *Client) ListUnpaid(ctx context.Context, opts ...grpc.CallOption) (*PurchasesResponse, error) {
	return invoke[PurchasesResponse](ctx, c.cc, "ListUnpaid", &emptypb.Empty{}, opts)
}

func (c *Client) ListPaid(ctx context.Context, opts ...grpc.CallOption) (*PurchasesResponse, error) {
	return invoke[PurchasesResponse](ctx, c.cc, "ListPaid", &emptypb.Empty{}, opts)
}
