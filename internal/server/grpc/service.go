package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "paket.funder.v1.Funder"

// FunderServer is the server API of the Funder service.
type FunderServer interface {
	CreateUser(context.Context, *CreateUserRequest) (*UserResponse, error)
	GetUser(context.Context, *GetUserRequest) (*UserResponse, error)
	SetUserInfo(context.Context, *SetUserInfoRequest) (*UserInfoResponse, error)
	GetUserInfo(context.Context, *GetUserInfoRequest) (*UserInfoResponse, error)
	ListUsers(context.Context, *emptypb.Empty) (*UsersResponse, error)
	GetAllowance(context.Context, *GetAllowanceRequest) (*AllowanceResponse, error)
	RequestPurchase(context.Context, *RequestPurchaseRequest) (*PurchaseResponse, error)
	ConfirmPayment(context.Context, *ConfirmPaymentRequest) (*PurchaseResponse, error)
	GetPurchase(context.Context, *GetPurchaseRequest) (*PurchaseResponse, error)
	ListUnpaid(context.Context, *emptypb.Empty) (*PurchasesResponse, error)
	ListPaid(context.Context, *emptypb.Empty) (*PurchasesResponse, error)
}

// RegisterFunderServer registers srv on s.
func RegisterFunderServer(s grpc.ServiceRegistrar, srv FunderServer) {
	s.RegisterService(&funderServiceDesc, srv)
}

var funderServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*FunderServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("CreateUser", FunderServer.CreateUser),
		unary("GetUser", FunderServer.GetUser),
		unary("SetUserInfo", FunderServer.SetUserInfo),
		unary("GetUserInfo", FunderServer.GetUserInfo),
		unary("ListUsers", FunderServer.ListUsers),
		unary("GetAllowance", FunderServer.GetAllowance),
		unary("RequestPurchase", FunderServer.RequestPurchase),
		unary("ConfirmPayment", FunderServer.ConfirmPayment),
		unary("GetPurchase", FunderServer.GetPurchase),
		unary("ListUnpaid", FunderServer.ListUnpaid),
		unary("ListPaid", FunderServer.ListPaid),
	},
	Streams: []grpc.StreamDesc{},
}

func fullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

// unary builds the method descriptor for one FunderServer method.
func unary[Req, Resp any](name string, call func(FunderServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(FunderServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(FunderServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}
