package grpc

import (
	"context"

	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/paket-core/funder/internal/server/models"
	"github.com/paket-core/funder/internal/server/services"
)

func (s *GRPCServer) CreateUser(ctx context.Context, req *CreateUserRequest) (*UserResponse, error) {
	u, err := s.users.CreateUser(ctx, req.Pubkey, req.CallSign)
	if err != nil {
		return nil, err
	}
	return &UserResponse{User: toUser(u)}, nil
}

func (s *GRPCServer) GetUser(ctx context.Context, req *GetUserRequest) (*UserResponse, error) {
	u, err := s.users.GetUser(ctx, req.Pubkey, req.CallSign)
	if err != nil {
		return nil, err
	}
	return &UserResponse{User: toUser(u)}, nil
}

func (s *GRPCServer) SetUserInfo(ctx context.Context, req *SetUserInfoRequest) (*UserInfoResponse, error) {
	info, err := s.users.SetUserInfo(ctx, req.Pubkey, models.UserInfoUpdate{
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
	})
	if err != nil {
		return nil, err
	}
	return &UserInfoResponse{Info: toUserInfo(info)}, nil
}

func (s *GRPCServer) GetUserInfo(ctx context.Context, req *GetUserInfoRequest) (*UserInfoResponse, error) {
	info, err := s.users.GetUserInfo(ctx, req.Pubkey)
	if err != nil {
		return nil, err
	}
	return &UserInfoResponse{Info: toUserInfo(info)}, nil
}

func (s *GRPCServer) ListUsers(ctx context.Context, _ *emptypb.Empty) (*UsersResponse, error) {
	list, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	resp := &UsersResponse{Users: make([]UserSummary, 0, len(list))}
	for _, u := range list {
		summary := UserSummary{
			User:               toUser(&u.User),
			MonthlyAllowance:   u.MonthlyAllowance,
			MonthlyExpenditure: u.MonthlyExpenditure,
		}
		if u.Info != nil {
			info := toUserInfo(u.Info)
			summary.Info = &info
		}
		resp.Users = append(resp.Users, summary)
	}
	return resp, nil
}

// GetAllowance fails with NotFound for unknown users rather than reporting
// a zero allowance.
func (s *GRPCServer) GetAllowance(ctx context.Context, req *GetAllowanceRequest) (*AllowanceResponse, error) {
	if _, err := s.users.GetUser(ctx, req.Pubkey, ""); err != nil {
		return nil, err
	}

	q, err := s.allowance.Quota(ctx, req.Pubkey, s.now())
	if err != nil {
		return nil, err
	}
	return &AllowanceResponse{
		MonthlyAllowance:   q.Allowance,
		MonthlyExpenditure: q.Expenditure,
		Reserved:           q.Reserved,
		Remaining:          q.Remaining(),
	}, nil
}

func (s *GRPCServer) RequestPurchase(ctx context.Context, req *RequestPurchaseRequest) (*PurchaseResponse, error) {
	p, err := s.purchases.RequestPurchase(ctx, services.PurchaseRequest{
		UserPubkey:        req.UserPubkey,
		EuroCents:         req.EuroCents,
		PaymentCurrency:   req.PaymentCurrency,
		RequestedCurrency: req.RequestedCurrency,
	})
	if err != nil {
		return nil, err
	}
	return &PurchaseResponse{Purchase: toPurchase(p)}, nil
}

func (s *GRPCServer) ConfirmPayment(ctx context.Context, req *ConfirmPaymentRequest) (*PurchaseResponse, error) {
	p, err := s.purchases.ConfirmPayment(ctx, req.PaymentAddress, req.Paid)
	if err != nil {
		return nil, err
	}
	return &PurchaseResponse{Purchase: toPurchase(p)}, nil
}

func (s *GRPCServer) GetPurchase(ctx context.Context, req *GetPurchaseRequest) (*PurchaseResponse, error) {
	p, err := s.purchases.GetPurchase(ctx, req.PaymentAddress)
	if err != nil {
		return nil, err
	}
	return &PurchaseResponse{Purchase: toPurchase(p)}, nil
}

func (s *GRPCServer) ListUnpaid(ctx context.Context, _ *emptypb.Empty) (*PurchasesResponse, error) {
	ps, err := s.purchases.ListUnpaid(ctx)
	if err != nil {
		return nil, err
	}
	return &PurchasesResponse{Purchases: toPurchases(ps)}, nil
}

func (s *GRPCServer) ListPaid(ctx context.Context, _ *emptypb.Empty) (*PurchasesResponse, error) {
	ps, err := s.purchases.ListPaid(ctx)
	if err != nil {
		return nil, err
	}
	return &PurchasesResponse{Purchases: toPurchases(ps)}, nil
}
