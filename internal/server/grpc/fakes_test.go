package grpc

import (
	"context"
	"time"

	"github.com/paket-core/funder/internal/common"
	"github.com/paket-core/funder/internal/server/models"
	"github.com/paket-core/funder/internal/server/services"
)

type fakeUsers struct {
	users map[string]*models.User
	info  *models.UserInfo
}

func (f *fakeUsers) CreateUser(_ context.Context, pubkey, callSign string) (*models.User, error) {
	for _, u := range f.users {
		if u.CallSign == callSign {
			return nil, common.WithMetadata(common.KindDuplicateKey, "call_sign "+callSign+" is non unique",
				map[string]string{"field": "call_sign", "value": callSign})
		}
	}
	u := &models.User{Pubkey: pubkey, CallSign: callSign}
	f.users[pubkey] = u
	return u, nil
}

func (f *fakeUsers) GetUser(_ context.Context, pubkey, callSign string) (*models.User, error) {
	if (pubkey == "") == (callSign == "") {
		return nil, common.New(common.KindInvalidArgument, "specify either pubkey or call_sign")
	}
	for _, u := range f.users {
		if u.Pubkey == pubkey || u.CallSign == callSign {
			return u, nil
		}
	}
	return nil, common.New(common.KindNotFound, "user does not exist")
}

func (f *fakeUsers) SetUserInfo(_ context.Context, pubkey string, update models.UserInfoUpdate) (*models.UserInfo, error) {
	f.info = &models.UserInfo{Pubkey: pubkey, FullName: update.FullName, PhoneNumber: update.PhoneNumber, Address: update.Address}
	return f.info, nil
}

func (f *fakeUsers) GetUserInfo(_ context.Context, pubkey string) (*models.UserInfo, error) {
	if f.info == nil || f.info.Pubkey != pubkey {
		return nil, common.New(common.KindNotFound, "no info")
	}
	return f.info, nil
}

func (f *fakeUsers) ListUsers(context.Context) ([]*models.UserSummary, error) {
	var out []*models.UserSummary
	for _, u := range f.users {
		out = append(out, &models.UserSummary{User: *u, MonthlyAllowance: 10000})
	}
	return out, nil
}

type fakeAllowance struct {
	quota services.Quota
	at    time.Time
}

func (f *fakeAllowance) Quota(_ context.Context, _ string, now time.Time) (services.Quota, error) {
	f.at = now
	return f.quota, nil
}

type fakePurchases struct {
	purchases []*models.Purchase
	panicOn   string
}

func (f *fakePurchases) RequestPurchase(_ context.Context, req services.PurchaseRequest) (*models.Purchase, error) {
	if req.UserPubkey == f.panicOn {
		panic("boom")
	}
	if req.EuroCents > 100 {
		return nil, common.WithMetadata(common.KindQuotaExceeded, "quota exceeded",
			map[string]string{"user": req.UserPubkey, "remaining": "100", "requested": "500"})
	}
	p := &models.Purchase{
		UserPubkey:        req.UserPubkey,
		PaymentAddress:    "addr-" + req.UserPubkey,
		PaymentCurrency:   models.PaymentCurrency(req.PaymentCurrency),
		RequestedCurrency: models.DefaultRequestedCurrency,
		EuroCents:         req.EuroCents,
	}
	f.purchases = append(f.purchases, p)
	return p, nil
}

func (f *fakePurchases) ConfirmPayment(_ context.Context, address string, paid bool) (*models.Purchase, error) {
	for _, p := range f.purchases {
		if p.PaymentAddress == address {
			p.Paid = models.StatusOf(paid)
			return p, nil
		}
	}
	return nil, common.New(common.KindNotFound, "no purchase")
}

func (f *fakePurchases) GetPurchase(_ context.Context, address string) (*models.Purchase, error) {
	for _, p := range f.purchases {
		if p.PaymentAddress == address {
			return p, nil
		}
	}
	return nil, common.New(common.KindNotFound, "no purchase")
}

func (f *fakePurchases) list(status models.PaymentStatus) []*models.Purchase {
	var out []*models.Purchase
	for _, p := range f.purchases {
		if p.Paid == status {
			out = append(out, p)
		}
	}
	return out
}

func (f *fakePurchases) ListUnpaid(context.Context) ([]*models.Purchase, error) {
	return f.list(models.Unpaid), nil
}

func (f *fakePurchases) ListPaid(context.Context) ([]*models.Purchase, error) {
	return f.list(models.Paid), nil
}
