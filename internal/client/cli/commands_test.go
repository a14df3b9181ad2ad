package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"

	"github.com/paket-core/funder/internal/client/config"
	gs "github.com/paket-core/funder/internal/server/grpc"
)

type fakeAPI struct {
	lastUser     *gs.GetUserRequest
	lastInfo     *gs.SetUserInfoRequest
	lastPurchase *gs.RequestPurchaseRequest
	lastConfirm  *gs.ConfirmPaymentRequest
	purchases    []gs.Purchase
	err          error
	deadline     bool
}

var ts = time.Date(2018, 6, 1, 12, 0, 0, 0, time.UTC)

func (f *fakeAPI) CreateUser(_ context.Context, in *gs.CreateUserRequest, _ ...grpc.CallOption) (*gs.UserResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &gs.UserResponse{User: gs.User{Pubkey: in.Pubkey, CallSign: in.CallSign}}, nil
}

func (f *fakeAPI) GetUser(ctx context.Context, in *gs.GetUserRequest, _ ...grpc.CallOption) (*gs.UserResponse, error) {
	_, f.deadline = ctx.Deadline()
	f.lastUser = in
	return &gs.UserResponse{User: gs.User{Pubkey: "pk1", CallSign: "alice"}}, f.err
}

func (f *fakeAPI) SetUserInfo(_ context.Context, in *gs.SetUserInfoRequest, _ ...grpc.CallOption) (*gs.UserInfoResponse, error) {
	f.lastInfo = in
	return &gs.UserInfoResponse{Info: gs.UserInfo{Pubkey: in.Pubkey, FullName: in.FullName, Address: in.Address, UpdatedAt: ts}}, nil
}

func (f *fakeAPI) GetUserInfo(_ context.Context, in *gs.GetUserInfoRequest, _ ...grpc.CallOption) (*gs.UserInfoResponse, error) {
	name := "Jane Doe"
	return &gs.UserInfoResponse{Info: gs.UserInfo{Pubkey: in.Pubkey, FullName: &name, UpdatedAt: ts}}, nil
}

func (f *fakeAPI) ListUsers(context.Context, ...grpc.CallOption) (*gs.UsersResponse, error) {
	name := "Jane Doe"
	return &gs.UsersResponse{Users: []gs.UserSummary{
		{User: gs.User{Pubkey: "pk1", CallSign: "alice"}, Info: &gs.UserInfo{FullName: &name}, MonthlyAllowance: 10000, MonthlyExpenditure: 6000},
		{User: gs.User{Pubkey: "pk2", CallSign: "bob"}, MonthlyAllowance: 5000},
	}}, nil
}

func (f *fakeAPI) GetAllowance(context.Context, *gs.GetAllowanceRequest, ...grpc.CallOption) (*gs.AllowanceResponse, error) {
	return &gs.AllowanceResponse{MonthlyAllowance: 10000, MonthlyExpenditure: 6000, Reserved: 1000, Remaining: 3000}, nil
}

func (f *fakeAPI) RequestPurchase(_ context.Context, in *gs.RequestPurchaseRequest, _ ...grpc.CallOption) (*gs.PurchaseResponse, error) {
	f.lastPurchase = in
	if f.err != nil {
		return nil, f.err
	}
	return &gs.PurchaseResponse{Purchase: gs.Purchase{
		PaymentAddress: "addr-1", UserPubkey: in.UserPubkey, EuroCents: in.EuroCents,
		PaymentCurrency: in.PaymentCurrency, RequestedCurrency: "BUL", Timestamp: ts,
	}}, nil
}

func (f *fakeAPI) ConfirmPayment(_ context.Context, in *gs.ConfirmPaymentRequest, _ ...grpc.CallOption) (*gs.PurchaseResponse, error) {
	f.lastConfirm = in
	return &gs.PurchaseResponse{Purchase: gs.Purchase{PaymentAddress: in.PaymentAddress, Paid: in.Paid, Timestamp: ts}}, nil
}

func (f *fakeAPI) GetPurchase(_ context.Context, in *gs.GetPurchaseRequest, _ ...grpc.CallOption) (*gs.PurchaseResponse, error) {
	return &gs.PurchaseResponse{Purchase: gs.Purchase{PaymentAddress: in.PaymentAddress, EuroCents: 1234, Timestamp: ts}}, nil
}

func (f *fakeAPI) ListUnpaid(context.Context, ...grpc.CallOption) (*gs.PurchasesResponse, error) {
	return &gs.PurchasesResponse{Purchases: f.purchases}, nil
}

func (f *fakeAPI) ListPaid(context.Context, ...grpc.CallOption) (*gs.PurchasesResponse, error) {
	return &gs.PurchasesResponse{}, nil
}

func newTestApp(api FunderAPI, input string) (*App, *bytes.Buffer) {
	var out bytes.Buffer
	return &App{
		config: &config.Config{ServerEndpointAddr: "bufnet", RequestTimeout: time.Second},
		api:    api,
		reader: rdr(input),
		out:    &out,
	}, &out
}

func TestApp_UsageErrors(t *testing.T) {
	a, _ := newTestApp(&fakeAPI{}, "")
	ctx := context.Background()

	for name, err := range map[string]error{
		"adduser":   a.AddUser(ctx, []string{"pk1"}),
		"user":      a.User(ctx, nil),
		"setinfo":   a.SetInfo(ctx, nil),
		"info":      a.Info(ctx, []string{"a", "b"}),
		"allowance": a.Allowance(ctx, nil),
		"purchase":  a.Purchase(ctx, []string{"pk1", "100"}),
		"confirm":   a.Confirm(ctx, []string{"addr", "maybe"}),
		"show":      a.Show(ctx, nil),
	} {
		require.Error(t, err, name)
		assert.Contains(t, err.Error(), "usage: "+name, name)
	}
}

func TestApp_AddUserAndLookup(t *testing.T) {
	api := &fakeAPI{}
	a, out := newTestApp(api, "")
	ctx := context.Background()

	require.NoError(t, a.AddUser(ctx, []string{"pk1", "alice"}))
	assert.Contains(t, out.String(), "call sign:   alice")

	require.NoError(t, a.User(ctx, []string{"@alice"}))
	assert.Equal(t, &gs.GetUserRequest{CallSign: "alice"}, api.lastUser)
	assert.True(t, api.deadline, "request timeout applied")

	require.NoError(t, a.User(ctx, []string{"pk1"}))
	assert.Equal(t, &gs.GetUserRequest{Pubkey: "pk1"}, api.lastUser)
}

func TestApp_AddUserError(t *testing.T) {
	boom := errors.New("boom")
	a, _ := newTestApp(&fakeAPI{err: boom}, "")
	assert.ErrorIs(t, a.AddUser(context.Background(), []string{"pk1", "alice"}), boom)
}

func TestApp_SetInfoPrompts(t *testing.T) {
	api := &fakeAPI{}
	a, out := newTestApp(api, "Jane Doe\n\n-\n")

	require.NoError(t, a.SetInfo(context.Background(), []string{"pk1"}))

	require.NotNil(t, api.lastInfo)
	assert.Equal(t, "Jane Doe", *api.lastInfo.FullName)
	assert.Nil(t, api.lastInfo.PhoneNumber, "blank answer keeps the field")
	assert.Equal(t, "", *api.lastInfo.Address, "dash clears the field")
	assert.Contains(t, out.String(), "full name:   Jane Doe")
	assert.Contains(t, out.String(), "phone:       -")
}

func TestApp_Purchase(t *testing.T) {
	api := &fakeAPI{}
	a, out := newTestApp(api, "")
	ctx := context.Background()

	err := a.Purchase(ctx, []string{"pk1", "ten", "BTC"})
	require.Error(t, err)
	assert.Nil(t, api.lastPurchase)

	require.NoError(t, a.Purchase(ctx, []string{"pk1", "4000", "eth", "bul"}))
	assert.Equal(t, &gs.RequestPurchaseRequest{
		UserPubkey: "pk1", EuroCents: 4000, PaymentCurrency: "ETH", RequestedCurrency: "BUL",
	}, api.lastPurchase)
	assert.Contains(t, out.String(), "amount:      40.00 EUR")
	assert.Contains(t, out.String(), "address:     addr-1")
}

func TestApp_Confirm(t *testing.T) {
	api := &fakeAPI{}
	a, out := newTestApp(api, "")
	ctx := context.Background()

	require.NoError(t, a.Confirm(ctx, []string{"addr-1"}))
	assert.True(t, api.lastConfirm.Paid)
	assert.Contains(t, out.String(), "paid:        true")

	require.NoError(t, a.Confirm(ctx, []string{"addr-1", "unpaid"}))
	assert.False(t, api.lastConfirm.Paid)
}

func TestApp_Listings(t *testing.T) {
	api := &fakeAPI{purchases: []gs.Purchase{
		{PaymentAddress: "addr-1", UserPubkey: "pk1", EuroCents: 250, PaymentCurrency: "BTC", RequestedCurrency: "BUL", Timestamp: ts},
	}}
	a, out := newTestApp(api, "")
	ctx := context.Background()

	require.NoError(t, a.Users(ctx))
	assert.Contains(t, out.String(), "Jane Doe")
	assert.Contains(t, out.String(), "100.00 EUR")
	assert.Contains(t, out.String(), "bob")

	out.Reset()
	require.NoError(t, a.Unpaid(ctx))
	assert.Contains(t, out.String(), "addr-1")
	assert.Contains(t, out.String(), "2.50 EUR")

	out.Reset()
	require.NoError(t, a.Paid(ctx))
	assert.Equal(t, "no purchases\n", out.String())

	out.Reset()
	require.NoError(t, a.Allowance(ctx, []string{"pk1"}))
	assert.Contains(t, out.String(), "remaining:   30.00 EUR")

	out.Reset()
	require.NoError(t, a.Show(ctx, []string{"addr-9"}))
	assert.Contains(t, out.String(), "12.34 EUR")

	out.Reset()
	require.NoError(t, a.Info(ctx, []string{"pk1"}))
	assert.Contains(t, out.String(), "Jane Doe")
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "0.00 EUR", formatCents(0))
	assert.Equal(t, "0.05 EUR", formatCents(5))
	assert.Equal(t, "60.00 EUR", formatCents(6000))
	assert.Equal(t, "-1.50 EUR", formatCents(-150))
}
