package grpc

import (
	"time"

	"github.com/paket-core/funder/internal/server/models"
)

// Wire messages of the Funder service. They travel as JSON (see codec.go).

type User struct {
	Pubkey   string `json:"pubkey"`
	CallSign string `json:"call_sign"`
}

type UserInfo struct {
	Pubkey      string    `json:"pubkey"`
	FullName    *string   `json:"full_name,omitempty"`
	PhoneNumber *string   `json:"phone_number,omitempty"`
	Address     *string   `json:"address,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type UserSummary struct {
	User
	Info               *UserInfo `json:"info,omitempty"`
	MonthlyAllowance   int64     `json:"monthly_allowance"`
	MonthlyExpenditure int64     `json:"monthly_expenditure"`
}

type Purchase struct {
	Timestamp         time.Time `json:"timestamp"`
	UserPubkey        string    `json:"user_pubkey"`
	PaymentAddress    string    `json:"payment_address"`
	PaymentCurrency   string    `json:"payment_currency"`
	RequestedCurrency string    `json:"requested_currency"`
	EuroCents         int64     `json:"euro_cents"`
	Paid              bool      `json:"paid"`
}

type CreateUserRequest struct {
	Pubkey   string `json:"pubkey"`
	CallSign string `json:"call_sign"`
}

// GetUserRequest selects a user by exactly one of its fields.
type GetUserRequest struct {
	Pubkey   string `json:"pubkey,omitempty"`
	CallSign string `json:"call_sign,omitempty"`
}

type UserResponse struct {
	User User `json:"user"`
}

// SetUserInfoRequest holds the fields to record; absent fields are kept.
type SetUserInfoRequest struct {
	Pubkey      string  `json:"pubkey"`
	FullName    *string `json:"full_name,omitempty"`
	PhoneNumber *string `json:"phone_number,omitempty"`
	Address     *string `json:"address,omitempty"`
}

type GetUserInfoRequest struct {
	Pubkey string `json:"pubkey"`
}

type UserInfoResponse struct {
	Info UserInfo `json:"info"`
}

type UsersResponse struct {
	Users []UserSummary `json:"users"`
}

type GetAllowanceRequest struct {
	Pubkey string `json:"pubkey"`
}

// AllowanceResponse reports euro-cent figures for the trailing window.
// Remaining already subtracts unpaid reservations.
type AllowanceResponse struct {
	MonthlyAllowance   int64 `json:"monthly_allowance"`
	MonthlyExpenditure int64 `json:"monthly_expenditure"`
	Reserved           int64 `json:"reserved"`
	Remaining          int64 `json:"remaining"`
}

type RequestPurchaseRequest struct {
	UserPubkey        string `json:"user_pubkey"`
	EuroCents         int64  `json:"euro_cents"`
	PaymentCurrency   string `json:"payment_currency"`
	RequestedCurrency string `json:"requested_currency,omitempty"`
}

type ConfirmPaymentRequest struct {
	PaymentAddress string `json:"payment_address"`
	Paid           bool   `json:"paid"`
}

type GetPurchaseRequest struct {
	PaymentAddress string `json:"payment_address"`
}

type PurchaseResponse struct {
	Purchase Purchase `json:"purchase"`
}

type PurchasesResponse struct {
	Purchases []Purchase `json:"purchases"`
}

func toUser(u *models.User) User {
	return User{Pubkey: u.Pubkey, CallSign: u.CallSign}
}

func toUserInfo(i *models.UserInfo) UserInfo {
	return UserInfo{
		Pubkey:      i.Pubkey,
		FullName:    i.FullName,
		PhoneNumber: i.PhoneNumber,
		Address:     i.Address,
		UpdatedAt:   i.UpdatedAt,
	}
}

func toPurchase(p *models.Purchase) Purchase {
	return Purchase{
		Timestamp:         p.Timestamp,
		UserPubkey:        p.UserPubkey,
		PaymentAddress:    p.PaymentAddress,
		PaymentCurrency:   string(p.PaymentCurrency),
		RequestedCurrency: string(p.RequestedCurrency),
		EuroCents:         p.EuroCents,
		Paid:              p.Paid == models.Paid,
	}
}

func toPurchases(ps []*models.Purchase) []Purchase {
	out := make([]Purchase, 0, len(ps))
	for _, p := range ps {
		out = append(out, toPurchase(p))
	}
	return out
}
