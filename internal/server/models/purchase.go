package models

import (
	"fmt"
	"time"
)

// PaymentCurrency is the external currency a purchase is paid in.
type PaymentCurrency string

const (
	PaymentBTC PaymentCurrency = "BTC"
	PaymentETH PaymentCurrency = "ETH"
)

// RequestedCurrency is the platform currency a purchase buys.
type RequestedCurrency string

const (
	RequestedBUL RequestedCurrency = "BUL"
	RequestedXLM RequestedCurrency = "XLM"
)

// DefaultRequestedCurrency applies when a request does not name one.
const DefaultRequestedCurrency = RequestedBUL

// Valid reports whether c is one of the accepted payment currencies.
func (c PaymentCurrency) Valid() bool {
	return c == PaymentBTC || c == PaymentETH
}

// Valid reports whether c is one of the accepted requested currencies.
func (c RequestedCurrency) Valid() bool {
	return c == RequestedBUL || c == RequestedXLM
}

// ParsePaymentCurrency accepts exactly "BTC" or "ETH".
func ParsePaymentCurrency(s string) (PaymentCurrency, error) {
	c := PaymentCurrency(s)
	if !c.Valid() {
		return "", fmt.Errorf("payment_currency must be BTC or ETH, got %q", s)
	}
	return c, nil
}

// ParseRequestedCurrency accepts exactly "BUL" or "XLM"; an empty string
// yields the default.
func ParseRequestedCurrency(s string) (RequestedCurrency, error) {
	if s == "" {
		return DefaultRequestedCurrency, nil
	}
	c := RequestedCurrency(s)
	if !c.Valid() {
		return "", fmt.Errorf("requested_currency must be BUL or XLM, got %q", s)
	}
	return c, nil
}

// PaymentStatus is the persisted paid flag: 0 unpaid, 1 paid.
type PaymentStatus int

const (
	Unpaid PaymentStatus = 0
	Paid   PaymentStatus = 1
)

func (s PaymentStatus) String() string {
	switch s {
	case Unpaid:
		return "unpaid"
	case Paid:
		return "paid"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// StatusOf maps a boolean paid flag to its status.
func StatusOf(paid bool) PaymentStatus {
	if paid {
		return Paid
	}
	return Unpaid
}

// Purchase is a request to convert external currency into platform currency,
// identified by its single-use payment address.
type Purchase struct {
	ID                int64
	Timestamp         time.Time
	UserPubkey        string
	PaymentAddress    string
	PaymentCurrency   PaymentCurrency
	RequestedCurrency RequestedCurrency
	EuroCents         int64
	Paid              PaymentStatus
}
