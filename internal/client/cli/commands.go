package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	gs "github.com/paket-core/funder/internal/server/grpc"
)

func usage(format string) error {
	return errors.New("usage: " + format)
}

// AddUser registers a pubkey under a call sign.
func (a *App) AddUser(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usage("adduser <pubkey> <call_sign>")
	}
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	resp, err := a.api.CreateUser(ctx, &gs.CreateUserRequest{Pubkey: args[0], CallSign: args[1]})
	if err != nil {
		return err
	}
	printUser(a.out, resp.User)
	return nil
}

// User looks a user up by pubkey, or by call sign when prefixed with "@".
func (a *App) User(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("user <pubkey|@call_sign>")
	}
	req := &gs.GetUserRequest{Pubkey: args[0]}
	if cs, ok := strings.CutPrefix(args[0], "@"); ok {
		req = &gs.GetUserRequest{CallSign: cs}
	}
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	resp, err := a.api.GetUser(ctx, req)
	if err != nil {
		return err
	}
	printUser(a.out, resp.User)
	return nil
}

// SetInfo prompts for the personal details of a user and records them.
func (a *App) SetInfo(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("setinfo <pubkey>")
	}
	req := &gs.SetUserInfoRequest{Pubkey: args[0]}

	var err error
	if req.FullName, err = GetOptionalText(a.reader, "Full name", a.out); err != nil {
		return err
	}
	if req.PhoneNumber, err = GetOptionalText(a.reader, "Phone number", a.out); err != nil {
		return err
	}
	if req.Address, err = GetOptionalText(a.reader, "Address", a.out); err != nil {
		return err
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	resp, err := a.api.SetUserInfo(ctx, req)
	if err != nil {
		return err
	}
	printInfo(a.out, resp.Info)
	return nil
}

func (a *App) Info(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("info <pubkey>")
	}
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	resp, err := a.api.GetUserInfo(ctx, &gs.GetUserInfoRequest{Pubkey: args[0]})
	if err != nil {
		return err
	}
	printInfo(a.out, resp.Info)
	return nil
}

func (a *App) Users(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	resp, err := a.api.ListUsers(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PUBKEY\tCALL SIGN\tFULL NAME\tALLOWANCE\tSPENT")
	for _, u := range resp.Users {
		name := ""
		if u.Info != nil {
			name = deref(u.Info.FullName)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", u.Pubkey, u.CallSign, name,
			formatCents(u.MonthlyAllowance), formatCents(u.MonthlyExpenditure))
	}
	return tw.Flush()
}

func (a *App) Allowance(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("allowance <pubkey>")
	}
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	resp, err := a.api.GetAllowance(ctx, &gs.GetAllowanceRequest{Pubkey: args[0]})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "allowance:   %s\nspent:       %s\nreserved:    %s\nremaining:   %s\n",
		formatCents(resp.MonthlyAllowance), formatCents(resp.MonthlyExpenditure),
		formatCents(resp.Reserved), formatCents(resp.Remaining))
	return nil
}

// Purchase requests a payment address for buying euro_cents worth of tokens.
func (a *App) Purchase(ctx context.Context, args []string) error {
	if len(args) < 3 || len(args) > 4 {
		return usage("purchase <pubkey> <euro_cents> <BTC|ETH> [requested_currency]")
	}
	cents, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("euro_cents must be an integer: %w", err)
	}
	req := &gs.RequestPurchaseRequest{
		UserPubkey:      args[0],
		EuroCents:       cents,
		PaymentCurrency: strings.ToUpper(args[2]),
	}
	if len(args) == 4 {
		req.RequestedCurrency = strings.ToUpper(args[3])
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	resp, err := a.api.RequestPurchase(ctx, req)
	if err != nil {
		return err
	}
	printPurchase(a.out, resp.Purchase)
	return nil
}

// Confirm marks a purchase as paid, or as unpaid when the second argument
// says so.
func (a *App) Confirm(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return usage("confirm <payment_address> [paid|unpaid]")
	}
	paid := true
	if len(args) == 2 {
		switch args[1] {
		case "paid":
		case "unpaid":
			paid = false
		default:
			return usage("confirm <payment_address> [paid|unpaid]")
		}
	}
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	resp, err := a.api.ConfirmPayment(ctx, &gs.ConfirmPaymentRequest{PaymentAddress: args[0], Paid: paid})
	if err != nil {
		return err
	}
	printPurchase(a.out, resp.Purchase)
	return nil
}

func (a *App) Show(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("show <payment_address>")
	}
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	resp, err := a.api.GetPurchase(ctx, &gs.GetPurchaseRequest{PaymentAddress: args[0]})
	if err != nil {
		return err
	}
	printPurchase(a.out, resp.Purchase)
	return nil
}

func (a *App) Unpaid(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	resp, err := a.api.ListUnpaid(ctx)
	if err != nil {
		return err
	}
	return printPurchases(a.out, resp.Purchases)
}

func (a *App) Paid(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	resp, err := a.api.ListPaid(ctx)
	if err != nil {
		return err
	}
	return printPurchases(a.out, resp.Purchases)
}

func printUser(w io.Writer, u gs.User) {
	fmt.Fprintf(w, "pubkey:      %s\ncall sign:   %s\n", u.Pubkey, u.CallSign)
}

func printInfo(w io.Writer, i gs.UserInfo) {
	fmt.Fprintf(w, "pubkey:      %s\nfull name:   %s\nphone:       %s\naddress:     %s\nupdated:     %s\n",
		i.Pubkey, deref(i.FullName), deref(i.PhoneNumber), deref(i.Address), i.UpdatedAt.Format(time.RFC3339))
}

func printPurchase(w io.Writer, p gs.Purchase) {
	fmt.Fprintf(w, "address:     %s\nuser:        %s\namount:      %s\npay with:    %s\nreceive:     %s\npaid:        %t\ntimestamp:   %s\n",
		p.PaymentAddress, p.UserPubkey, formatCents(p.EuroCents), p.PaymentCurrency,
		p.RequestedCurrency, p.Paid, p.Timestamp.Format(time.RFC3339))
}

func printPurchases(w io.Writer, ps []gs.Purchase) error {
	if len(ps) == 0 {
		fmt.Fprintln(w, "no purchases")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ADDRESS\tUSER\tAMOUNT\tPAY\tRECEIVE\tTIMESTAMP")
	for _, p := range ps {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", p.PaymentAddress, p.UserPubkey,
			formatCents(p.EuroCents), p.PaymentCurrency, p.RequestedCurrency, p.Timestamp.Format(time.RFC3339))
	}
	return tw.Flush()
}

// formatCents renders euro cents as "12.34 EUR".
func formatCents(c int64) string {
	sign := ""
	if c < 0 {
		sign = "-"
		c = -c
	}
	return fmt.Sprintf("%s%d.%02d EUR", sign, c/100, c%100)
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
