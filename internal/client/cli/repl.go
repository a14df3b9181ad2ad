package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// execIface defines the command surface the REPL dispatches to.
// The real App type satisfies this interface; tests provide a stub.
type execIface interface {
	AddUser(ctx context.Context, args []string) error
	User(ctx context.Context, args []string) error
	SetInfo(ctx context.Context, args []string) error
	Info(ctx context.Context, args []string) error
	Users(ctx context.Context) error
	Allowance(ctx context.Context, args []string) error
	Purchase(ctx context.Context, args []string) error
	Confirm(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	Unpaid(ctx context.Context) error
	Paid(ctx context.Context) error
}

const helpText = `Available commands:
  adduser <pubkey> <call_sign>                 register a user
  user <pubkey|@call_sign>                     look a user up
  setinfo <pubkey>                             record personal details (prompts)
  info <pubkey>                                show personal details
  users                                        list users with allowance
  allowance <pubkey>                           show monthly allowance figures
  purchase <pubkey> <cents> <BTC|ETH> [cur]    request a payment address
  confirm <address> [paid|unpaid]              set the payment status
  show <address>                               show a purchase
  unpaid | paid                                list purchases by status
  exit | quit                                  leave the program`

// runREPL reads commands line by line from reader and dispatches them to a.
// The loop exits on EOF, on "exit"/"quit", or when ctx is done. Command
// errors are printed and the loop carries on. The "funder> " prompt is only
// written when prompt is set.
func runREPL(ctx context.Context, a execIface, reader *bufio.Reader, out io.Writer, prompt bool) {
	for {
		if ctx.Err() != nil {
			return
		}
		if prompt {
			fmt.Fprint(out, "funder> ")
		}
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			fmt.Fprintln(out, helpText)
		case "adduser":
			cmdErr = a.AddUser(ctx, args)
		case "user":
			cmdErr = a.User(ctx, args)
		case "setinfo":
			cmdErr = a.SetInfo(ctx, args)
		case "info":
			cmdErr = a.Info(ctx, args)
		case "users":
			cmdErr = a.Users(ctx)
		case "allowance":
			cmdErr = a.Allowance(ctx, args)
		case "purchase":
			cmdErr = a.Purchase(ctx, args)
		case "confirm":
			cmdErr = a.Confirm(ctx, args)
		case "show":
			cmdErr = a.Show(ctx, args)
		case "unpaid":
			cmdErr = a.Unpaid(ctx)
		case "paid":
			cmdErr = a.Paid(ctx)
		case "exit", "quit":
			fmt.Fprintln(out, "Bye!")
			return
		default:
			fmt.Fprintln(out, "Unknown command:", cmd)
		}
		if cmdErr != nil {
			fmt.Fprintln(out, "error:", describeError(cmdErr))
		}

		if err != nil {
			return
		}
	}
}
