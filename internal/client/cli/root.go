package cli

import (
	"context"
	"fmt"
)

// Root runs the REPL on the App's reader until the user exits.
func (a *App) Root(ctx context.Context) {
	prompt := interactive()
	if prompt {
		fmt.Fprintf(a.out, "funderctl connected to %s (type 'help' for commands)\n", a.config.ServerEndpointAddr)
	}
	runREPL(ctx, a, a.reader, a.out, prompt)
}
