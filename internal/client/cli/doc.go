// Package cli provides funderctl, an interactive admin console for the
// funder service.
//
// It dials the server's gRPC endpoint, tags every call with a request id and
// runs a small REPL over stdin. Commands map one to one onto Funder RPCs:
//
//   - adduser / user / setinfo / info / users
//   - allowance
//   - purchase / confirm / show / unpaid / paid
//
// Failed calls print the gRPC code together with the server's error reason
// and metadata. The REPL is started via App.Root(ctx), which blocks until the
// user exits or stdin is closed.
package cli
