package cli

import (
	"fmt"
	"sort"
	"strings"

	"google.golang.org/grpc/status"

	gs "github.com/paket-core/funder/internal/server/grpc"
)

// describeError renders an RPC failure as "code: message [reason k=v ...]".
func describeError(err error) string {
	st, ok := status.FromError(err)
	if !ok {
		return err.Error()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", st.Code(), st.Message())

	info := gs.ErrorInfoOf(err)
	if info == nil {
		return b.String()
	}

	b.WriteString(" [")
	b.WriteString(info.GetReason())
	keys := make([]string, 0, len(info.GetMetadata()))
	for k := range info.GetMetadata() {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%s", k, info.GetMetadata()[k])
	}
	b.WriteString("]")

	return b.String()
}
