package grpc

import (
	"context"
	"errors"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/paket-core/funder/internal/common"
)

// errorDomain identifies this service in ErrorInfo details.
const errorDomain = "funder.paket"

func grpcCode(kind common.Kind) codes.Code {
	switch kind {
	case common.KindNotFound:
		return codes.NotFound
	case common.KindDuplicateKey:
		return codes.AlreadyExists
	case common.KindInvalidArgument:
		return codes.InvalidArgument
	case common.KindQuotaExceeded:
		return codes.ResourceExhausted
	default:
		return codes.Internal
	}
}

// toStatus converts a service error into a gRPC status carrying an
// ErrorInfo with the error kind as reason. Internal failures keep their
// details out of the response.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}

	kind := common.KindOf(err)
	code := grpcCode(kind)

	msg := err.Error()
	metadata := common.MetadataOf(err)
	if code == codes.Internal {
		msg = "internal error"
		metadata = nil
	}

	st := status.New(code, msg)
	detailed, derr := st.WithDetails(&errdetails.ErrorInfo{
		Reason:   string(kind),
		Domain:   errorDomain,
		Metadata: metadata,
	})
	if derr != nil {
		return st.Err()
	}
	return detailed.Err()
}

// ErrorInfoOf extracts the ErrorInfo attached by the server, if any.
func ErrorInfoOf(err error) *errdetails.ErrorInfo {
	st, ok := status.FromError(err)
	if !ok {
		return nil
	}
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok {
			return info
		}
	}
	return nil
}
