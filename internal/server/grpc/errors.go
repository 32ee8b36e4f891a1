package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/idkeeper/internal/common"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrorDomain is set on every ErrorInfo detail the server attaches.
const ErrorDomain = "idkeeper"

// toStatus converts a service error into a gRPC status. ErrorInfo.Reason is
// the common.Kind label; a token failure reason goes into its metadata.
// Internal causes are logged and replaced by a generic message.
func (s *GRPCServer) toStatus(ctx context.Context, method string, err error) error {
	code, msg := codes.Internal, "internal error"

	switch {
	case errors.Is(err, common.ErrInvalidInput):
		code, msg = codes.InvalidArgument, err.Error()
	case errors.Is(err, common.ErrDuplicateEmail):
		code, msg = codes.AlreadyExists, err.Error()
	case errors.Is(err, common.ErrInvalidCredentials):
		code, msg = codes.Unauthenticated, common.ErrInvalidCredentials.Error()
	case errors.Is(err, common.ErrAccountInactive):
		code, msg = codes.PermissionDenied, err.Error()
	case errors.Is(err, common.ErrMissingPassword):
		code, msg = codes.FailedPrecondition, err.Error()
	case errors.Is(err, common.ErrInvalidToken):
		code, msg = codes.Unauthenticated, common.ErrInvalidToken.Error()
	case errors.Is(err, common.ErrUnknownSubject):
		code, msg = codes.Unauthenticated, err.Error()
	default:
		s.logger.Error(ctx, "request failed", "method", method, "error", err)
	}

	info := &errdetails.ErrorInfo{Reason: common.Kind(err), Domain: ErrorDomain}
	if reason := common.TokenReason(err); reason != "" {
		info.Metadata = map[string]string{"token_reason": reason}
	}

	st := status.New(code, msg)
	if withDetails, detailErr := st.WithDetails(info); detailErr == nil {
		st = withDetails
	}
	return st.Err()
}
