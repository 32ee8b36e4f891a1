package client

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/idkeeper/internal/common"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
)

// kinds maps the ErrorInfo reason labels sent by the server back to the
// shared sentinels.
var kinds = map[string]error{
	"invalid_input":       common.ErrInvalidInput,
	"duplicate_email":     common.ErrDuplicateEmail,
	"invalid_credentials": common.ErrInvalidCredentials,
	"account_inactive":    common.ErrAccountInactive,
	"missing_password":    common.ErrMissingPassword,
	"invalid_token":       common.ErrInvalidToken,
	"unknown_subject":     common.ErrUnknownSubject,
	"internal":            common.ErrInternal,
}

// ServerError is a failure reported by the server.
type ServerError struct {
	Code        codes.Code
	Kind        string
	Message     string
	TokenReason string
}

func (e *ServerError) Error() string {
	if e.TokenReason != "" {
		return fmt.Sprintf("%s (%s)", e.Message, e.TokenReason)
	}
	return e.Message
}

// Unwrap exposes the common sentinel for Kind and ErrUnauthorized for
// authentication failures.
func (e *ServerError) Unwrap() []error {
	var errs []error
	if sentinel, ok := kinds[e.Kind]; ok {
		errs = append(errs, sentinel)
	}
	if e.Code == codes.Unauthenticated || e.Code == codes.PermissionDenied {
		errs = append(errs, ErrUnauthorized)
	}
	return errs
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("rpc error: %w", err)
	}

	switch st.Code() {
	case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled:
		return fmt.Errorf("%w: %s", ErrUnavailable, st.Message())
	}

	se := &ServerError{Code: st.Code(), Message: st.Message()}
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok {
			se.Kind = info.GetReason()
			se.TokenReason = info.GetMetadata()["token_reason"]
			break
		}
	}
	return se
}
