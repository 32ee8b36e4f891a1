// Package client talks to the idkeeper server over gRPC.
//
// The Client interface is the transport-agnostic contract used by the CLI;
// GRPCClient implements it. Every call that needs a session attaches the
// current token as access_token metadata through a unary interceptor.
//
// # Error Handling
//
// Transport failures become ErrUnavailable. Server errors carrying an
// ErrorInfo detail become a *ServerError, which unwraps to the matching
// common sentinel so callers can use errors.Is(err, common.ErrInvalidToken)
// and friends.
package client
