// Package common contains shared constants and sentinel errors used across
// idkeeper components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the session
// token on outbound requests.
const AccessTokenHeaderName = "access_token"

// AuthorizationHeaderName and BearerPrefix describe how HTTP callers present
// the session token.
const (
	AuthorizationHeaderName = "Authorization"
	BearerPrefix            = "Bearer "
)
