// Package client is the gRPC client used by the userdir CLI.
//
// GRPCClient owns a connection to the UserService, attaches the bearer token
// to every call through a unary interceptor and, when a refresh token is
// known, transparently refreshes an expired access token once and retries.
// Status codes are mapped to sentinel errors that callers match with
// errors.Is.
package client
