package common

// AuthorizationHeaderName is the HTTP header and gRPC metadata key that
// carries the bearer token.
const AuthorizationHeaderName = "authorization"

// BearerPrefix is the only accepted authorization scheme. Matching is
// case-sensitive.
const BearerPrefix = "Bearer "

// TokenType is echoed to clients alongside issued tokens.
const TokenType = "Bearer"

// RequestIDHeaderName carries the per-request correlation id.
const RequestIDHeaderName = "X-Request-ID"
