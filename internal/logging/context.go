package logging

import "context"

type requestIDKey struct{}

// WithRequestID binds a request id to ctx. SlogLogger adds it to every
// record logged with that ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the id bound by WithRequestID, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
