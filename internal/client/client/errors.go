package client

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/userdir/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
)

// statusError carries the server's message while matching a sentinel.
type statusError struct {
	kind error
	msg  string
}

func (e *statusError) Error() string { return e.msg }
func (e *statusError) Unwrap() error { return e.kind }

// mapError converts a gRPC status into a sentinel, keeping the server's
// message for display.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	var kind error
	switch st.Code() {
	case codes.Unauthenticated:
		kind = ErrUnauthorized
	case codes.PermissionDenied:
		kind = common.ErrForbidden
	case codes.NotFound:
		kind = common.ErrorNotFound
	case codes.AlreadyExists:
		kind = common.ErrConflict
	case codes.InvalidArgument:
		kind = common.ErrValidation
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
	return &statusError{kind: kind, msg: st.Message()}
}
