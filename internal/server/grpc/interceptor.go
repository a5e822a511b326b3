package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/userdir/internal/common"
	"github.com/dmitrijs2005/userdir/internal/logging"
	pb "github.com/dmitrijs2005/userdir/internal/proto"
	"github.com/dmitrijs2005/userdir/internal/server/auth"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const requestIDMetadataKey = "x-request-id"

// publicMethods are reachable without an access token.
var publicMethods = map[string]bool{
	pb.UserService_Register_FullMethodName:     true,
	pb.UserService_Login_FullMethodName:        true,
	pb.UserService_RefreshToken_FullMethodName: true,
}

func firstMetadata(ctx context.Context, key string) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if values := md.Get(key); len(values) > 0 {
		return values[0]
	}
	return ""
}

// requestIDInterceptor reuses the caller's x-request-id or mints one, binds
// it to ctx for logging and echoes it in the response header.
func (s *GRPCServer) requestIDInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	id := firstMetadata(ctx, requestIDMetadataKey)
	if id == "" {
		id = uuid.NewString()
	}
	ctx = logging.WithRequestID(ctx, id)
	_ = grpc.SetHeader(ctx, metadata.Pairs(requestIDMetadataKey, id))
	return handler(ctx, req)
}

// callSubject is filled by accessTokenInterceptor, which runs inside the
// logging interceptor, so the access line can name the authenticated caller.
type callSubject struct{ id string }

type callSubjectKey struct{}

func setCallSubject(ctx context.Context, id string) {
	if cs, ok := ctx.Value(callSubjectKey{}).(*callSubject); ok {
		cs.id = id
	}
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	cs := &callSubject{}
	resp, err := handler(context.WithValue(ctx, callSubjectKey{}, cs), req)
	code := status.Code(err)

	args := []any{"method", info.FullMethod, "code", code.String(), "duration", time.Since(start)}
	if cs.id != "" {
		args = append(args, "subject", cs.id)
	}
	if code == codes.Internal || code == codes.Unknown {
		s.logger.Error(ctx, "rpc failed", append(args, "error", err)...)
	} else {
		s.logger.Info(ctx, "rpc", args...)
	}
	return resp, err
}

func (s *GRPCServer) metricsInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	if s.metrics != nil {
		s.metrics.ObserveGRPC(info.FullMethod, status.Code(err).String(), time.Since(start))
	}
	return resp, err
}

// accessTokenInterceptor authenticates every non-public method and binds the
// caller's identity to ctx.
func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if publicMethods[info.FullMethod] {
		return handler(ctx, req)
	}

	id, err := s.gate.Authenticate(firstMetadata(ctx, common.AuthorizationHeaderName))
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, common.ErrUnauthenticated.Error())
	}
	setCallSubject(ctx, id.SubjectID)

	return handler(auth.WithIdentity(ctx, id), req)
}
