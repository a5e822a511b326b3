package client

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/userdir/internal/common"
	pb "github.com/dmitrijs2005/userdir/internal/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
)

type fakeServer struct {
	pb.UnimplementedUserServiceServer

	validAccess  string
	validRefresh string

	refreshCalls int
	lastAuth     []string
	lastList     *pb.ListUsersRequest
}

func (f *fakeServer) authorized(ctx context.Context) bool {
	md, _ := metadata.FromIncomingContext(ctx)
	f.lastAuth = md.Get(common.AuthorizationHeaderName)
	return len(f.lastAuth) == 1 && f.lastAuth[0] == common.BearerPrefix+f.validAccess
}

func (f *fakeServer) Register(ctx context.Context, in *pb.RegisterRequest) (*pb.AuthResponse, error) {
	if in.Email == "taken@example.com" {
		return nil, status.Error(codes.AlreadyExists, "already exists: email")
	}
	return &pb.AuthResponse{AccessToken: "acc", RefreshToken: "ref", TokenType: "Bearer", User: &pb.User{Email: in.Email}}, nil
}

func (f *fakeServer) Login(ctx context.Context, in *pb.LoginRequest) (*pb.AuthResponse, error) {
	f.authorized(ctx)
	if in.Password != "correct-horse" {
		return nil, status.Error(codes.Unauthenticated, "unauthenticated")
	}
	return &pb.AuthResponse{AccessToken: f.validAccess, RefreshToken: f.validRefresh, TokenType: "Bearer"}, nil
}

func (f *fakeServer) RefreshToken(ctx context.Context, in *pb.RefreshTokenRequest) (*pb.AuthResponse, error) {
	f.refreshCalls++
	if in.RefreshToken != f.validRefresh {
		return nil, status.Error(codes.Unauthenticated, "unauthenticated")
	}
	f.validAccess = "fresh-access"
	f.validRefresh = "fresh-refresh"
	return &pb.AuthResponse{AccessToken: f.validAccess, RefreshToken: f.validRefresh}, nil
}

func (f *fakeServer) Me(ctx context.Context, _ *emptypb.Empty) (*pb.UserResponse, error) {
	if !f.authorized(ctx) {
		return nil, status.Error(codes.Unauthenticated, "unauthenticated")
	}
	return &pb.UserResponse{User: &pb.User{Id: "u1", Email: "alice@example.com"}}, nil
}

func (f *fakeServer) ListUsers(ctx context.Context, in *pb.ListUsersRequest) (*pb.ListUsersResponse, error) {
	if !f.authorized(ctx) {
		return nil, status.Error(codes.Unauthenticated, "unauthenticated")
	}
	f.lastList = in
	return &pb.ListUsersResponse{Users: []*pb.User{{Id: "u1"}}, Total: 1, Page: in.Page, Limit: in.Limit, TotalPages: 1}, nil
}

func (f *fakeServer) DeleteUser(ctx context.Context, in *pb.DeleteUserRequest) (*emptypb.Empty, error) {
	if !f.authorized(ctx) {
		return nil, status.Error(codes.Unauthenticated, "unauthenticated")
	}
	switch in.Id {
	case "someone-else":
		return nil, status.Error(codes.PermissionDenied, "forbidden: not the owner")
	case "missing":
		return nil, status.Error(codes.NotFound, "not found")
	}
	return &emptypb.Empty{}, nil
}

func newTestClient(t *testing.T, srv *fakeServer) *GRPCClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer()
	pb.RegisterUserServiceServer(s, srv)
	go func() { _ = s.Serve(lis) }()

	c, err := NewGRPCClient("passthrough:///bufnet", 5*time.Second,
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = c.Close()
		s.Stop()
	})
	return c
}

func TestGRPCClient_LoginStoresTokens(t *testing.T) {
	srv := &fakeServer{validAccess: "acc-1", validRefresh: "ref-1"}
	c := newTestClient(t, srv)

	resp, err := c.Login(context.Background(), "alice@example.com", []byte("correct-horse"))
	require.NoError(t, err)
	assert.Equal(t, "acc-1", resp.AccessToken)

	access, refresh := c.Tokens()
	assert.Equal(t, "acc-1", access)
	assert.Equal(t, "ref-1", refresh)
	assert.Empty(t, srv.lastAuth, "login must not carry a token")
}

func TestGRPCClient_LoginWrongPassword(t *testing.T) {
	c := newTestClient(t, &fakeServer{validAccess: "a"})

	_, err := c.Login(context.Background(), "alice@example.com", []byte("nope"))
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestGRPCClient_MeSendsBearer(t *testing.T) {
	srv := &fakeServer{validAccess: "acc-1"}
	c := newTestClient(t, srv)
	c.SetTokens("acc-1", "")

	u, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "u1", u.Id)
	assert.Equal(t, []string{"Bearer acc-1"}, srv.lastAuth)
}

func TestGRPCClient_RefreshesOnceOnUnauthenticated(t *testing.T) {
	srv := &fakeServer{validAccess: "current", validRefresh: "ref-1"}
	c := newTestClient(t, srv)
	c.SetTokens("stale", "ref-1")

	u, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "u1", u.Id)
	assert.Equal(t, 1, srv.refreshCalls)

	access, refresh := c.Tokens()
	assert.Equal(t, "fresh-access", access)
	assert.Equal(t, "fresh-refresh", refresh)
}

func TestGRPCClient_RefreshFailureReturnsOriginalError(t *testing.T) {
	srv := &fakeServer{validAccess: "current", validRefresh: "other"}
	c := newTestClient(t, srv)
	c.SetTokens("stale", "ref-1")

	_, err := c.Me(context.Background())
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, 1, srv.refreshCalls)
}

func TestGRPCClient_NoRefreshWithoutRefreshToken(t *testing.T) {
	srv := &fakeServer{validAccess: "current", validRefresh: "ref-1"}
	c := newTestClient(t, srv)
	c.SetTokens("stale", "")

	_, err := c.Me(context.Background())
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.Zero(t, srv.refreshCalls)
}

func TestGRPCClient_List(t *testing.T) {
	srv := &fakeServer{validAccess: "acc"}
	c := newTestClient(t, srv)
	c.SetTokens("acc", "")

	resp, err := c.List(context.Background(), 2, 5)
	require.NoError(t, err)
	assert.Len(t, resp.Users, 1)
	assert.Equal(t, int32(2), srv.lastList.Page)
	assert.Equal(t, int32(5), srv.lastList.Limit)
}

func TestGRPCClient_DeleteErrors(t *testing.T) {
	srv := &fakeServer{validAccess: "acc"}
	c := newTestClient(t, srv)
	c.SetTokens("acc", "")

	require.NoError(t, c.Delete(context.Background(), "u1"))

	err := c.Delete(context.Background(), "someone-else")
	require.ErrorIs(t, err, common.ErrForbidden)
	assert.Equal(t, "forbidden: not the owner", err.Error())

	require.ErrorIs(t, c.Delete(context.Background(), "missing"), common.ErrorNotFound)
}

func TestGRPCClient_RegisterConflict(t *testing.T) {
	c := newTestClient(t, &fakeServer{})

	_, err := c.Register(context.Background(), &pb.RegisterRequest{Email: "taken@example.com"})
	require.ErrorIs(t, err, common.ErrConflict)

	resp, err := c.Register(context.Background(), &pb.RegisterRequest{Email: "new@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", resp.User.Email)
	access, _ := c.Tokens()
	assert.Equal(t, "acc", access)
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"unavailable", status.Error(codes.Unavailable, "down"), ErrUnavailable},
		{"deadline", status.Error(codes.DeadlineExceeded, "slow"), ErrUnavailable},
		{"invalid", status.Error(codes.InvalidArgument, "validation error: email"), common.ErrValidation},
		{"unauthenticated", status.Error(codes.Unauthenticated, "unauthenticated"), ErrUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, mapError(tt.in), tt.want)
		})
	}

	assert.Nil(t, mapError(nil))

	plain := errors.New("boom")
	assert.Same(t, plain, mapError(plain))

	internal := mapError(status.Error(codes.Internal, "internal error"))
	assert.ErrorContains(t, internal, "rpc error")
}
