package client

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/userdir/internal/common"
	pb "github.com/dmitrijs2005/userdir/internal/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

// anonymousMethods never carry a token and never trigger a refresh.
var anonymousMethods = map[string]struct{}{
	pb.UserService_Register_FullMethodName:     {},
	pb.UserService_Login_FullMethodName:        {},
	pb.UserService_RefreshToken_FullMethodName: {},
}

type GRPCClient struct {
	endpointURL string
	timeout     time.Duration
	conn        *grpc.ClientConn
	client      pb.UserServiceClient

	mu           sync.Mutex
	accessToken  string
	refreshToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if _, ok := anonymousMethods[method]; ok {
		return invoker(ctx, method, req, reply, cc, opts...)
	}

	access, refresh := s.Tokens()
	if access != "" {
		ctx = withAccessToken(ctx, access)
	}

	err := invoker(ctx, method, req, reply, cc, opts...)
	if err == nil || refresh == "" {
		return err
	}
	if status.Code(err) != codes.Unauthenticated {
		return err
	}

	resp, rerr := s.client.RefreshToken(ctx, &pb.RefreshTokenRequest{RefreshToken: refresh})
	if rerr != nil {
		return err
	}
	s.SetTokens(resp.AccessToken, resp.RefreshToken)

	ctx = withAccessToken(ctx, resp.AccessToken)
	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewGRPCClient dials endpointURL lazily; no network traffic happens until
// the first call. Extra options are appended after the defaults.
func NewGRPCClient(endpointURL string, timeout time.Duration, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, timeout: timeout}
	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}, opts...)
	conn, err := grpc.NewClient(endpointURL, dialOpts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.client = pb.NewUserServiceClient(conn)
	return c, nil
}

// SetTokens replaces the credentials used for subsequent calls.
func (s *GRPCClient) SetTokens(access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = access
	s.refreshToken = refresh
}

// Tokens returns the current access and refresh tokens.
func (s *GRPCClient) Tokens() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken, s.refreshToken
}

func (s *GRPCClient) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *GRPCClient) keepTokens(resp *pb.AuthResponse) {
	s.SetTokens(resp.AccessToken, resp.RefreshToken)
}

func (s *GRPCClient) Register(ctx context.Context, req *pb.RegisterRequest) (*pb.AuthResponse, error) {
	ctx, cancel := s.callContext(ctx)
	defer cancel()

	resp, err := s.client.Register(ctx, req)
	if err != nil {
		return nil, mapError(err)
	}
	s.keepTokens(resp)
	return resp, nil
}

func (s *GRPCClient) Login(ctx context.Context, email string, password []byte) (*pb.AuthResponse, error) {
	ctx, cancel := s.callContext(ctx)
	defer cancel()

	resp, err := s.client.Login(ctx, &pb.LoginRequest{Email: email, Password: string(password)})
	if err != nil {
		return nil, mapError(err)
	}
	s.keepTokens(resp)
	return resp, nil
}

func (s *GRPCClient) Me(ctx context.Context) (*pb.User, error) {
	ctx, cancel := s.callContext(ctx)
	defer cancel()

	resp, err := s.client.Me(ctx, &emptypb.Empty{})
	if err != nil {
		return nil, mapError(err)
	}
	return resp.User, nil
}

func (s *GRPCClient) List(ctx context.Context, page, limit int32) (*pb.ListUsersResponse, error) {
	ctx, cancel := s.callContext(ctx)
	defer cancel()

	resp, err := s.client.ListUsers(ctx, &pb.ListUsersRequest{Page: page, Limit: limit})
	if err != nil {
		return nil, mapError(err)
	}
	return resp, nil
}

func (s *GRPCClient) Delete(ctx context.Context, id string) error {
	ctx, cancel := s.callContext(ctx)
	defer cancel()

	if _, err := s.client.DeleteUser(ctx, &pb.DeleteUserRequest{Id: id}); err != nil {
		return mapError(err)
	}
	return nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}
