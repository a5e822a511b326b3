package grpc

import (
	"context"

	"github.com/dmitrijs2005/userdir/internal/common"
	pb "github.com/dmitrijs2005/userdir/internal/proto"
	"github.com/dmitrijs2005/userdir/internal/server/auth"
	"github.com/dmitrijs2005/userdir/internal/server/models"
	"github.com/dmitrijs2005/userdir/internal/server/repositories/users"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// userService is the subset of services.UserService the RPC surface needs.
type userService interface {
	Register(ctx context.Context, in models.CreateUserInput) (*models.AuthResult, error)
	Create(ctx context.Context, in models.CreateUserInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*models.AuthResult, error)
	Get(ctx context.Context, id string) (*models.User, error)
	Me(ctx context.Context, caller auth.Identity) (*models.User, error)
	List(ctx context.Context, page, limit int) (*models.UserList, error)
	Update(ctx context.Context, caller auth.Identity, id string, p users.Patch) (*models.User, error)
	Delete(ctx context.Context, caller auth.Identity, id string) error
}

func toPBUser(u models.PublicUser) *pb.User {
	return &pb.User{
		Id:         u.ID,
		Email:      u.Email,
		Username:   u.Username,
		FullName:   u.FullName,
		IsActive:   u.IsActive,
		IsVerified: u.IsVerified,
		CreatedAt:  timestamppb.New(u.CreatedAt),
	}
}

func toAuthResponse(r *models.AuthResult) *pb.AuthResponse {
	return &pb.AuthResponse{
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		TokenType:    r.TokenType,
		ExpiresIn:    r.ExpiresIn,
		User:         toPBUser(r.User),
	}
}

func caller(ctx context.Context) (auth.Identity, error) {
	id, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return auth.Identity{}, toStatus(common.ErrUnauthenticated)
	}
	return id, nil
}

func (s *GRPCServer) Register(ctx context.Context, req *pb.RegisterRequest) (*pb.AuthResponse, error) {
	res, err := s.users.Register(ctx, models.CreateUserInput{
		Email: req.Email, Username: req.Username, Password: req.Password, FullName: req.FullName,
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return toAuthResponse(res), nil
}

func (s *GRPCServer) Login(ctx context.Context, req *pb.LoginRequest) (*pb.AuthResponse, error) {
	res, err := s.users.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, toStatus(err)
	}
	return toAuthResponse(res), nil
}

func (s *GRPCServer) RefreshToken(ctx context.Context, req *pb.RefreshTokenRequest) (*pb.AuthResponse, error) {
	res, err := s.users.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return nil, toStatus(err)
	}
	return toAuthResponse(res), nil
}

func (s *GRPCServer) CreateUser(ctx context.Context, req *pb.CreateUserRequest) (*pb.UserResponse, error) {
	u, err := s.users.Create(ctx, models.CreateUserInput{
		Email: req.Email, Username: req.Username, Password: req.Password, FullName: req.FullName,
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return &pb.UserResponse{User: toPBUser(u.Public())}, nil
}

func (s *GRPCServer) GetUser(ctx context.Context, req *pb.GetUserRequest) (*pb.UserResponse, error) {
	u, err := s.users.Get(ctx, req.Id)
	if err != nil {
		return nil, toStatus(err)
	}
	return &pb.UserResponse{User: toPBUser(u.Public())}, nil
}

func (s *GRPCServer) ListUsers(ctx context.Context, req *pb.ListUsersRequest) (*pb.ListUsersResponse, error) {
	list, err := s.users.List(ctx, int(req.Page), int(req.Limit))
	if err != nil {
		return nil, toStatus(err)
	}
	out := &pb.ListUsersResponse{
		Users:      make([]*pb.User, 0, len(list.Data)),
		Total:      list.Total,
		Page:       int32(list.Page),
		Limit:      int32(list.Limit),
		TotalPages: int32(list.TotalPages),
	}
	for _, u := range list.Data {
		out.Users = append(out.Users, toPBUser(u))
	}
	return out, nil
}

func (s *GRPCServer) UpdateUser(ctx context.Context, req *pb.UpdateUserRequest) (*pb.UserResponse, error) {
	id, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	u, err := s.users.Update(ctx, id, req.Id, users.Patch{
		Email: req.Email, Username: req.Username, FullName: req.FullName, IsActive: req.IsActive,
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return &pb.UserResponse{User: toPBUser(u.Public())}, nil
}

func (s *GRPCServer) DeleteUser(ctx context.Context, req *pb.DeleteUserRequest) (*emptypb.Empty, error) {
	id, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.users.Delete(ctx, id, req.Id); err != nil {
		return nil, toStatus(err)
	}
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) Me(ctx context.Context, _ *emptypb.Empty) (*pb.UserResponse, error) {
	id, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	u, err := s.users.Me(ctx, id)
	if err != nil {
		return nil, toStatus(err)
	}
	return &pb.UserResponse{User: toPBUser(u.Public())}, nil
}
