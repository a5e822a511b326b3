// Package services contains server-side business logic. This file implements
// UserService: registration, login, token refresh and the self-service user
// directory operations shared by the HTTP and gRPC transports.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/userdir/internal/common"
	"github.com/dmitrijs2005/userdir/internal/dbx"
	"github.com/dmitrijs2005/userdir/internal/logging"
	"github.com/dmitrijs2005/userdir/internal/server/auth"
	"github.com/dmitrijs2005/userdir/internal/server/models"
	"github.com/dmitrijs2005/userdir/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/userdir/internal/server/repositories/users"
	"github.com/google/uuid"
)

// UserService provides the user directory operations. Reads go straight to
// the pool; create and update run their conflict check and write in one
// transaction.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      *auth.Hasher
	codec       *auth.TokenCodec
	logger      logging.Logger
	newID       func() string
}

// NewUserService constructs a UserService.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, hasher *auth.Hasher,
	codec *auth.TokenCodec, logger logging.Logger) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		codec:       codec,
		logger:      logger,
		newID:       uuid.NewString,
	}
}

// Register creates an account and signs the new user in.
func (s *UserService) Register(ctx context.Context, in models.CreateUserInput) (*models.AuthResult, error) {
	u, err := s.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	return s.authResult(u)
}

// Create validates the input, rejects a taken email or username with
// common.ErrConflict and stores a new active, unverified user.
func (s *UserService) Create(ctx context.Context, in models.CreateUserInput) (*models.User, error) {
	if err := validateCreateInput(&in); err != nil {
		return nil, err
	}

	digest, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           s.newID(),
		Email:        in.Email,
		Username:     in.Username,
		PasswordHash: digest,
		FullName:     in.FullName,
		IsActive:     true,
	}

	var created *models.User
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)
		if err := checkAvailable(ctx, repo, "", in.Email, in.Username); err != nil {
			return err
		}
		var err error
		created, err = repo.Insert(ctx, user)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "user created", "user_id", created.ID)
	return created, nil
}

// Login exchanges credentials for a token pair. An unknown email and a wrong
// password are indistinguishable, in result and in bcrypt work. A deactivated
// account is reported only to a caller who knows its password.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.AuthResult, error) {
	email = normalizeEmail(email)

	user, err := s.repomanager.Users(s.db).FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.VerifyDummy(ctx, password)
			return nil, common.ErrUnauthenticated
		}
		return nil, err
	}

	if !s.hasher.Verify(ctx, password, user.PasswordHash) {
		s.logger.Info(ctx, "login rejected", "user_id", user.ID)
		return nil, common.ErrUnauthenticated
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: account is deactivated", common.ErrForbidden)
	}

	return s.authResult(user)
}

// Refresh validates a refresh token and issues a fresh pair for its subject.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*models.AuthResult, error) {
	claims, err := s.codec.Validate(refreshToken)
	if err != nil || claims.Kind != auth.KindRefresh {
		return nil, common.ErrUnauthenticated
	}

	user, err := s.repomanager.Users(s.db).FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUnauthenticated
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: account is deactivated", common.ErrForbidden)
	}

	return s.authResult(user)
}

// Get returns the user with the given id.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	return s.repomanager.Users(s.db).FindByID(ctx, id)
}

// Me returns the caller's own record.
func (s *UserService) Me(ctx context.Context, caller auth.Identity) (*models.User, error) {
	return s.repomanager.Users(s.db).FindByID(ctx, caller.SubjectID)
}

// List returns one page of users, newest first. Zero page or limit select
// the defaults.
func (s *UserService) List(ctx context.Context, page, limit int) (*models.UserList, error) {
	window, err := models.NewPage(page, limit)
	if err != nil {
		return nil, err
	}

	repo := s.repomanager.Users(s.db)
	total, err := repo.CountAll(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := repo.ListPage(ctx, window.Offset(), window.Limit)
	if err != nil {
		return nil, err
	}

	data := make([]models.PublicUser, 0, len(rows))
	for _, u := range rows {
		data = append(data, u.Public())
	}

	return &models.UserList{
		Data:       data,
		Total:      total,
		Page:       window.Page,
		Limit:      window.Limit,
		TotalPages: window.TotalPages(total),
	}, nil
}

// Update applies p to the caller's own record. Unset fields are untouched;
// an empty patch only refreshes updated_at.
func (s *UserService) Update(ctx context.Context, caller auth.Identity, id string, p users.Patch) (*models.User, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	if err := auth.AuthorizeSelf(caller, id); err != nil {
		return nil, err
	}
	if err := validatePatch(&p); err != nil {
		return nil, err
	}

	var updated *models.User
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)
		if p.Email != nil || p.Username != nil {
			var email, username string
			if p.Email != nil {
				email = *p.Email
			}
			if p.Username != nil {
				username = *p.Username
			}
			if err := checkAvailable(ctx, repo, id, email, username); err != nil {
				return err
			}
		}
		var err error
		updated, err = repo.ExecUpdate(ctx, users.BuildUpdate(id, p))
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the caller's own record.
func (s *UserService) Delete(ctx context.Context, caller auth.Identity, id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	if err := auth.AuthorizeSelf(caller, id); err != nil {
		return err
	}
	if err := s.repomanager.Users(s.db).DeleteByID(ctx, id); err != nil {
		return err
	}
	s.logger.Info(ctx, "user deleted", "user_id", id)
	return nil
}

// checkAvailable fails with common.ErrConflict when another record (not
// selfID) already holds email or username. Empty values are not checked.
func checkAvailable(ctx context.Context, repo users.Repository, selfID, email, username string) error {
	matches, err := repo.FindByEmailOrUsername(ctx, email, username)
	if err != nil {
		return err
	}
	for _, m := range matches {
		if m.ID == selfID {
			continue
		}
		if email != "" && m.Email == email {
			return fmt.Errorf("%w: email is already registered", common.ErrConflict)
		}
		return fmt.Errorf("%w: username is already taken", common.ErrConflict)
	}
	return nil
}

func (s *UserService) authResult(u *models.User) (*models.AuthResult, error) {
	pair, err := s.codec.IssuePair(u.ID, u.Email)
	if err != nil {
		return nil, err
	}
	return &models.AuthResult{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    common.TokenType,
		ExpiresIn:    int64(s.codec.AccessTTL().Seconds()),
		User:         u.Public(),
	}, nil
}
