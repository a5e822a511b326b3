package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/userdir/internal/common"
	"github.com/dmitrijs2005/userdir/internal/dbx"
	"github.com/dmitrijs2005/userdir/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const userColumns = "id, email, username, password_hash, full_name, is_active, is_verified, created_at, updated_at"

const (
	queryFindByEmailOrUsername = `SELECT ` + userColumns + ` FROM users WHERE email = $1 OR username = $2`
	queryFindByID              = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	queryFindByEmail           = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	queryCountAll              = `SELECT COUNT(*) FROM users`
	queryListPage              = `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`
	queryDeleteByID            = `DELETE FROM users WHERE id = $1`
	queryInsert                = `INSERT INTO users (id, email, username, password_hash, full_name, is_active, is_verified)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`
)

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// PostgresRepository implements Repository over dbx.DBTX, so it runs
// equally against the pool or inside a transaction.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(s rowScanner) (*models.User, error) {
	u := &models.User{}
	err := s.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.FullName,
		&u.IsActive, &u.IsVerified, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// mapError converts driver errors into the store's error taxonomy.
func mapError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrorNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("%w: %s", common.ErrConflict, pgErr.ConstraintName)
	}
	return fmt.Errorf("%w: db error: %w", common.ErrStore, err)
}

func (r *PostgresRepository) FindByEmailOrUsername(ctx context.Context, email, username string) ([]*models.User, error) {
	return r.queryUsers(ctx, queryFindByEmailOrUsername, email, username)
}

func (r *PostgresRepository) Insert(ctx context.Context, user *models.User) (*models.User, error) {
	err := r.db.QueryRowContext(ctx, queryInsert,
		user.ID, user.Email, user.Username, user.PasswordHash, user.FullName, user.IsActive, user.IsVerified,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return user, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, queryFindByID, id))
	if err != nil {
		return nil, mapError(err)
	}
	return u, nil
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, queryFindByEmail, email))
	if err != nil {
		return nil, mapError(err)
	}
	return u, nil
}

func (r *PostgresRepository) CountAll(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, queryCountAll).Scan(&n); err != nil {
		return 0, mapError(err)
	}
	return n, nil
}

func (r *PostgresRepository) ListPage(ctx context.Context, offset, limit int) ([]*models.User, error) {
	return r.queryUsers(ctx, queryListPage, limit, offset)
}

func (r *PostgresRepository) ExecUpdate(ctx context.Context, st Statement) (*models.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, st.SQL, st.Args...))
	if err != nil {
		return nil, mapError(err)
	}
	return u, nil
}

func (r *PostgresRepository) DeleteByID(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, queryDeleteByID, id)
	if err != nil {
		return mapError(err)
	}
	return dbx.RequireAffected(res)
}

func (r *PostgresRepository) queryUsers(ctx context.Context, query string, args ...any) ([]*models.User, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, mapError(err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return users, nil
}
