// Package auth_repo provides the PostgreSQL implementation of the auth
// repositories: user accounts and refresh tokens.
package auth_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/id"
	"stockbook/internal/domain/auth"
	"stockbook/internal/infrastructure/storage/postgres"
)

// UserRepo implements auth.UserRepository.
type UserRepo struct {
	txManager *postgres.TxManager
}

var _ auth.UserRepository = (*UserRepo)(nil)

// NewUserRepo creates a new user repository.
func NewUserRepo(txManager *postgres.TxManager) *UserRepo {
	return &UserRepo{txManager: txManager}
}

const userColumns = `id, username, password_hash, display_name, role, active,
	   last_login_at, failed_logins, locked_until, created_at, updated_at, version`

func scanUser(row pgx.Row) (*auth.User, error) {
	var user auth.User
	err := row.Scan(
		&user.ID, &user.Username, &user.PasswordHash, &user.DisplayName,
		&user.Role, &user.Active, &user.LastLoginAt, &user.FailedLogins,
		&user.LockedUntil, &user.CreatedAt, &user.UpdatedAt, &user.Version,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create creates a new user.
func (r *UserRepo) Create(ctx context.Context, user *auth.User) error {
	q := r.txManager.GetQuerier(ctx)

	query := `
		INSERT INTO users (
			id, username, password_hash, display_name, role, active,
			failed_logins, created_at, updated_at, version
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := q.Exec(ctx, query,
		user.ID, user.Username, user.PasswordHash, user.DisplayName,
		user.Role, user.Active, user.FailedLogins,
		user.CreatedAt, user.UpdatedAt, user.Version,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperror.NewConflict("username already taken").
				WithDetail("username", user.Username).
				WithCause(err)
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepo) GetByID(ctx context.Context, userID id.ID) (*auth.User, error) {
	q := r.txManager.GetQuerier(ctx)

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(q.QueryRow(ctx, query, userID))
	if err == pgx.ErrNoRows {
		return nil, apperror.NewNotFound("user", userID.String())
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}

	return user, nil
}

// GetByUsername retrieves a user by username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*auth.User, error) {
	q := r.txManager.GetQuerier(ctx)

	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	user, err := scanUser(q.QueryRow(ctx, query, username))
	if err == pgx.ErrNoRows {
		return nil, apperror.NewNotFound("user", username)
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}

	return user, nil
}

// Update updates user data with optimistic locking.
func (r *UserRepo) Update(ctx context.Context, user *auth.User) error {
	q := r.txManager.GetQuerier(ctx)

	query := `
		UPDATE users SET
			password_hash = $2,
			display_name = $3,
			role = $4,
			active = $5,
			last_login_at = $6,
			failed_logins = $7,
			locked_until = $8,
			updated_at = now(),
			version = version + 1
		WHERE id = $1 AND version = $9
	`

	result, err := q.Exec(ctx, query,
		user.ID, user.PasswordHash, user.DisplayName, user.Role,
		user.Active, user.LastLoginAt, user.FailedLogins, user.LockedUntil,
		user.Version,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("user", user.ID)
	}

	user.Version++
	return nil
}

// List retrieves users with filtering.
func (r *UserRepo) List(ctx context.Context, filter auth.UserFilter) ([]auth.User, int, error) {
	q := r.txManager.GetQuerier(ctx)

	query := `SELECT ` + userColumns + ` FROM users WHERE true`
	countQuery := `SELECT COUNT(*) FROM users WHERE true`

	var args []any
	argIdx := 1

	if filter.Search != "" {
		cond := fmt.Sprintf(" AND (username ILIKE $%d OR display_name ILIKE $%d)", argIdx, argIdx)
		query += cond
		countQuery += cond
		args = append(args, "%"+filter.Search+"%")
		argIdx++
	}

	if filter.Active != nil {
		cond := fmt.Sprintf(" AND active = $%d", argIdx)
		query += cond
		countQuery += cond
		args = append(args, *filter.Active)
		argIdx++
	}

	if filter.Role != "" {
		cond := fmt.Sprintf(" AND role = $%d", argIdx)
		query += cond
		countQuery += cond
		args = append(args, filter.Role)
		argIdx++
	}

	var total int
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	query += " ORDER BY username ASC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []auth.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate users: %w", err)
	}

	return users, total, nil
}

// ExistsByUsername checks whether a username is taken.
func (r *UserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	q := r.txManager.GetQuerier(ctx)

	var one int
	err := q.QueryRow(ctx, `SELECT 1 FROM users WHERE username = $1 LIMIT 1`, username).Scan(&one)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check username: %w", err)
	}

	return true, nil
}
