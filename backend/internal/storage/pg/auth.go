package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/lib/pq"
	"github.com/portal-dev/portal/shared/domain"
	internal_errors "github.com/portal-dev/portal/shared/errors"
)

const uniqueViolation = "23505"

// =========================================================================
// Public Methods (satisfy the service.AuthStorage interface)
// =========================================================================

// SaveUser inserts a new user. A taken email yields a 409.
func (s *Storage) SaveUser(user domain.User) (domain.UserId, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	var id domain.UserId
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		id, err = s.saveUser(ctx, tx, user)
		return err
	})
	return id, err
}

// User fetches a user by email.
func (s *Storage) User(email domain.Email) (domain.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	return s.user(ctx, s.db, email)
}

// =========================================================================
// Internal Methods (Core Database Logic)
// These methods accept a Querier and are transaction-agnostic.
// =========================================================================

func (s *Storage) saveUser(ctx context.Context, q Querier, user domain.User) (domain.UserId, error) {
	role := user.Role
	if role == "" {
		role = domain.RoleUser
	}
	var id domain.UserId
	err := q.QueryRowContext(ctx,
		"INSERT INTO users(email, name, password_hash, role) VALUES($1, $2, $3, $4) RETURNING id",
		user.Email, user.Name, user.PassHash, string(role),
	).Scan(&id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return -1, &internal_errors.ErrorWithStatusCode{Message: "Email is already registered", StatusCode: http.StatusConflict}
		}
		return -1, fmt.Errorf("failed to insert user: %w", err)
	}
	return id, nil
}

func (s *Storage) user(ctx context.Context, q Querier, email domain.Email) (domain.User, error) {
	var user domain.User
	var role string
	err := q.QueryRowContext(ctx,
		"SELECT id, email, name, password_hash, role FROM users WHERE email = $1", email,
	).Scan(&user.Id, &user.Email, &user.Name, &user.PassHash, &role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, internal_errors.NotFound("User not found")
		}
		return domain.User{}, fmt.Errorf("failed to query user: %w", err)
	}
	user.Role = domain.Role(role)
	return user, nil
}
