package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/xhunter74/collectionmanager/shared/domain"
	internal_errors "github.com/xhunter74/collectionmanager/shared/errors"
)

const userColumns = "id, user_name, email, password_hash, avatar, created, updated"

func (s *Storage) SaveUser(ctx context.Context, user domain.User) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users(id, user_name, email, password_hash) VALUES($1, $2, $3, $4)",
		user.Id, user.UserName, user.Email, user.PasswordHash)
	if err != nil {
		if _, ok := uniqueConstraint(err); ok {
			return internal_errors.Conflict("User already exists with this email address.")
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (s *Storage) UserByEmail(ctx context.Context, email string) (domain.User, error) {
	return s.user(ctx, s.db, "SELECT "+userColumns+" FROM users WHERE lower(email) = lower($1)", email)
}

func (s *Storage) UserById(ctx context.Context, id domain.UserId) (domain.User, error) {
	return s.user(ctx, s.db, "SELECT "+userColumns+" FROM users WHERE id = $1", id)
}

func (s *Storage) UpdatePassword(ctx context.Context, id domain.UserId, passwordHash string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET password_hash = $2, updated = now() WHERE id = $1", id, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return checkAffected(res, internal_errors.NotFound("User not found"))
}

func (s *Storage) SetAvatar(ctx context.Context, id domain.UserId, avatar uuid.UUID) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET avatar = $2, updated = now() WHERE id = $1", id, avatar)
	if err != nil {
		return fmt.Errorf("failed to update avatar: %w", err)
	}
	return checkAffected(res, internal_errors.NotFound("User not found"))
}

func (s *Storage) user(ctx context.Context, q Querier, query string, arg any) (domain.User, error) {
	var (
		user   domain.User
		avatar uuid.NullUUID
	)
	err := q.QueryRowContext(ctx, query, arg).Scan(
		&user.Id, &user.UserName, &user.Email, &user.PasswordHash, &avatar, &user.Created, &user.Updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, internal_errors.NotFound("User not found")
		}
		return domain.User{}, fmt.Errorf("failed to query user: %w", err)
	}
	if avatar.Valid {
		user.Avatar = &avatar.UUID
	}
	return user, nil
}
