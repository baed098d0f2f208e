package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ivankudzin/matrimony/internal/domain/enums"
	"github.com/ivankudzin/matrimony/internal/domain/model"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) GetByID(ctx context.Context, userID int64) (model.User, error) {
	if r.pool == nil {
		return model.User{}, ErrPoolUnavailable
	}

	user, err := scanUser(r.pool.QueryRow(ctx, `
SELECT id, email, role, created_at, updated_at
FROM users
WHERE id = $1
`, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("get user: %w", err)
	}

	return user, nil
}

// EnsureByEmail returns the account registered under email, creating it with
// the user role on first sight.
func (r *UserRepo) EnsureByEmail(ctx context.Context, email string) (model.User, error) {
	if r.pool == nil {
		return model.User{}, ErrPoolUnavailable
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return model.User{}, fmt.Errorf("email is required")
	}

	user, err := scanUser(r.pool.QueryRow(ctx, `
INSERT INTO users (
	email,
	role,
	created_at,
	updated_at
) VALUES ($1, $2, NOW(), NOW())
ON CONFLICT (email) DO UPDATE SET
	updated_at = users.updated_at
RETURNING id, email, role, created_at, updated_at
`, email, string(enums.RoleUser)))
	if err != nil {
		return model.User{}, fmt.Errorf("ensure user: %w", err)
	}

	return user, nil
}

func scanUser(row pgx.Row) (model.User, error) {
	var (
		user model.User
		role string
	)
	if err := row.Scan(&user.ID, &user.Email, &role, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return model.User{}, err
	}
	user.Role = enums.Role(role)
	return user, nil
}
