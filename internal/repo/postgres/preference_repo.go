package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ivankudzin/matrimony/internal/domain/model"
)

var ErrPreferenceNotFound = errors.New("preference not found")

type PreferenceRepo struct {
	pool *pgxpool.Pool
}

func NewPreferenceRepo(pool *pgxpool.Pool) *PreferenceRepo {
	return &PreferenceRepo{pool: pool}
}

// Upsert replaces the whole preference document of pref.UserID.
func (r *PreferenceRepo) Upsert(ctx context.Context, pref model.Preference) (model.Preference, error) {
	if r.pool == nil {
		return model.Preference{}, ErrPoolUnavailable
	}
	if pref.UserID <= 0 {
		return model.Preference{}, fmt.Errorf("invalid preference owner")
	}

	row := r.pool.QueryRow(ctx, `
INSERT INTO preferences (
	user_id,
	criteria,
	created_at,
	updated_at
) VALUES ($1, $2, $3, $3)
ON CONFLICT (user_id) DO UPDATE SET
	criteria = EXCLUDED.criteria,
	updated_at = EXCLUDED.updated_at
RETURNING criteria, created_at, updated_at
`, pref.UserID, pref, pref.UpdatedAt.UTC())

	out, err := scanPreference(row, pref.UserID)
	if err != nil {
		return model.Preference{}, fmt.Errorf("upsert preference: %w", err)
	}

	return out, nil
}

func (r *PreferenceRepo) GetByUserID(ctx context.Context, userID int64) (model.Preference, error) {
	if r.pool == nil {
		return model.Preference{}, ErrPoolUnavailable
	}

	out, err := scanPreference(r.pool.QueryRow(ctx, `
SELECT criteria, created_at, updated_at
FROM preferences
WHERE user_id = $1
`, userID), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Preference{}, ErrPreferenceNotFound
		}
		return model.Preference{}, fmt.Errorf("get preference: %w", err)
	}

	return out, nil
}

func scanPreference(row pgx.Row, userID int64) (model.Preference, error) {
	var (
		criteria  model.Preference
		createdAt time.Time
		updatedAt time.Time
	)
	if err := row.Scan(&criteria, &createdAt, &updatedAt); err != nil {
		return model.Preference{}, err
	}

	criteria.UserID = userID
	criteria.CreatedAt = createdAt
	criteria.UpdatedAt = updatedAt
	return criteria, nil
}
