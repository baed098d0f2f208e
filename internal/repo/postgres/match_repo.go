package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ivankudzin/matrimony/internal/domain/enums"
	"github.com/ivankudzin/matrimony/internal/domain/model"
)

var ErrMatchNotFound = errors.New("match not found")

const matchColumns = `id, user_id, matched_user_id, score, criteria, status, created_at, updated_at`

type MatchRepo struct {
	pool *pgxpool.Pool
}

func NewMatchRepo(pool *pgxpool.Pool) *MatchRepo {
	return &MatchRepo{pool: pool}
}

// Upsert stores a freshly computed score for (UserID, MatchedUserID). An
// existing row keeps its id and created_at; score, criteria and status are
// overwritten with status reset to suggested.
func (r *MatchRepo) Upsert(ctx context.Context, m model.Match) (model.Match, error) {
	if r.pool == nil {
		return model.Match{}, ErrPoolUnavailable
	}
	if m.UserID <= 0 || m.MatchedUserID <= 0 {
		return model.Match{}, fmt.Errorf("invalid match payload")
	}
	if m.Criteria == nil {
		m.Criteria = []model.CriterionResult{}
	}

	out, err := scanMatch(r.pool.QueryRow(ctx, `
INSERT INTO matches (
	user_id,
	matched_user_id,
	score,
	criteria,
	status,
	created_at,
	updated_at
) VALUES ($1, $2, $3, $4, 'suggested', $5, $5)
ON CONFLICT (user_id, matched_user_id) DO UPDATE SET
	score = EXCLUDED.score,
	criteria = EXCLUDED.criteria,
	status = 'suggested',
	updated_at = EXCLUDED.updated_at
RETURNING `+matchColumns,
		m.UserID,
		m.MatchedUserID,
		m.Score,
		m.Criteria,
		m.UpdatedAt.UTC(),
	))
	if err != nil {
		return model.Match{}, fmt.Errorf("upsert match: %w", err)
	}

	return out, nil
}

// ListForUser returns the user's persisted matches ordered by score then
// recency. An empty status lists every status.
func (r *MatchRepo) ListForUser(ctx context.Context, userID int64, status enums.MatchStatus, offset, limit int) ([]model.Match, int64, error) {
	if r.pool == nil {
		return nil, 0, ErrPoolUnavailable
	}
	if offset < 0 {
		offset = 0
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `
SELECT COUNT(*)
FROM matches
WHERE user_id = $1
	AND ($2 = '' OR status = $2)
`, userID, string(status)).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count matches: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
SELECT `+matchColumns+`
FROM matches
WHERE user_id = $1
	AND ($2 = '' OR status = $2)
ORDER BY score DESC, created_at DESC, id DESC
OFFSET $3
LIMIT $4
`, userID, string(status), offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	items := make([]model.Match, 0, limit)
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan match: %w", err)
		}
		items = append(items, m)
	}
	if rows.Err() != nil {
		return nil, 0, fmt.Errorf("iterate matches: %w", rows.Err())
	}

	return items, total, nil
}

func (r *MatchRepo) UpdateStatus(ctx context.Context, userID, matchID int64, status enums.MatchStatus, at time.Time) (model.Match, error) {
	if r.pool == nil {
		return model.Match{}, ErrPoolUnavailable
	}

	out, err := scanMatch(r.pool.QueryRow(ctx, `
UPDATE matches
SET status = $3, updated_at = $4
WHERE id = $1 AND user_id = $2
RETURNING `+matchColumns,
		matchID,
		userID,
		string(status),
		at.UTC(),
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Match{}, ErrMatchNotFound
		}
		return model.Match{}, fmt.Errorf("update match status: %w", err)
	}

	return out, nil
}

func scanMatch(row pgx.Row) (model.Match, error) {
	var (
		m      model.Match
		status string
	)
	if err := row.Scan(
		&m.ID,
		&m.UserID,
		&m.MatchedUserID,
		&m.Score,
		&m.Criteria,
		&status,
		&m.CreatedAt,
		&m.UpdatedAt,
	); err != nil {
		return model.Match{}, err
	}
	m.Status = enums.MatchStatus(status)
	return m, nil
}
