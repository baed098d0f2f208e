package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ivankudzin/matrimony/internal/domain/enums"
	"github.com/ivankudzin/matrimony/internal/domain/model"
)

var (
	ErrInteractionNotFound = errors.New("interaction not found")
	ErrInteractionExists   = errors.New("interaction already exists")
)

const interactionColumns = `id, from_user_id, to_user_id, type, status, message, created_at, updated_at`

type InteractionRepo struct {
	pool *pgxpool.Pool
}

type InteractionFilter struct {
	FromUserID int64
	ToUserID   int64
	Type       enums.InteractionType
	Statuses   []enums.InteractionStatus
}

func NewInteractionRepo(pool *pgxpool.Pool) *InteractionRepo {
	return &InteractionRepo{pool: pool}
}

// CreateInterest inserts a pending interest, or revives a removed one on the
// same row. Any other existing interest yields ErrInteractionExists.
func (r *InteractionRepo) CreateInterest(ctx context.Context, fromUserID, toUserID int64, message string, at time.Time) (model.Interaction, error) {
	if r.pool == nil {
		return model.Interaction{}, ErrPoolUnavailable
	}
	if fromUserID <= 0 || toUserID <= 0 || fromUserID == toUserID {
		return model.Interaction{}, fmt.Errorf("invalid interest payload")
	}

	out, err := scanInteraction(r.pool.QueryRow(ctx, `
INSERT INTO interactions (
	from_user_id,
	to_user_id,
	type,
	status,
	message,
	created_at,
	updated_at
) VALUES ($1, $2, 'interest', 'pending', $3, $4, $4)
ON CONFLICT (from_user_id, to_user_id, type) DO UPDATE SET
	status = 'pending',
	message = EXCLUDED.message,
	updated_at = EXCLUDED.updated_at
WHERE interactions.status = 'removed'
RETURNING `+interactionColumns,
		fromUserID,
		toUserID,
		message,
		at.UTC(),
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Interaction{}, ErrInteractionExists
		}
		return model.Interaction{}, fmt.Errorf("create interest: %w", err)
	}

	return out, nil
}

func (r *InteractionRepo) GetByID(ctx context.Context, id int64) (model.Interaction, error) {
	if r.pool == nil {
		return model.Interaction{}, ErrPoolUnavailable
	}

	out, err := scanInteraction(r.pool.QueryRow(ctx, `
SELECT `+interactionColumns+`
FROM interactions
WHERE id = $1
`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Interaction{}, ErrInteractionNotFound
		}
		return model.Interaction{}, fmt.Errorf("get interaction: %w", err)
	}

	return out, nil
}

// RespondPending moves a pending interest to status. It reports
// ErrInteractionNotFound when the row is gone or no longer pending.
func (r *InteractionRepo) RespondPending(ctx context.Context, id int64, status enums.InteractionStatus, at time.Time) (model.Interaction, error) {
	if r.pool == nil {
		return model.Interaction{}, ErrPoolUnavailable
	}

	out, err := scanInteraction(r.pool.QueryRow(ctx, `
UPDATE interactions
SET status = $2, updated_at = $3
WHERE id = $1
	AND type = 'interest'
	AND status = 'pending'
RETURNING `+interactionColumns,
		id,
		string(status),
		at.UTC(),
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Interaction{}, ErrInteractionNotFound
		}
		return model.Interaction{}, fmt.Errorf("respond to interest: %w", err)
	}

	return out, nil
}

// Activate upserts (from, to, type) into the active state. The bool reports
// whether the row transitioned into active (first add or re-add after
// removal). A transitioned shortlist also bumps the target's shortlist
// counter in the same transaction.
func (r *InteractionRepo) Activate(ctx context.Context, fromUserID, toUserID int64, typ enums.InteractionType, at time.Time) (model.Interaction, bool, error) {
	if fromUserID <= 0 || toUserID <= 0 {
		return model.Interaction{}, false, fmt.Errorf("invalid interaction payload")
	}

	var (
		out          model.Interaction
		transitioned bool
	)
	err := inTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		item, err := scanInteraction(tx.QueryRow(ctx, `
INSERT INTO interactions (
	from_user_id,
	to_user_id,
	type,
	status,
	message,
	created_at,
	updated_at
) VALUES ($1, $2, $3, 'active', '', $4, $4)
ON CONFLICT (from_user_id, to_user_id, type) DO UPDATE SET
	status = 'active',
	updated_at = EXCLUDED.updated_at
WHERE interactions.status <> 'active'
RETURNING `+interactionColumns,
			fromUserID,
			toUserID,
			string(typ),
			at.UTC(),
		))
		switch {
		case err == nil:
			out = item
			transitioned = true
		case errors.Is(err, pgx.ErrNoRows):
			existing, getErr := getInteractionByKey(ctx, tx, fromUserID, toUserID, typ)
			if getErr != nil {
				return getErr
			}
			out = existing
			return nil
		default:
			return fmt.Errorf("activate interaction: %w", err)
		}

		if typ == enums.InteractionShortlist {
			if _, err := tx.Exec(ctx, `
UPDATE profiles
SET stats_shortlists = stats_shortlists + 1
WHERE user_id = $1
`, toUserID); err != nil {
				return fmt.Errorf("increment shortlist counter: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return model.Interaction{}, false, err
	}

	return out, transitioned, nil
}

// Remove flags the (from, to, type) row as removed, keeping it for history.
func (r *InteractionRepo) Remove(ctx context.Context, fromUserID, toUserID int64, typ enums.InteractionType, at time.Time) (model.Interaction, error) {
	if r.pool == nil {
		return model.Interaction{}, ErrPoolUnavailable
	}

	out, err := scanInteraction(r.pool.QueryRow(ctx, `
UPDATE interactions
SET status = 'removed', updated_at = $4
WHERE from_user_id = $1
	AND to_user_id = $2
	AND type = $3
RETURNING `+interactionColumns,
		fromUserID,
		toUserID,
		string(typ),
		at.UTC(),
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Interaction{}, ErrInteractionNotFound
		}
		return model.Interaction{}, fmt.Errorf("remove interaction: %w", err)
	}

	return out, nil
}

// RecordView bumps the target's view counter and refreshes the viewer's view
// row. Every call counts.
func (r *InteractionRepo) RecordView(ctx context.Context, viewerUserID, targetUserID int64, at time.Time) (model.Interaction, error) {
	var out model.Interaction
	err := inTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
UPDATE profiles
SET stats_views = stats_views + 1
WHERE user_id = $1
`, targetUserID); err != nil {
			return fmt.Errorf("increment view counter: %w", err)
		}

		item, err := scanInteraction(tx.QueryRow(ctx, `
INSERT INTO interactions (
	from_user_id,
	to_user_id,
	type,
	status,
	message,
	created_at,
	updated_at
) VALUES ($1, $2, 'view', 'active', '', $3, $3)
ON CONFLICT (from_user_id, to_user_id, type) DO UPDATE SET
	status = 'active',
	updated_at = EXCLUDED.updated_at
RETURNING `+interactionColumns,
			viewerUserID,
			targetUserID,
			at.UTC(),
		))
		if err != nil {
			return fmt.Errorf("upsert view interaction: %w", err)
		}
		out = item
		return nil
	})
	if err != nil {
		return model.Interaction{}, err
	}

	return out, nil
}

func (r *InteractionRepo) List(ctx context.Context, filter InteractionFilter, offset, limit int) ([]model.Interaction, int64, error) {
	if r.pool == nil {
		return nil, 0, ErrPoolUnavailable
	}
	if offset < 0 {
		offset = 0
	}

	where, args := filter.clause()

	var total int64
	if err := r.pool.QueryRow(ctx, `
SELECT COUNT(*)
FROM interactions
WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count interactions: %w", err)
	}

	pageArgs := append(args, offset, limit)
	rows, err := r.pool.Query(ctx, `
SELECT `+interactionColumns+`
FROM interactions
WHERE `+where+`
ORDER BY created_at DESC, id DESC
OFFSET $`+strconv.Itoa(len(args)+1)+`
LIMIT $`+strconv.Itoa(len(args)+2), pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list interactions: %w", err)
	}
	defer rows.Close()

	items := make([]model.Interaction, 0, limit)
	for rows.Next() {
		item, err := scanInteraction(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan interaction: %w", err)
		}
		items = append(items, item)
	}
	if rows.Err() != nil {
		return nil, 0, fmt.Errorf("iterate interactions: %w", rows.Err())
	}

	return items, total, nil
}

func (f InteractionFilter) clause() (string, []any) {
	conds := []string{"type = $1"}
	args := []any{string(f.Type)}

	if f.FromUserID > 0 {
		args = append(args, f.FromUserID)
		conds = append(conds, "from_user_id = $"+strconv.Itoa(len(args)))
	}
	if f.ToUserID > 0 {
		args = append(args, f.ToUserID)
		conds = append(conds, "to_user_id = $"+strconv.Itoa(len(args)))
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, 0, len(f.Statuses))
		for _, s := range f.Statuses {
			statuses = append(statuses, string(s))
		}
		args = append(args, statuses)
		conds = append(conds, "status = ANY($"+strconv.Itoa(len(args))+")")
	}

	return strings.Join(conds, " AND "), args
}

func getInteractionByKey(ctx context.Context, q querier, fromUserID, toUserID int64, typ enums.InteractionType) (model.Interaction, error) {
	out, err := scanInteraction(q.QueryRow(ctx, `
SELECT `+interactionColumns+`
FROM interactions
WHERE from_user_id = $1
	AND to_user_id = $2
	AND type = $3
`, fromUserID, toUserID, string(typ)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Interaction{}, ErrInteractionNotFound
		}
		return model.Interaction{}, fmt.Errorf("get interaction by key: %w", err)
	}
	return out, nil
}

func scanInteraction(row pgx.Row) (model.Interaction, error) {
	var (
		item   model.Interaction
		typ    string
		status string
	)
	if err := row.Scan(
		&item.ID,
		&item.FromUserID,
		&item.ToUserID,
		&typ,
		&status,
		&item.Message,
		&item.CreatedAt,
		&item.UpdatedAt,
	); err != nil {
		return model.Interaction{}, err
	}
	item.Type = enums.InteractionType(typ)
	item.Status = enums.InteractionStatus(status)
	return item, nil
}
