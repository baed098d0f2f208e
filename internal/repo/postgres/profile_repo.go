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

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrProfileExists   = errors.New("profile already exists")
)

const profileColumns = `
	p.id,
	p.user_id,
	p.display_id,
	p.personal,
	p.professional,
	p.family,
	p.location,
	p.religious,
	p.lifestyle,
	p.photos,
	p.documents,
	p.privacy,
	p.verification,
	p.stats_views,
	p.stats_contact_views,
	p.stats_shortlists,
	p.profile_completed,
	p.is_active,
	p.is_premium,
	p.premium_expires_at,
	p.created_at,
	p.updated_at`

// notBlockedClause filters out profiles that have an active block in either
// direction with the user bound to $1.
const notBlockedClause = `
NOT EXISTS (
	SELECT 1
	FROM interactions b
	WHERE b.type = 'block'
		AND b.status = 'active'
		AND (
			(b.from_user_id = $1 AND b.to_user_id = p.user_id)
			OR (b.from_user_id = p.user_id AND b.to_user_id = $1)
		)
)`

type ProfileRepo struct {
	pool         *pgxpool.Pool
	candidateCap int
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

// SetCandidateCap bounds the suggestion pool to the newest n profiles.
// Zero or less returns the whole pool.
func (r *ProfileRepo) SetCandidateCap(n int) {
	if n < 0 {
		n = 0
	}
	r.candidateCap = n
}

func (r *ProfileRepo) Create(ctx context.Context, p model.Profile) (model.Profile, error) {
	if r.pool == nil {
		return model.Profile{}, ErrPoolUnavailable
	}
	if p.UserID <= 0 || p.DisplayID == "" {
		return model.Profile{}, fmt.Errorf("invalid profile payload")
	}
	normalizeProfileLists(&p)

	row := r.pool.QueryRow(ctx, `
WITH inserted AS (
	INSERT INTO profiles (
		user_id,
		display_id,
		gender,
		visibility,
		personal,
		professional,
		family,
		location,
		religious,
		lifestyle,
		photos,
		documents,
		privacy,
		verification,
		profile_completed,
		is_active,
		is_premium,
		premium_expires_at,
		created_at,
		updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $19)
	ON CONFLICT (user_id) DO NOTHING
	RETURNING *
)
SELECT `+profileColumns+`
FROM inserted p
`,
		p.UserID,
		p.DisplayID,
		string(p.Personal.Gender),
		string(p.Privacy.Visibility),
		p.Personal,
		p.Professional,
		p.Family,
		p.Location,
		p.Religious,
		p.Lifestyle,
		p.Photos,
		p.Documents,
		p.Privacy,
		p.Verification,
		p.ProfileCompleted,
		p.IsActive,
		p.IsPremium,
		p.PremiumExpiresAt,
		p.CreatedAt.UTC(),
	)

	created, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Profile{}, ErrProfileExists
		}
		return model.Profile{}, fmt.Errorf("insert profile: %w", err)
	}

	return created, nil
}

// Update rewrites every mutable section of the profile owned by p.UserID.
// Counters and the display id are never touched here.
func (r *ProfileRepo) Update(ctx context.Context, p model.Profile) (model.Profile, error) {
	if r.pool == nil {
		return model.Profile{}, ErrPoolUnavailable
	}
	normalizeProfileLists(&p)

	row := r.pool.QueryRow(ctx, `
UPDATE profiles p SET
	gender = $2,
	visibility = $3,
	personal = $4,
	professional = $5,
	family = $6,
	location = $7,
	religious = $8,
	lifestyle = $9,
	photos = $10,
	documents = $11,
	privacy = $12,
	verification = $13,
	profile_completed = $14,
	updated_at = $15
WHERE p.user_id = $1
RETURNING `+profileColumns,
		p.UserID,
		string(p.Personal.Gender),
		string(p.Privacy.Visibility),
		p.Personal,
		p.Professional,
		p.Family,
		p.Location,
		p.Religious,
		p.Lifestyle,
		p.Photos,
		p.Documents,
		p.Privacy,
		p.Verification,
		p.ProfileCompleted,
		p.UpdatedAt.UTC(),
	)

	updated, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Profile{}, ErrProfileNotFound
		}
		return model.Profile{}, fmt.Errorf("update profile: %w", err)
	}

	return updated, nil
}

func (r *ProfileRepo) GetByID(ctx context.Context, id int64) (model.Profile, error) {
	return r.getOne(ctx, "p.id = $1", id)
}

func (r *ProfileRepo) GetByUserID(ctx context.Context, userID int64) (model.Profile, error) {
	return r.getOne(ctx, "p.user_id = $1", userID)
}

func (r *ProfileRepo) GetByDisplayID(ctx context.Context, displayID string) (model.Profile, error) {
	return r.getOne(ctx, "p.display_id = $1", displayID)
}

func (r *ProfileRepo) GetManyByUserIDs(ctx context.Context, userIDs []int64) (map[int64]model.Profile, error) {
	out := make(map[int64]model.Profile, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	if r.pool == nil {
		return nil, ErrPoolUnavailable
	}

	rows, err := r.pool.Query(ctx, `
SELECT `+profileColumns+`
FROM profiles p
WHERE p.user_id = ANY($1)
`, userIDs)
	if err != nil {
		return nil, fmt.Errorf("query profiles by users: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		out[p.UserID] = p
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate profiles: %w", rows.Err())
	}

	return out, nil
}

// ListDiscoverable pages through active public profiles other than
// excludeUserID, newest first, and returns the unpaged total.
func (r *ProfileRepo) ListDiscoverable(ctx context.Context, excludeUserID int64, offset, limit int) ([]model.Profile, int64, error) {
	if r.pool == nil {
		return nil, 0, ErrPoolUnavailable
	}
	if offset < 0 {
		offset = 0
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `
SELECT COUNT(*)
FROM profiles p
WHERE p.is_active
	AND p.visibility = 'public'
	AND p.user_id <> $1
	AND `+notBlockedClause, excludeUserID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count discoverable profiles: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
SELECT `+profileColumns+`
FROM profiles p
WHERE p.is_active
	AND p.visibility = 'public'
	AND p.user_id <> $1
	AND `+notBlockedClause+`
ORDER BY p.created_at DESC, p.id DESC
OFFSET $2
LIMIT $3
`, excludeUserID, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list discoverable profiles: %w", err)
	}
	defer rows.Close()

	items, err := collectProfiles(rows, limit)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ListCandidates returns the suggestion pool for viewerUserID: active public
// profiles of the given gender with no block between the two users, in
// retrieval order (newest first). The pool is unbounded unless a cap is set.
func (r *ProfileRepo) ListCandidates(ctx context.Context, viewerUserID int64, gender enums.Gender) ([]model.Profile, error) {
	if r.pool == nil {
		return nil, ErrPoolUnavailable
	}

	rows, err := r.pool.Query(ctx, `
SELECT `+profileColumns+`
FROM profiles p
WHERE p.is_active
	AND p.visibility = 'public'
	AND p.user_id <> $1
	AND p.gender = $2
	AND `+notBlockedClause+`
ORDER BY p.created_at DESC, p.id DESC
LIMIT NULLIF($3::bigint, 0)
`, viewerUserID, string(gender), r.candidateCap)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	defer rows.Close()

	return collectProfiles(rows, 64)
}

// SetPremium grants premium until expiresAt, or revokes it when expiresAt is nil.
func (r *ProfileRepo) SetPremium(ctx context.Context, userID int64, expiresAt *time.Time, at time.Time) (model.Profile, error) {
	if r.pool == nil {
		return model.Profile{}, ErrPoolUnavailable
	}

	p, err := scanProfile(r.pool.QueryRow(ctx, `
UPDATE profiles p SET
	is_premium = $2 IS NOT NULL,
	premium_expires_at = $2,
	updated_at = $3
WHERE p.user_id = $1
RETURNING `+profileColumns, userID, expiresAt, at.UTC()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Profile{}, ErrProfileNotFound
		}
		return model.Profile{}, fmt.Errorf("set premium: %w", err)
	}

	return p, nil
}

func (r *ProfileRepo) ClearExpiredPremium(ctx context.Context, now time.Time) (int64, error) {
	if r.pool == nil {
		return 0, ErrPoolUnavailable
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE profiles
SET is_premium = FALSE, updated_at = $1
WHERE is_premium
	AND premium_expires_at IS NOT NULL
	AND premium_expires_at <= $1
`, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("clear expired premium: %w", err)
	}

	return tag.RowsAffected(), nil
}

func (r *ProfileRepo) getOne(ctx context.Context, where string, arg any) (model.Profile, error) {
	if r.pool == nil {
		return model.Profile{}, ErrPoolUnavailable
	}

	p, err := scanProfile(r.pool.QueryRow(ctx, `
SELECT `+profileColumns+`
FROM profiles p
WHERE `+where+`
LIMIT 1
`, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Profile{}, ErrProfileNotFound
		}
		return model.Profile{}, fmt.Errorf("get profile: %w", err)
	}

	return p, nil
}

func scanProfile(row pgx.Row) (model.Profile, error) {
	var p model.Profile
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.DisplayID,
		&p.Personal,
		&p.Professional,
		&p.Family,
		&p.Location,
		&p.Religious,
		&p.Lifestyle,
		&p.Photos,
		&p.Documents,
		&p.Privacy,
		&p.Verification,
		&p.Stats.Views,
		&p.Stats.ContactViews,
		&p.Stats.Shortlists,
		&p.ProfileCompleted,
		&p.IsActive,
		&p.IsPremium,
		&p.PremiumExpiresAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

func collectProfiles(rows pgx.Rows, capacity int) ([]model.Profile, error) {
	if capacity < 0 {
		capacity = 0
	}
	items := make([]model.Profile, 0, capacity)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		items = append(items, p)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate profiles: %w", rows.Err())
	}
	return items, nil
}

func normalizeProfileLists(p *model.Profile) {
	if p.Photos == nil {
		p.Photos = []model.Photo{}
	}
	if p.Documents == nil {
		p.Documents = []model.Document{}
	}
	if p.Lifestyle.Hobbies == nil {
		p.Lifestyle.Hobbies = []string{}
	}
}
