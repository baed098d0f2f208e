package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ivankudzin/matrimony/internal/domain/enums"
	"github.com/ivankudzin/matrimony/internal/domain/model"
)

// ageExpr is the calendar age of the profile owner on the date bound to $NOW.
const ageExpr = `date_part('year', age($NOW::date, ((p.personal->>'date_of_birth')::timestamptz AT TIME ZONE 'UTC')::date))`

// ProfileSearch narrows the discoverable pool seen by ViewerUserID. Zero
// values leave a criterion out.
type ProfileSearch struct {
	ViewerUserID  int64
	Now           time.Time
	Gender        enums.Gender
	DisplayID     string
	AgeMin        int
	AgeMax        int
	HeightMin     int
	HeightMax     int
	MaritalStatus []string
	Religion      []string
	Caste         []string
	Education     []string
	Occupation    []string
	Country       []string
	State         string
	CityContains  string
	PremiumFirst  bool
}

// Search pages through active public profiles matching f, excluding the
// viewer and anyone with a block in either direction. The total counts the
// whole filtered set.
func (r *ProfileRepo) Search(ctx context.Context, f ProfileSearch, offset, limit int) ([]model.Profile, int64, error) {
	if r.pool == nil {
		return nil, 0, ErrPoolUnavailable
	}
	if offset < 0 {
		offset = 0
	}

	where, args := f.clause()

	var total int64
	if err := r.pool.QueryRow(ctx, `
SELECT COUNT(*)
FROM profiles p
WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count search results: %w", err)
	}

	order := "p.created_at DESC, p.id DESC"
	if f.PremiumFirst {
		order = "p.is_premium DESC, " + order
	}

	pageArgs := append(args, offset, limit)
	rows, err := r.pool.Query(ctx, `
SELECT `+profileColumns+`
FROM profiles p
WHERE `+where+`
ORDER BY `+order+`
OFFSET $`+strconv.Itoa(len(args)+1)+`
LIMIT $`+strconv.Itoa(len(args)+2), pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("search profiles: %w", err)
	}
	defer rows.Close()

	items, err := collectProfiles(rows, limit)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (f ProfileSearch) clause() (string, []any) {
	args := []any{f.ViewerUserID}
	conds := []string{
		"p.is_active",
		"p.visibility = 'public'",
		"p.user_id <> $1",
		notBlockedClause,
	}

	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, strings.ReplaceAll(cond, "$?", "$"+strconv.Itoa(len(args))))
	}

	if f.Gender != "" {
		add("p.gender = $?", string(f.Gender))
	}
	if f.DisplayID != "" {
		add("p.display_id = $?", f.DisplayID)
	}
	if f.AgeMin > 0 || f.AgeMax > 0 {
		now := f.Now
		if now.IsZero() {
			now = time.Now()
		}
		args = append(args, now.UTC())
		age := strings.ReplaceAll(ageExpr, "$NOW", "$"+strconv.Itoa(len(args)))
		if f.AgeMin > 0 {
			add(age+" >= $?", f.AgeMin)
		}
		if f.AgeMax > 0 {
			add(age+" <= $?", f.AgeMax)
		}
	}
	if f.HeightMin > 0 {
		add("COALESCE((p.personal->>'height_cm')::int, 0) >= $?", f.HeightMin)
	}
	if f.HeightMax > 0 {
		add("COALESCE((p.personal->>'height_cm')::int, 0) <= $?", f.HeightMax)
	}
	if len(f.MaritalStatus) > 0 {
		add("p.personal->>'marital_status' = ANY($?)", f.MaritalStatus)
	}
	if len(f.Religion) > 0 {
		add("p.religious->>'religion' = ANY($?)", f.Religion)
	}
	if len(f.Caste) > 0 {
		add("p.religious->>'caste' = ANY($?)", f.Caste)
	}
	if len(f.Education) > 0 {
		add("p.professional->>'education' = ANY($?)", f.Education)
	}
	if len(f.Occupation) > 0 {
		add("p.professional->>'occupation' = ANY($?)", f.Occupation)
	}
	if len(f.Country) > 0 {
		add("p.location->>'country' = ANY($?)", f.Country)
	}
	if f.State != "" {
		add("p.location->>'state' = $?", f.State)
	}
	if f.CityContains != "" {
		add(`p.location->>'city' ILIKE '%' || $? || '%' ESCAPE '\'`, escapeLike(f.CityContains))
	}

	return strings.Join(conds, "\n\tAND "), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
