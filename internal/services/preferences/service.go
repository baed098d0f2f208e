package preferences

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ivankudzin/matrimony/internal/domain/enums"
	"github.com/ivankudzin/matrimony/internal/domain/model"
	pgrepo "github.com/ivankudzin/matrimony/internal/repo/postgres"
)

const (
	minPartnerAge = 18
	maxPartnerAge = 100
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("preference not found")
)

type PreferenceStore interface {
	Upsert(ctx context.Context, pref model.Preference) (model.Preference, error)
	GetByUserID(ctx context.Context, userID int64) (model.Preference, error)
}

type Service struct {
	store PreferenceStore
	now   func() time.Time
}

func NewService(store PreferenceStore) *Service {
	return &Service{
		store: store,
		now:   time.Now,
	}
}

func (s *Service) Get(ctx context.Context, userID int64) (model.Preference, error) {
	if userID <= 0 {
		return model.Preference{}, fmt.Errorf("invalid user id: %w", ErrValidation)
	}
	if s.store == nil {
		return model.Preference{}, fmt.Errorf("preference store is nil")
	}

	pref, err := s.store.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrPreferenceNotFound) {
			return model.Preference{}, ErrNotFound
		}
		return model.Preference{}, err
	}
	return pref, nil
}

// Upsert replaces the caller's preference wholesale.
func (s *Service) Upsert(ctx context.Context, userID int64, pref model.Preference) (model.Preference, error) {
	if userID <= 0 {
		return model.Preference{}, fmt.Errorf("invalid user id: %w", ErrValidation)
	}
	if s.store == nil {
		return model.Preference{}, fmt.Errorf("preference store is nil")
	}

	normalized, err := normalize(pref)
	if err != nil {
		return model.Preference{}, err
	}
	normalized.UserID = userID
	normalized.UpdatedAt = s.now().UTC()

	saved, err := s.store.Upsert(ctx, normalized)
	if err != nil {
		return model.Preference{}, fmt.Errorf("save preference: %w", err)
	}
	return saved, nil
}

func normalize(in model.Preference) (model.Preference, error) {
	out := in

	age := in.AgeRange
	if age.Min < minPartnerAge || age.Max > maxPartnerAge || age.Min > age.Max {
		return model.Preference{}, fmt.Errorf("age range must be within %d..%d with min <= max: %w", minPartnerAge, maxPartnerAge, ErrValidation)
	}
	height := in.HeightRange
	if height.Min < 0 || height.Max < 0 || (height.Min > 0) != (height.Max > 0) {
		return model.Preference{}, fmt.Errorf("height range needs both bounds or none: %w", ErrValidation)
	}
	if height.Bounded() && height.Min > height.Max {
		return model.Preference{}, fmt.Errorf("height range min exceeds max: %w", ErrValidation)
	}

	for _, status := range in.MaritalStatus {
		if !status.Valid() {
			return model.Preference{}, fmt.Errorf("invalid marital status %q: %w", status, ErrValidation)
		}
	}
	for _, employed := range in.EmployedIn {
		if !employed.Valid() {
			return model.Preference{}, fmt.Errorf("invalid employed_in %q: %w", employed, ErrValidation)
		}
	}
	for _, diet := range in.Diet {
		if diet != enums.DoesntMatter && !enums.Diet(diet).Valid() {
			return model.Preference{}, fmt.Errorf("invalid diet %q: %w", diet, ErrValidation)
		}
	}
	for _, acceptance := range []enums.Acceptance{in.Smoking, in.Drinking} {
		if acceptance != "" && !acceptance.Valid() {
			return model.Preference{}, fmt.Errorf("invalid habit acceptance %q: %w", acceptance, ErrValidation)
		}
	}

	out.Location = model.LocationFilter{
		Countries: cleanSet(in.Location.Countries),
		States:    cleanSet(in.Location.States),
		Cities:    cleanSet(in.Location.Cities),
	}
	out.Religion = cleanSet(in.Religion)
	out.Caste = cleanSet(in.Caste)
	out.Education = cleanSet(in.Education)
	out.Occupation = cleanSet(in.Occupation)
	out.Diet = cleanSet(in.Diet)
	out.FamilyType = cleanSet(in.FamilyType)
	out.FamilyStatus = cleanSet(in.FamilyStatus)

	return out, nil
}

// cleanSet trims values and drops blanks and duplicates, keeping first-seen order.
func cleanSet(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
