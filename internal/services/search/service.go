package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ivankudzin/matrimony/internal/domain/enums"
	"github.com/ivankudzin/matrimony/internal/domain/model"
	"github.com/ivankudzin/matrimony/internal/domain/rules"
	"github.com/ivankudzin/matrimony/internal/pkg/paging"
	pgrepo "github.com/ivankudzin/matrimony/internal/repo/postgres"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

var (
	ErrValidation         = errors.New("validation error")
	ErrNotFound           = errors.New("not found")
	ErrProfileRequired    = errors.New("own profile required")
	ErrPreferenceRequired = errors.New("preference required")
)

type ProfileStore interface {
	GetByUserID(ctx context.Context, userID int64) (model.Profile, error)
	Search(ctx context.Context, f pgrepo.ProfileSearch, offset, limit int) ([]model.Profile, int64, error)
}

type PreferenceStore interface {
	GetByUserID(ctx context.Context, userID int64) (model.Preference, error)
}

type Summarizer interface {
	Summary(ctx context.Context, p model.Profile) model.ProfileSummary
}

type Service struct {
	profiles    ProfileStore
	preferences PreferenceStore
	summaries   Summarizer
	now         func() time.Time
}

// BasicQuery filters by exact age, gender and a city fragment. An empty
// gender means the viewer's complement.
type BasicQuery struct {
	Age    int
	Gender enums.Gender
	City   string
}

type AdvancedQuery struct {
	AgeMin        int
	AgeMax        int
	HeightMin     int
	HeightMax     int
	MaritalStatus []enums.MaritalStatus
	Religion      []string
	Caste         []string
	Education     []string
	Occupation    []string
	Country       string
	State         string
	City          string
}

type Page struct {
	Items []model.ProfileSummary
	Total int64
	Page  int
	Limit int
}

func NewService(profiles ProfileStore, preferences PreferenceStore, summaries Summarizer) *Service {
	return &Service{
		profiles:    profiles,
		preferences: preferences,
		summaries:   summaries,
		now:         time.Now,
	}
}

func (s *Service) Basic(ctx context.Context, viewerUserID int64, q BasicQuery, page, limit int) (Page, error) {
	if q.Age < 0 || (q.Gender != "" && !q.Gender.Valid()) {
		return Page{}, fmt.Errorf("invalid basic search: %w", ErrValidation)
	}
	viewer, err := s.viewer(ctx, viewerUserID)
	if err != nil {
		return Page{}, err
	}

	gender := q.Gender
	if gender == "" {
		complement, ok := rules.ComplementGender(viewer.Personal.Gender)
		if !ok {
			page, limit = paging.Normalize(page, limit, defaultPageLimit, maxPageLimit)
			return Page{Items: []model.ProfileSummary{}, Page: page, Limit: limit}, nil
		}
		gender = complement
	}

	return s.search(ctx, pgrepo.ProfileSearch{
		ViewerUserID: viewerUserID,
		Gender:       gender,
		AgeMin:       q.Age,
		AgeMax:       q.Age,
		CityContains: strings.TrimSpace(q.City),
	}, page, limit)
}

// Advanced searches the viewer's complementary-gender pool with range and
// set filters. Empty sets and zero bounds are ignored.
func (s *Service) Advanced(ctx context.Context, viewerUserID int64, q AdvancedQuery, page, limit int) (Page, error) {
	if err := q.validate(); err != nil {
		return Page{}, err
	}
	viewer, err := s.viewer(ctx, viewerUserID)
	if err != nil {
		return Page{}, err
	}
	gender, ok := rules.ComplementGender(viewer.Personal.Gender)
	if !ok {
		page, limit = paging.Normalize(page, limit, defaultPageLimit, maxPageLimit)
		return Page{Items: []model.ProfileSummary{}, Page: page, Limit: limit}, nil
	}

	f := pgrepo.ProfileSearch{
		ViewerUserID:  viewerUserID,
		Gender:        gender,
		AgeMin:        q.AgeMin,
		AgeMax:        q.AgeMax,
		HeightMin:     q.HeightMin,
		HeightMax:     q.HeightMax,
		MaritalStatus: maritalStrings(q.MaritalStatus),
		Religion:      q.Religion,
		Caste:         q.Caste,
		Education:     q.Education,
		Occupation:    q.Occupation,
		State:         strings.TrimSpace(q.State),
		CityContains:  strings.TrimSpace(q.City),
	}
	if country := strings.TrimSpace(q.Country); country != "" {
		f.Country = []string{country}
	}
	return s.search(ctx, f, page, limit)
}

// ByDisplayID finds one discoverable profile by its MAT number.
func (s *Service) ByDisplayID(ctx context.Context, viewerUserID int64, displayID string) (model.ProfileSummary, error) {
	n, ok := rules.ParseDisplayID(displayID)
	if viewerUserID <= 0 || !ok {
		return model.ProfileSummary{}, fmt.Errorf("invalid profile id: %w", ErrValidation)
	}
	if s.profiles == nil || s.summaries == nil {
		return model.ProfileSummary{}, fmt.Errorf("search dependencies are not configured")
	}

	items, _, err := s.profiles.Search(ctx, pgrepo.ProfileSearch{
		ViewerUserID: viewerUserID,
		DisplayID:    rules.FormatDisplayID(n),
	}, 0, 1)
	if err != nil {
		return model.ProfileSummary{}, fmt.Errorf("search by display id: %w", err)
	}
	if len(items) == 0 {
		return model.ProfileSummary{}, ErrNotFound
	}
	return s.summaries.Summary(ctx, items[0]), nil
}

// Recommendations applies the viewer's stored preference as a hard filter,
// premium profiles first. Unlike Suggest nothing is scored.
func (s *Service) Recommendations(ctx context.Context, viewerUserID int64, page, limit int) (Page, error) {
	viewer, err := s.viewer(ctx, viewerUserID)
	if err != nil {
		return Page{}, err
	}
	if s.preferences == nil {
		return Page{}, fmt.Errorf("preference store is nil")
	}
	pref, err := s.preferences.GetByUserID(ctx, viewerUserID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrPreferenceNotFound) {
			return Page{}, ErrPreferenceRequired
		}
		return Page{}, fmt.Errorf("load preference: %w", err)
	}
	gender, ok := rules.ComplementGender(viewer.Personal.Gender)
	if !ok {
		page, limit = paging.Normalize(page, limit, defaultPageLimit, maxPageLimit)
		return Page{Items: []model.ProfileSummary{}, Page: page, Limit: limit}, nil
	}

	f := pgrepo.ProfileSearch{
		ViewerUserID:  viewerUserID,
		Gender:        gender,
		AgeMin:        pref.AgeRange.Min,
		AgeMax:        pref.AgeRange.Max,
		MaritalStatus: maritalStrings(pref.MaritalStatus),
		Religion:      pref.Religion,
		Country:       pref.Location.Countries,
		Education:     pref.Education,
		PremiumFirst:  true,
	}
	if pref.HeightRange.Bounded() {
		f.HeightMin, f.HeightMax = pref.HeightRange.Min, pref.HeightRange.Max
	}
	return s.search(ctx, f, page, limit)
}

func (s *Service) viewer(ctx context.Context, userID int64) (model.Profile, error) {
	if userID <= 0 {
		return model.Profile{}, fmt.Errorf("invalid user id: %w", ErrValidation)
	}
	if s.profiles == nil || s.summaries == nil {
		return model.Profile{}, fmt.Errorf("search dependencies are not configured")
	}
	p, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrProfileNotFound) {
			return model.Profile{}, ErrProfileRequired
		}
		return model.Profile{}, fmt.Errorf("load own profile: %w", err)
	}
	return p, nil
}

func (s *Service) search(ctx context.Context, f pgrepo.ProfileSearch, page, limit int) (Page, error) {
	page, limit = paging.Normalize(page, limit, defaultPageLimit, maxPageLimit)
	f.Now = s.now().UTC()

	rows, total, err := s.profiles.Search(ctx, f, paging.Offset(page, limit), limit)
	if err != nil {
		return Page{}, fmt.Errorf("search profiles: %w", err)
	}

	items := make([]model.ProfileSummary, 0, len(rows))
	for _, p := range rows {
		items = append(items, s.summaries.Summary(ctx, p))
	}
	return Page{Items: items, Total: total, Page: page, Limit: limit}, nil
}

func (q AdvancedQuery) validate() error {
	if q.AgeMin < 0 || q.AgeMax < 0 || q.HeightMin < 0 || q.HeightMax < 0 {
		return fmt.Errorf("negative bound: %w", ErrValidation)
	}
	if q.AgeMin > 0 && q.AgeMax > 0 && q.AgeMin > q.AgeMax {
		return fmt.Errorf("age_min exceeds age_max: %w", ErrValidation)
	}
	if q.HeightMin > 0 && q.HeightMax > 0 && q.HeightMin > q.HeightMax {
		return fmt.Errorf("height_min exceeds height_max: %w", ErrValidation)
	}
	for _, m := range q.MaritalStatus {
		if !m.Valid() {
			return fmt.Errorf("invalid marital status %q: %w", m, ErrValidation)
		}
	}
	return nil
}

func maritalStrings(in []enums.MaritalStatus) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, m := range in {
		out = append(out, string(m))
	}
	return out
}
