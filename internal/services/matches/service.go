package matches

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/ivankudzin/matrimony/internal/domain/enums"
	"github.com/ivankudzin/matrimony/internal/domain/model"
	"github.com/ivankudzin/matrimony/internal/domain/rules"
	"github.com/ivankudzin/matrimony/internal/pkg/paging"
	pgrepo "github.com/ivankudzin/matrimony/internal/repo/postgres"
	"github.com/ivankudzin/matrimony/internal/services/profiles"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

var (
	ErrValidation         = errors.New("validation error")
	ErrNotFound           = errors.New("not found")
	ErrPreferenceRequired = errors.New("preference required")
)

type CandidateStore interface {
	GetByUserID(ctx context.Context, userID int64) (model.Profile, error)
	GetManyByUserIDs(ctx context.Context, userIDs []int64) (map[int64]model.Profile, error)
	ListDiscoverable(ctx context.Context, excludeUserID int64, offset, limit int) ([]model.Profile, int64, error)
	ListCandidates(ctx context.Context, viewerUserID int64, gender enums.Gender) ([]model.Profile, error)
}

type PreferenceStore interface {
	GetByUserID(ctx context.Context, userID int64) (model.Preference, error)
}

type MatchStore interface {
	Upsert(ctx context.Context, m model.Match) (model.Match, error)
	ListForUser(ctx context.Context, userID int64, status enums.MatchStatus, offset, limit int) ([]model.Match, int64, error)
	UpdateStatus(ctx context.Context, userID, matchID int64, status enums.MatchStatus, at time.Time) (model.Match, error)
}

type ProfileResolver interface {
	Resolve(ctx context.Context, ref string) (model.Profile, error)
}

type Summarizer interface {
	Summary(ctx context.Context, p model.Profile) model.ProfileSummary
}

type ScoreRecorder interface {
	MatchScore(score int)
}

type Dependencies struct {
	Profiles    CandidateStore
	Preferences PreferenceStore
	Matches     MatchStore
	Resolver    ProfileResolver
	Summaries   Summarizer
	Metrics     ScoreRecorder
	Logger      *zap.Logger
}

type Service struct {
	profiles    CandidateStore
	preferences PreferenceStore
	matches     MatchStore
	resolver    ProfileResolver
	summaries   Summarizer
	metrics     ScoreRecorder
	logger      *zap.Logger
	now         func() time.Time
}

type Suggestion struct {
	Profile  model.ProfileSummary
	Score    int
	Criteria []model.CriterionResult
}

type SuggestionPage struct {
	Items []Suggestion
	Total int64
	Page  int
	Limit int
}

type Calculation struct {
	Profile model.ProfileSummary
	Score   int
	Match   model.Match
}

type MatchItem struct {
	Match   model.Match
	Profile model.ProfileSummary
}

type MatchPage struct {
	Items []MatchItem
	Total int64
	Page  int
	Limit int
}

func NewService(deps Dependencies) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		profiles:    deps.Profiles,
		preferences: deps.Preferences,
		matches:     deps.Matches,
		resolver:    deps.Resolver,
		summaries:   deps.Summaries,
		metrics:     deps.Metrics,
		logger:      logger,
		now:         time.Now,
	}
}

// Suggest ranks candidates for viewerUserID. A viewer without a profile gets
// the unscored discoverable pool paged by the store; otherwise the
// complementary-gender pool is scored in memory, cut at rules.SuggestionCutoff
// when a preference exists, and paged after ranking.
func (s *Service) Suggest(ctx context.Context, viewerUserID int64, page, limit int) (SuggestionPage, error) {
	if viewerUserID <= 0 {
		return SuggestionPage{}, fmt.Errorf("invalid user id: %w", ErrValidation)
	}
	if s.profiles == nil || s.preferences == nil || s.summaries == nil {
		return SuggestionPage{}, fmt.Errorf("match dependencies are not configured")
	}
	page, limit = paging.Normalize(page, limit, defaultPageLimit, maxPageLimit)
	out := SuggestionPage{Page: page, Limit: limit, Items: []Suggestion{}}

	viewer, err := s.profiles.GetByUserID(ctx, viewerUserID)
	if errors.Is(err, pgrepo.ErrProfileNotFound) {
		items, total, err := s.profiles.ListDiscoverable(ctx, viewerUserID, paging.Offset(page, limit), limit)
		if err != nil {
			return SuggestionPage{}, fmt.Errorf("list discoverable profiles: %w", err)
		}
		for _, p := range items {
			out.Items = append(out.Items, Suggestion{Profile: s.summaries.Summary(ctx, p)})
		}
		out.Total = total
		return out, nil
	}
	if err != nil {
		return SuggestionPage{}, fmt.Errorf("load viewer profile: %w", err)
	}

	pref, err := s.preferences.GetByUserID(ctx, viewerUserID)
	hasPreference := err == nil
	if err != nil && !errors.Is(err, pgrepo.ErrPreferenceNotFound) {
		return SuggestionPage{}, fmt.Errorf("load preference: %w", err)
	}

	gender, ok := rules.ComplementGender(viewer.Personal.Gender)
	if !ok {
		return out, nil
	}
	candidates, err := s.profiles.ListCandidates(ctx, viewerUserID, gender)
	if err != nil {
		return SuggestionPage{}, fmt.Errorf("list candidates: %w", err)
	}

	ranked := rank(candidates, pref, hasPreference, s.now())
	if hasPreference {
		for _, r := range ranked {
			s.recordScore(r.score)
		}
	}
	out.Total = int64(len(ranked))
	for _, r := range paging.Slice(ranked, page, limit) {
		out.Items = append(out.Items, Suggestion{
			Profile:  s.summaries.Summary(ctx, r.profile),
			Score:    r.score,
			Criteria: r.criteria,
		})
	}
	return out, nil
}

// Calculate scores one candidate against the viewer's preference and
// persists the result, resetting the match status to suggested.
func (s *Service) Calculate(ctx context.Context, viewerUserID int64, profileRef string) (Calculation, error) {
	if viewerUserID <= 0 {
		return Calculation{}, fmt.Errorf("invalid user id: %w", ErrValidation)
	}
	if s.resolver == nil || s.preferences == nil || s.matches == nil || s.summaries == nil {
		return Calculation{}, fmt.Errorf("match dependencies are not configured")
	}

	candidate, err := s.resolver.Resolve(ctx, profileRef)
	if err != nil {
		switch {
		case errors.Is(err, profiles.ErrNotFound):
			return Calculation{}, ErrNotFound
		case errors.Is(err, profiles.ErrValidation):
			return Calculation{}, fmt.Errorf("invalid profile reference: %w", ErrValidation)
		default:
			return Calculation{}, fmt.Errorf("resolve candidate: %w", err)
		}
	}
	if candidate.UserID == viewerUserID {
		return Calculation{}, fmt.Errorf("cannot match against own profile: %w", ErrValidation)
	}

	pref, err := s.preferences.GetByUserID(ctx, viewerUserID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrPreferenceNotFound) {
			return Calculation{}, ErrPreferenceRequired
		}
		return Calculation{}, fmt.Errorf("load preference: %w", err)
	}

	now := s.now().UTC()
	ev := rules.Evaluate(candidate, pref, now)
	s.recordScore(ev.Score)

	saved, err := s.matches.Upsert(ctx, model.Match{
		UserID:        viewerUserID,
		MatchedUserID: candidate.UserID,
		Score:         ev.Score,
		Criteria:      ev.Criteria,
		Status:        enums.MatchStatusSuggested,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		return Calculation{}, fmt.Errorf("save match: %w", err)
	}

	s.logger.Debug("match calculated",
		zap.Int64("user_id", viewerUserID),
		zap.Int64("matched_user_id", candidate.UserID),
		zap.Int("score", ev.Score),
	)

	return Calculation{
		Profile: s.summaries.Summary(ctx, candidate),
		Score:   ev.Score,
		Match:   saved,
	}, nil
}

// ListMine pages persisted matches and attaches each candidate's current
// profile. Rows whose candidate profile is gone are left out of the page.
func (s *Service) ListMine(ctx context.Context, viewerUserID int64, status enums.MatchStatus, page, limit int) (MatchPage, error) {
	if viewerUserID <= 0 {
		return MatchPage{}, fmt.Errorf("invalid user id: %w", ErrValidation)
	}
	if status != "" && !status.Valid() {
		return MatchPage{}, fmt.Errorf("invalid match status %q: %w", status, ErrValidation)
	}
	if s.matches == nil || s.profiles == nil || s.summaries == nil {
		return MatchPage{}, fmt.Errorf("match dependencies are not configured")
	}
	page, limit = paging.Normalize(page, limit, defaultPageLimit, maxPageLimit)

	rows, total, err := s.matches.ListForUser(ctx, viewerUserID, status, paging.Offset(page, limit), limit)
	if err != nil {
		return MatchPage{}, fmt.Errorf("list matches: %w", err)
	}

	ids := make([]int64, 0, len(rows))
	for _, m := range rows {
		ids = append(ids, m.MatchedUserID)
	}
	found, err := s.profiles.GetManyByUserIDs(ctx, ids)
	if err != nil {
		return MatchPage{}, fmt.Errorf("load matched profiles: %w", err)
	}

	items := make([]MatchItem, 0, len(rows))
	for _, m := range rows {
		p, ok := found[m.MatchedUserID]
		if !ok {
			continue
		}
		items = append(items, MatchItem{Match: m, Profile: s.summaries.Summary(ctx, p)})
	}

	return MatchPage{Items: items, Total: total, Page: page, Limit: limit}, nil
}

func (s *Service) UpdateStatus(ctx context.Context, viewerUserID, matchID int64, status enums.MatchStatus) (model.Match, error) {
	if viewerUserID <= 0 || matchID <= 0 {
		return model.Match{}, fmt.Errorf("invalid identifiers: %w", ErrValidation)
	}
	if !status.Valid() || status == enums.MatchStatusSuggested {
		return model.Match{}, fmt.Errorf("invalid match status %q: %w", status, ErrValidation)
	}
	if s.matches == nil {
		return model.Match{}, fmt.Errorf("match store is nil")
	}

	m, err := s.matches.UpdateStatus(ctx, viewerUserID, matchID, status, s.now().UTC())
	if err != nil {
		if errors.Is(err, pgrepo.ErrMatchNotFound) {
			return model.Match{}, ErrNotFound
		}
		return model.Match{}, fmt.Errorf("update match status: %w", err)
	}
	return m, nil
}

func (s *Service) recordScore(score int) {
	if s.metrics != nil {
		s.metrics.MatchScore(score)
	}
}

type rankedCandidate struct {
	profile  model.Profile
	score    int
	criteria []model.CriterionResult
}

// rank keeps retrieval order on ties. Without a preference every candidate
// stays in the list with score 0.
func rank(candidates []model.Profile, pref model.Preference, hasPreference bool, now time.Time) []rankedCandidate {
	out := make([]rankedCandidate, 0, len(candidates))
	for _, c := range candidates {
		if !hasPreference {
			out = append(out, rankedCandidate{profile: c})
			continue
		}
		ev := rules.Evaluate(c, pref, now)
		if ev.Score < rules.SuggestionCutoff {
			continue
		}
		out = append(out, rankedCandidate{profile: c, score: ev.Score, criteria: ev.Criteria})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].score > out[j].score
	})
	return out
}
