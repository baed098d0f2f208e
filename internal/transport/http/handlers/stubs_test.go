package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ivankudzin/matrimony/internal/domain/enums"
	"github.com/ivankudzin/matrimony/internal/domain/model"
	mongorepo "github.com/ivankudzin/matrimony/internal/repo/mongo"
	pgrepo "github.com/ivankudzin/matrimony/internal/repo/postgres"
	authsvc "github.com/ivankudzin/matrimony/internal/services/auth"
)

type profileStoreStub struct {
	byUser map[int64]model.Profile
	nextID int64
}

func newProfileStoreStub(profiles ...model.Profile) *profileStoreStub {
	s := &profileStoreStub{byUser: make(map[int64]model.Profile), nextID: 100}
	for _, p := range profiles {
		s.byUser[p.UserID] = p
	}
	return s
}

func (s *profileStoreStub) Create(_ context.Context, p model.Profile) (model.Profile, error) {
	if _, ok := s.byUser[p.UserID]; ok {
		return model.Profile{}, pgrepo.ErrProfileExists
	}
	s.nextID++
	p.ID = s.nextID
	s.byUser[p.UserID] = p
	return p, nil
}

func (s *profileStoreStub) Update(_ context.Context, p model.Profile) (model.Profile, error) {
	if _, ok := s.byUser[p.UserID]; !ok {
		return model.Profile{}, pgrepo.ErrProfileNotFound
	}
	s.byUser[p.UserID] = p
	return p, nil
}

func (s *profileStoreStub) GetByID(_ context.Context, id int64) (model.Profile, error) {
	for _, p := range s.byUser {
		if p.ID == id {
			return p, nil
		}
	}
	return model.Profile{}, pgrepo.ErrProfileNotFound
}

func (s *profileStoreStub) GetByUserID(_ context.Context, userID int64) (model.Profile, error) {
	p, ok := s.byUser[userID]
	if !ok {
		return model.Profile{}, pgrepo.ErrProfileNotFound
	}
	return p, nil
}

func (s *profileStoreStub) GetByDisplayID(_ context.Context, displayID string) (model.Profile, error) {
	for _, p := range s.byUser {
		if p.DisplayID == displayID {
			return p, nil
		}
	}
	return model.Profile{}, pgrepo.ErrProfileNotFound
}

func (s *profileStoreStub) GetManyByUserIDs(_ context.Context, ids []int64) (map[int64]model.Profile, error) {
	out := make(map[int64]model.Profile)
	for _, id := range ids {
		if p, ok := s.byUser[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (s *profileStoreStub) SetPremium(_ context.Context, userID int64, expiresAt *time.Time, _ time.Time) (model.Profile, error) {
	p, ok := s.byUser[userID]
	if !ok {
		return model.Profile{}, pgrepo.ErrProfileNotFound
	}
	p.IsPremium = expiresAt != nil
	p.PremiumExpiresAt = expiresAt
	s.byUser[userID] = p
	return p, nil
}

type sequenceStub struct {
	next int64
}

func (s *sequenceStub) NextDisplayNumber(context.Context) (int64, error) {
	s.next++
	return s.next, nil
}

type preferenceStoreStub struct {
	byUser map[int64]model.Preference
}

func (s *preferenceStoreStub) Upsert(_ context.Context, pref model.Preference) (model.Preference, error) {
	if s.byUser == nil {
		s.byUser = make(map[int64]model.Preference)
	}
	s.byUser[pref.UserID] = pref
	return pref, nil
}

func (s *preferenceStoreStub) GetByUserID(_ context.Context, userID int64) (model.Preference, error) {
	pref, ok := s.byUser[userID]
	if !ok {
		return model.Preference{}, pgrepo.ErrPreferenceNotFound
	}
	return pref, nil
}

type matchStoreStub struct{}

func (matchStoreStub) Upsert(_ context.Context, m model.Match) (model.Match, error) {
	m.ID = 1
	return m, nil
}

func (matchStoreStub) ListForUser(context.Context, int64, enums.MatchStatus, int, int) ([]model.Match, int64, error) {
	return nil, 0, nil
}

func (matchStoreStub) UpdateStatus(context.Context, int64, int64, enums.MatchStatus, time.Time) (model.Match, error) {
	return model.Match{}, pgrepo.ErrMatchNotFound
}

func (s *profileStoreStub) ListDiscoverable(context.Context, int64, int, int) ([]model.Profile, int64, error) {
	return nil, 0, nil
}

func (s *profileStoreStub) ListCandidates(context.Context, int64, enums.Gender) ([]model.Profile, error) {
	return nil, nil
}

func (s *profileStoreStub) Search(_ context.Context, f pgrepo.ProfileSearch, offset, limit int) ([]model.Profile, int64, error) {
	var out []model.Profile
	for _, p := range s.byUser {
		if p.UserID == f.ViewerUserID || !p.Discoverable() {
			continue
		}
		if (f.Gender != "" && p.Personal.Gender != f.Gender) || (f.DisplayID != "" && p.DisplayID != f.DisplayID) {
			continue
		}
		out = append(out, p)
	}
	total := int64(len(out))
	if offset >= len(out) {
		return nil, total, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, total, nil
}

type interactionStoreStub struct {
	created int
}

func (s *interactionStoreStub) CreateInterest(_ context.Context, from, to int64, message string, at time.Time) (model.Interaction, error) {
	s.created++
	return model.Interaction{ID: int64(s.created), FromUserID: from, ToUserID: to, Message: message, Type: enums.InteractionInterest, Status: enums.InteractionStatusPending, CreatedAt: at, UpdatedAt: at}, nil
}

func (s *interactionStoreStub) GetByID(context.Context, int64) (model.Interaction, error) {
	return model.Interaction{}, pgrepo.ErrInteractionNotFound
}

func (s *interactionStoreStub) RespondPending(context.Context, int64, enums.InteractionStatus, time.Time) (model.Interaction, error) {
	return model.Interaction{}, pgrepo.ErrInteractionNotFound
}

func (s *interactionStoreStub) Activate(_ context.Context, from, to int64, typ enums.InteractionType, at time.Time) (model.Interaction, bool, error) {
	return model.Interaction{ID: 1, FromUserID: from, ToUserID: to, Type: typ, Status: enums.InteractionStatusActive, CreatedAt: at}, true, nil
}

func (s *interactionStoreStub) Remove(context.Context, int64, int64, enums.InteractionType, time.Time) (model.Interaction, error) {
	return model.Interaction{}, pgrepo.ErrInteractionNotFound
}

func (s *interactionStoreStub) RecordView(_ context.Context, viewer, target int64, at time.Time) (model.Interaction, error) {
	return model.Interaction{FromUserID: viewer, ToUserID: target, Type: enums.InteractionView, CreatedAt: at}, nil
}

func (s *interactionStoreStub) List(context.Context, pgrepo.InteractionFilter, int, int) ([]model.Interaction, int64, error) {
	return nil, 0, nil
}

type userStoreStub struct{}

func (userStoreStub) GetByID(_ context.Context, userID int64) (model.User, error) {
	if userID >= 1000 {
		return model.User{}, pgrepo.ErrUserNotFound
	}
	return model.User{ID: userID, Email: "user@example.com"}, nil
}

type conversationStoreStub struct {
	appended []model.Message
}

func (s *conversationStoreStub) FindByPair(context.Context, int64, int64) (model.Conversation, error) {
	return model.Conversation{}, mongorepo.ErrConversationNotFound
}

func (s *conversationStoreStub) AppendMessage(_ context.Context, msg model.Message) (string, error) {
	s.appended = append(s.appended, msg)
	return "chat-1", nil
}

func (s *conversationStoreStub) ListForUser(context.Context, int64) ([]model.ConversationSummary, error) {
	return nil, nil
}

func (s *conversationStoreStub) MarkRead(context.Context, string, int64, time.Time) error {
	return mongorepo.ErrConversationNotFound
}

func publicProfile(id, userID int64, displayID string, gender enums.Gender) model.Profile {
	return model.Profile{
		ID:        id,
		UserID:    userID,
		DisplayID: displayID,
		Personal: model.PersonalInfo{
			FirstName:     "Test",
			LastName:      displayID,
			DateOfBirth:   time.Date(1994, time.June, 1, 0, 0, 0, 0, time.UTC),
			Gender:        gender,
			MaritalStatus: enums.MaritalStatusNeverMarried,
		},
		Location:  model.Location{Country: "India", State: "Maharashtra", City: "Pune"},
		Religious: model.ReligiousInfo{Religion: "Hindu"},
		Privacy:   model.Privacy{Visibility: enums.VisibilityPublic, ShowPhotos: enums.PhotoVisibilityAll},
		IsActive:  true,
	}
}

// serve routes a single request through a chi router so URL params resolve.
func serve(t *testing.T, method, pattern, target string, body any, userID int64, h http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	if userID > 0 {
		req = req.WithContext(authsvc.WithIdentity(req.Context(), authsvc.Identity{
			UserID: userID,
			SID:    "sid",
			Role:   string(enums.RoleUser),
		}))
	}

	r := chi.NewRouter()
	r.MethodFunc(method, pattern, h)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func decodeCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var payload struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return payload.Code
}
