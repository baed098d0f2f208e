package handlers

import (
	"net/http"
	"testing"

	"github.com/ivankudzin/matrimony/internal/domain/enums"
	"github.com/ivankudzin/matrimony/internal/domain/model"
	matchessvc "github.com/ivankudzin/matrimony/internal/services/matches"
	"github.com/ivankudzin/matrimony/internal/services/profiles"
)

func newMatchesHandler(prefs *preferenceStoreStub) *MatchesHandler {
	store := newProfileStoreStub(
		publicProfile(11, 1, "MAT010001", enums.GenderFemale),
		publicProfile(12, 2, "MAT010002", enums.GenderMale),
	)
	profileSvc := profiles.NewService(store, &sequenceStub{}, nil, nil)
	return NewMatchesHandler(matchessvc.NewService(matchessvc.Dependencies{
		Profiles:    store,
		Preferences: prefs,
		Matches:     matchStoreStub{},
		Resolver:    profileSvc,
		Summaries:   profileSvc,
	}))
}

func TestCalculateRequiresPreference(t *testing.T) {
	h := newMatchesHandler(&preferenceStoreStub{})

	rr := serve(t, http.MethodPost, "/v1/matches/calculate/{ref}", "/v1/matches/calculate/MAT010002", nil, 1, h.Calculate)
	if rr.Code != http.StatusPreconditionFailed {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusPreconditionFailed)
	}
	if code := decodeCode(t, rr); code != "PREFERENCE_REQUIRED" {
		t.Fatalf("unexpected error code: %q", code)
	}
}

func TestCalculateScoresCandidate(t *testing.T) {
	h := newMatchesHandler(&preferenceStoreStub{byUser: map[int64]model.Preference{
		1: {UserID: 1, AgeRange: model.IntRange{Min: 18, Max: 60}},
	}})

	rr := serve(t, http.MethodPost, "/v1/matches/calculate/{ref}", "/v1/matches/calculate/MAT010002", nil, 1, h.Calculate)
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d body=%s", rr.Code, http.StatusOK, rr.Body.String())
	}

	rr = serve(t, http.MethodPost, "/v1/matches/calculate/{ref}", "/v1/matches/calculate/MAT010001", nil, 1, h.Calculate)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("own profile must be rejected: got %d", rr.Code)
	}
}

func TestUpdateMatchStatusMapsErrors(t *testing.T) {
	h := newMatchesHandler(&preferenceStoreStub{})

	rr := serve(t, http.MethodPut, "/v1/matches/{id}/status", "/v1/matches/3/status", map[string]any{"status": "suggested"}, 1, h.UpdateStatus)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status for suggested: got %d want %d", rr.Code, http.StatusBadRequest)
	}

	rr = serve(t, http.MethodPut, "/v1/matches/{id}/status", "/v1/matches/3/status", map[string]any{"status": "interested"}, 1, h.UpdateStatus)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("unexpected status for unknown match: got %d want %d", rr.Code, http.StatusNotFound)
	}
}
