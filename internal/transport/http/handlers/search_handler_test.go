package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/ivankudzin/matrimony/internal/domain/enums"
	"github.com/ivankudzin/matrimony/internal/domain/model"
	"github.com/ivankudzin/matrimony/internal/services/profiles"
	searchsvc "github.com/ivankudzin/matrimony/internal/services/search"
	"github.com/ivankudzin/matrimony/internal/transport/http/dto"
)

func newSearchHandler(prefs *preferenceStoreStub) *SearchHandler {
	store := newProfileStoreStub(
		publicProfile(11, 1, "MAT010001", enums.GenderMale),
		publicProfile(12, 2, "MAT010002", enums.GenderFemale),
		publicProfile(13, 3, "MAT010003", enums.GenderMale),
	)
	profileSvc := profiles.NewService(store, &sequenceStub{}, nil, nil)
	return NewSearchHandler(searchsvc.NewService(store, prefs, profileSvc))
}

func TestBasicSearchReturnsComplementGender(t *testing.T) {
	h := newSearchHandler(&preferenceStoreStub{})

	rr := serve(t, http.MethodGet, "/v1/search/basic", "/v1/search/basic?page=1&limit=10", nil, 1, h.Basic)
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d body=%s", rr.Code, http.StatusOK, rr.Body.String())
	}

	var res dto.SearchResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res.Pagination.Total != 1 || len(res.Items) != 1 || res.Items[0].DisplayID != "MAT010002" {
		t.Fatalf("unexpected search result: %+v", res)
	}
}

func TestBasicSearchRejectsBadAgeAndMissingProfile(t *testing.T) {
	h := newSearchHandler(&preferenceStoreStub{})

	rr := serve(t, http.MethodGet, "/v1/search/basic", "/v1/search/basic?age=old", nil, 1, h.Basic)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status for bad age: got %d want %d", rr.Code, http.StatusBadRequest)
	}

	rr = serve(t, http.MethodGet, "/v1/search/basic", "/v1/search/basic", nil, 9, h.Basic)
	if rr.Code != http.StatusPreconditionFailed {
		t.Fatalf("unexpected status without profile: got %d want %d", rr.Code, http.StatusPreconditionFailed)
	}
	if code := decodeCode(t, rr); code != "PROFILE_REQUIRED" {
		t.Fatalf("unexpected error code: %q", code)
	}
}

func TestBasicSearchHugePageIsEmpty(t *testing.T) {
	h := newSearchHandler(&preferenceStoreStub{})

	rr := serve(t, http.MethodGet, "/v1/search/basic", "/v1/search/basic?page=4611686018427387904", nil, 1, h.Basic)
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusOK)
	}
	var res dto.SearchResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(res.Items) != 0 || res.Pagination.Total != 1 {
		t.Fatalf("unexpected page: %+v", res)
	}
}

func TestAdvancedSearchValidatesBody(t *testing.T) {
	h := newSearchHandler(&preferenceStoreStub{})

	rr := serve(t, http.MethodPost, "/v1/search/advanced", "/v1/search/advanced", map[string]any{"age_min": 10}, 1, h.Advanced)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status for age_min: got %d want %d", rr.Code, http.StatusBadRequest)
	}

	rr = serve(t, http.MethodPost, "/v1/search/advanced", "/v1/search/advanced", map[string]any{"age_min": 30, "age_max": 25}, 1, h.Advanced)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status for inverted range: got %d want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestSearchByIDAndRecommendations(t *testing.T) {
	h := newSearchHandler(&preferenceStoreStub{})

	rr := serve(t, http.MethodGet, "/v1/search/by-id/{ref}", "/v1/search/by-id/MAT010002", nil, 1, h.ByID)
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusOK)
	}
	var summary model.ProfileSummary
	if err := json.Unmarshal(rr.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if summary.UserID != 2 {
		t.Fatalf("unexpected profile: got %d want %d", summary.UserID, 2)
	}

	rr = serve(t, http.MethodGet, "/v1/search/by-id/{ref}", "/v1/search/by-id/MAT019999", nil, 1, h.ByID)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("unexpected status for unknown id: got %d want %d", rr.Code, http.StatusNotFound)
	}

	rr = serve(t, http.MethodGet, "/v1/search/recommendations", "/v1/search/recommendations", nil, 1, h.Recommendations)
	if rr.Code != http.StatusPreconditionFailed {
		t.Fatalf("unexpected status without preference: got %d want %d", rr.Code, http.StatusPreconditionFailed)
	}
	if code := decodeCode(t, rr); code != "PREFERENCE_REQUIRED" {
		t.Fatalf("unexpected error code: %q", code)
	}
}
