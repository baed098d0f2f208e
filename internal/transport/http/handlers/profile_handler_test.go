package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/ivankudzin/matrimony/internal/domain/enums"
	"github.com/ivankudzin/matrimony/internal/services/profiles"
	"github.com/ivankudzin/matrimony/internal/transport/http/dto"
)

func validProfileBody() map[string]any {
	return map[string]any{
		"personal_info": map[string]any{
			"first_name":     "Asha",
			"last_name":      "Rao",
			"date_of_birth":  "1995-04-12",
			"gender":         "female",
			"marital_status": "never_married",
			"height_cm":      162,
		},
		"location":       map[string]any{"country": "India", "state": "Karnataka", "city": "Bengaluru"},
		"religious_info": map[string]any{"religion": "Hindu"},
	}
}

func TestCreateProfileAssignsDisplayID(t *testing.T) {
	store := newProfileStoreStub()
	h := NewProfileHandler(profiles.NewService(store, &sequenceStub{next: 10000}, nil, nil))

	rr := serve(t, http.MethodPost, "/v1/profiles", "/v1/profiles", validProfileBody(), 7, h.Create)
	if rr.Code != http.StatusCreated {
		t.Fatalf("unexpected status: got %d want %d body=%s", rr.Code, http.StatusCreated, rr.Body.String())
	}

	var resp dto.ProfileResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Profile.DisplayID != "MAT010001" {
		t.Fatalf("unexpected display id: got %q want %q", resp.Profile.DisplayID, "MAT010001")
	}
	if resp.Profile.Privacy.Visibility != enums.VisibilityPublic {
		t.Fatalf("expected public visibility by default, got %q", resp.Profile.Privacy.Visibility)
	}

	rr = serve(t, http.MethodPost, "/v1/profiles", "/v1/profiles", validProfileBody(), 7, h.Create)
	if rr.Code != http.StatusConflict {
		t.Fatalf("unexpected status on duplicate: got %d want %d", rr.Code, http.StatusConflict)
	}
}

func TestCreateProfileRejectsBadInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(body map[string]any)
		want   int
	}{
		{
			name: "bad date",
			mutate: func(body map[string]any) {
				body["personal_info"].(map[string]any)["date_of_birth"] = "12/04/1995"
			},
			want: http.StatusBadRequest,
		},
		{
			name:   "missing location",
			mutate: func(body map[string]any) { delete(body, "location") },
			want:   http.StatusBadRequest,
		},
		{
			name:   "unknown field",
			mutate: func(body map[string]any) { body["is_premium"] = true },
			want:   http.StatusBadRequest,
		},
		{
			name: "under age",
			mutate: func(body map[string]any) {
				body["personal_info"].(map[string]any)["date_of_birth"] = "2020-01-01"
			},
			want: http.StatusBadRequest,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := NewProfileHandler(profiles.NewService(newProfileStoreStub(), &sequenceStub{next: 10000}, nil, nil))
			body := validProfileBody()
			tc.mutate(body)

			rr := serve(t, http.MethodPost, "/v1/profiles", "/v1/profiles", body, 7, h.Create)
			if rr.Code != tc.want {
				t.Fatalf("unexpected status: got %d want %d body=%s", rr.Code, tc.want, rr.Body.String())
			}
		})
	}
}

func TestGetProfileRespectsVisibility(t *testing.T) {
	private := publicProfile(11, 1, "MAT010001", enums.GenderFemale)
	private.Privacy.Visibility = enums.VisibilityPrivate
	store := newProfileStoreStub(private, publicProfile(12, 2, "MAT010002", enums.GenderMale))
	h := NewProfileHandler(profiles.NewService(store, &sequenceStub{}, nil, nil))

	rr := serve(t, http.MethodGet, "/v1/profiles/{ref}", "/v1/profiles/mat010001", nil, 2, h.Get)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("unexpected status for private profile: got %d want %d", rr.Code, http.StatusForbidden)
	}

	rr = serve(t, http.MethodGet, "/v1/profiles/{ref}", "/v1/profiles/11", nil, 1, h.Get)
	if rr.Code != http.StatusOK {
		t.Fatalf("owner must see own private profile: got %d", rr.Code)
	}

	rr = serve(t, http.MethodGet, "/v1/profiles/{ref}", "/v1/profiles/MAT099999", nil, 1, h.Get)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("unexpected status for missing profile: got %d want %d", rr.Code, http.StatusNotFound)
	}

	rr = serve(t, http.MethodGet, "/v1/profiles/{ref}", "/v1/profiles/not-a-ref", nil, 1, h.Get)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status for garbage ref: got %d want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestProfileRoutesRequireIdentity(t *testing.T) {
	h := NewProfileHandler(profiles.NewService(newProfileStoreStub(), &sequenceStub{}, nil, nil))

	rr := serve(t, http.MethodGet, "/v1/profiles/me", "/v1/profiles/me", nil, 0, h.GetMine)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusUnauthorized)
	}
	if code := decodeCode(t, rr); code != "UNAUTHORIZED" {
		t.Fatalf("unexpected error code: %q", code)
	}
}

func TestUpdatePrivacyValidatesEnums(t *testing.T) {
	store := newProfileStoreStub(publicProfile(11, 1, "MAT010001", enums.GenderFemale))
	h := NewProfileHandler(profiles.NewService(store, &sequenceStub{}, nil, nil))

	rr := serve(t, http.MethodPut, "/v1/profiles/me/privacy", "/v1/profiles/me/privacy", map[string]any{
		"show_photos":        "friends",
		"profile_visibility": "public",
	}, 1, h.UpdatePrivacy)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusBadRequest)
	}

	rr = serve(t, http.MethodPut, "/v1/profiles/me/privacy", "/v1/profiles/me/privacy", map[string]any{
		"show_photos":        "none",
		"profile_visibility": "private",
	}, 1, h.UpdatePrivacy)
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusOK)
	}
	if !strings.Contains(rr.Body.String(), `"profile_visibility":"private"`) {
		t.Fatalf("privacy not applied: %s", rr.Body.String())
	}
}
