package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/ivankudzin/matrimony/internal/domain/enums"
	interactionsvc "github.com/ivankudzin/matrimony/internal/services/interactions"
	"github.com/ivankudzin/matrimony/internal/services/profiles"
)

type interestLimiterStub struct {
	allowed    bool
	retryAfter int64
}

func (s interestLimiterStub) AllowInterest(context.Context, int64) (int64, bool, error) {
	return s.retryAfter, s.allowed, nil
}

func newInteractionsHandler(store *interactionStoreStub, limiter interactionsvc.RateLimiter) *InteractionsHandler {
	profileStore := newProfileStoreStub(
		publicProfile(11, 1, "MAT010001", enums.GenderFemale),
		publicProfile(12, 2, "MAT010002", enums.GenderMale),
	)
	svc := interactionsvc.NewService(interactionsvc.Dependencies{
		Interactions: store,
		Profiles:     profileStore,
		Users:        userStoreStub{},
		Summaries:    profiles.NewService(profileStore, &sequenceStub{}, nil, nil),
	})
	if limiter != nil {
		svc.AttachRateLimiter(limiter)
	}
	return NewInteractionsHandler(svc)
}

func TestSendInterestStatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		target string
		userID int64
		body   any
		want   int
	}{
		{name: "created without body", target: "/v1/interactions/interest/12", userID: 1, want: http.StatusCreated},
		{name: "created with note", target: "/v1/interactions/interest/12", userID: 1, body: map[string]any{"message": "hello"}, want: http.StatusCreated},
		{name: "self target", target: "/v1/interactions/interest/11", userID: 1, want: http.StatusConflict},
		{name: "missing target", target: "/v1/interactions/interest/99", userID: 1, want: http.StatusNotFound},
		{name: "bad id", target: "/v1/interactions/interest/abc", userID: 1, want: http.StatusBadRequest},
		{name: "no own profile", target: "/v1/interactions/interest/12", userID: 5, want: http.StatusPreconditionFailed},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newInteractionsHandler(&interactionStoreStub{}, nil)
			rr := serve(t, http.MethodPost, "/v1/interactions/interest/{profileID}", tc.target, tc.body, tc.userID, h.SendInterest)
			if rr.Code != tc.want {
				t.Fatalf("unexpected status: got %d want %d body=%s", rr.Code, tc.want, rr.Body.String())
			}
		})
	}
}

func TestSendInterestRateLimited(t *testing.T) {
	store := &interactionStoreStub{}
	h := newInteractionsHandler(store, interestLimiterStub{retryAfter: 120})

	rr := serve(t, http.MethodPost, "/v1/interactions/interest/{profileID}", "/v1/interactions/interest/12", nil, 1, h.SendInterest)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusTooManyRequests)
	}
	if got := rr.Header().Get("Retry-After"); got != "120" {
		t.Fatalf("unexpected Retry-After: got %q want %q", got, "120")
	}
	if store.created != 0 {
		t.Fatalf("limited interest must not be stored")
	}
}

func TestRespondInterestValidatesStatus(t *testing.T) {
	h := newInteractionsHandler(&interactionStoreStub{}, nil)

	rr := serve(t, http.MethodPut, "/v1/interactions/interest/{interactionID}", "/v1/interactions/interest/5", map[string]any{"status": "maybe"}, 2, h.RespondInterest)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusBadRequest)
	}

	rr = serve(t, http.MethodPut, "/v1/interactions/interest/{interactionID}", "/v1/interactions/interest/5", map[string]any{"status": "accepted"}, 2, h.RespondInterest)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusNotFound)
	}
}

func TestRemoveShortlistNotFound(t *testing.T) {
	h := newInteractionsHandler(&interactionStoreStub{}, nil)

	rr := serve(t, http.MethodDelete, "/v1/interactions/shortlist/{profileID}", "/v1/interactions/shortlist/12", nil, 1, h.RemoveShortlist)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusNotFound)
	}
}

func TestListShortlistsReturnsPagination(t *testing.T) {
	h := newInteractionsHandler(&interactionStoreStub{}, nil)

	rr := serve(t, http.MethodGet, "/v1/interactions/shortlists", "/v1/interactions/shortlists?page=2&limit=5", nil, 1, h.Shortlists)
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusOK)
	}
	want := `{"items":[],"pagination":{"page":2,"limit":5,"total":0,"pages":0}}` + "\n"
	if rr.Body.String() != want {
		t.Fatalf("unexpected body: got %s want %s", rr.Body.String(), want)
	}
}
