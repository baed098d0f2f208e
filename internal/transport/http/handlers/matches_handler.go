package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ivankudzin/matrimony/internal/domain/enums"
	matchessvc "github.com/ivankudzin/matrimony/internal/services/matches"
	"github.com/ivankudzin/matrimony/internal/transport/http/dto"
	httperrors "github.com/ivankudzin/matrimony/internal/transport/http/errors"
)

type MatchesHandler struct {
	service *matchessvc.Service
}

func NewMatchesHandler(service *matchessvc.Service) *MatchesHandler {
	return &MatchesHandler{service: service}
}

func (h *MatchesHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeInternal(w, "MATCH_SERVICE_UNAVAILABLE", "match service is unavailable")
		return
	}

	page, limit := pageParams(r)
	res, err := h.service.Suggest(r.Context(), identity.UserID, page, limit)
	if err != nil {
		handleMatchError(w, err)
		return
	}

	items := make([]dto.SuggestionResponse, 0, len(res.Items))
	for _, item := range res.Items {
		items = append(items, dto.SuggestionResponse{
			Profile:  item.Profile,
			Score:    item.Score,
			Criteria: item.Criteria,
		})
	}
	httperrors.Write(w, http.StatusOK, dto.SuggestionsResponse{
		Items:      items,
		Pagination: dto.NewPagination(res.Page, res.Limit, res.Total),
	})
}

func (h *MatchesHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeInternal(w, "MATCH_SERVICE_UNAVAILABLE", "match service is unavailable")
		return
	}
	ref := strings.TrimSpace(chi.URLParam(r, "ref"))
	if ref == "" {
		writeBadRequest(w, "VALIDATION_ERROR", "profile reference is required")
		return
	}

	res, err := h.service.Calculate(r.Context(), identity.UserID, ref)
	if err != nil {
		handleMatchError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.CalculationResponse{
		Profile:  res.Profile,
		Score:    res.Score,
		Criteria: res.Match.Criteria,
		Match:    res.Match,
	})
}

func (h *MatchesHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeInternal(w, "MATCH_SERVICE_UNAVAILABLE", "match service is unavailable")
		return
	}

	page, limit := pageParams(r)
	status := enums.MatchStatus(strings.TrimSpace(r.URL.Query().Get("status")))
	res, err := h.service.ListMine(r.Context(), identity.UserID, status, page, limit)
	if err != nil {
		handleMatchError(w, err)
		return
	}

	items := make([]dto.MatchItemResponse, 0, len(res.Items))
	for _, item := range res.Items {
		items = append(items, dto.MatchItemResponse{Match: item.Match, Profile: item.Profile})
	}
	httperrors.Write(w, http.StatusOK, dto.MatchesResponse{
		Items:      items,
		Pagination: dto.NewPagination(res.Page, res.Limit, res.Total),
	})
}

func (h *MatchesHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeInternal(w, "MATCH_SERVICE_UNAVAILABLE", "match service is unavailable")
		return
	}
	matchID, ok := int64Param(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid match id")
		return
	}

	var req dto.UpdateMatchStatusRequest
	if !decodeValid(w, r, &req) {
		return
	}

	m, err := h.service.UpdateStatus(r.Context(), identity.UserID, matchID, req.Status)
	if err != nil {
		handleMatchError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, m)
}

func handleMatchError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, matchessvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, matchessvc.ErrNotFound):
		writeNotFound(w, "NOT_FOUND", "match target not found")
	case errors.Is(err, matchessvc.ErrPreferenceRequired):
		writePreconditionFailed(w, "PREFERENCE_REQUIRED", "set partner preferences first")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}
