package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ivankudzin/matrimony/internal/domain/enums"
	searchsvc "github.com/ivankudzin/matrimony/internal/services/search"
	"github.com/ivankudzin/matrimony/internal/transport/http/dto"
	httperrors "github.com/ivankudzin/matrimony/internal/transport/http/errors"
)

type SearchHandler struct {
	service *searchsvc.Service
}

func NewSearchHandler(service *searchsvc.Service) *SearchHandler {
	return &SearchHandler{service: service}
}

func (h *SearchHandler) Basic(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeInternal(w, "SEARCH_SERVICE_UNAVAILABLE", "search service is unavailable")
		return
	}

	q := r.URL.Query()
	query := searchsvc.BasicQuery{
		Gender: enums.Gender(strings.ToLower(strings.TrimSpace(q.Get("gender")))),
		City:   q.Get("location"),
	}
	if raw := strings.TrimSpace(q.Get("age")); raw != "" {
		query.Age = parseIntOrDefault(raw, -1)
	}

	page, limit := pageParams(r)
	res, err := h.service.Basic(r.Context(), identity.UserID, query, page, limit)
	if err != nil {
		handleSearchError(w, err)
		return
	}
	writeSearchPage(w, res)
}

func (h *SearchHandler) Advanced(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeInternal(w, "SEARCH_SERVICE_UNAVAILABLE", "search service is unavailable")
		return
	}

	var req dto.AdvancedSearchRequest
	if !decodeValid(w, r, &req) {
		return
	}

	res, err := h.service.Advanced(r.Context(), identity.UserID, searchsvc.AdvancedQuery{
		AgeMin:        req.AgeMin,
		AgeMax:        req.AgeMax,
		HeightMin:     req.HeightMin,
		HeightMax:     req.HeightMax,
		MaritalStatus: req.MaritalStatus,
		Religion:      req.Religion,
		Caste:         req.Caste,
		Education:     req.Education,
		Occupation:    req.Occupation,
		Country:       req.Country,
		State:         req.State,
		City:          req.City,
	}, req.Page, req.Limit)
	if err != nil {
		handleSearchError(w, err)
		return
	}
	writeSearchPage(w, res)
}

func (h *SearchHandler) ByID(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeInternal(w, "SEARCH_SERVICE_UNAVAILABLE", "search service is unavailable")
		return
	}

	summary, err := h.service.ByDisplayID(r.Context(), identity.UserID, chi.URLParam(r, "ref"))
	if err != nil {
		handleSearchError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, summary)
}

func (h *SearchHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeInternal(w, "SEARCH_SERVICE_UNAVAILABLE", "search service is unavailable")
		return
	}

	page, limit := pageParams(r)
	res, err := h.service.Recommendations(r.Context(), identity.UserID, page, limit)
	if err != nil {
		handleSearchError(w, err)
		return
	}
	writeSearchPage(w, res)
}

func writeSearchPage(w http.ResponseWriter, res searchsvc.Page) {
	httperrors.Write(w, http.StatusOK, dto.SearchResponse{
		Items:      res.Items,
		Pagination: dto.NewPagination(res.Page, res.Limit, res.Total),
	})
}

func handleSearchError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, searchsvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, searchsvc.ErrNotFound):
		writeNotFound(w, "NOT_FOUND", "profile not found")
	case errors.Is(err, searchsvc.ErrProfileRequired):
		writePreconditionFailed(w, "PROFILE_REQUIRED", "create your profile first")
	case errors.Is(err, searchsvc.ErrPreferenceRequired):
		writePreconditionFailed(w, "PREFERENCE_REQUIRED", "set partner preferences first")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}
