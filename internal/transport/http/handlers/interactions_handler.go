package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/ivankudzin/matrimony/internal/domain/model"
	"github.com/ivankudzin/matrimony/internal/pkg/validate"
	interactionsvc "github.com/ivankudzin/matrimony/internal/services/interactions"
	"github.com/ivankudzin/matrimony/internal/transport/http/dto"
	httperrors "github.com/ivankudzin/matrimony/internal/transport/http/errors"
)

type InteractionsHandler struct {
	service *interactionsvc.Service
}

func NewInteractionsHandler(service *interactionsvc.Service) *InteractionsHandler {
	return &InteractionsHandler{service: service}
}

func (h *InteractionsHandler) SendInterest(w http.ResponseWriter, r *http.Request) {
	userID, profileID, ok := h.target(w, r)
	if !ok {
		return
	}

	// The body is optional; an empty one sends the interest without a note.
	var req dto.SendInterestRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", err.Error())
		return
	}

	item, err := h.service.SendInterest(r.Context(), userID, profileID, req.Message)
	if err != nil {
		handleInteractionError(w, err)
		return
	}
	httperrors.Write(w, http.StatusCreated, dto.InteractionResponse{Interaction: item})
}

func (h *InteractionsHandler) RespondInterest(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeInternal(w, "INTERACTION_SERVICE_UNAVAILABLE", "interaction service is unavailable")
		return
	}
	interactionID, ok := int64Param(r, "interactionID")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid interaction id")
		return
	}

	var req dto.RespondInterestRequest
	if !decodeValid(w, r, &req) {
		return
	}

	item, err := h.service.RespondToInterest(r.Context(), identity.UserID, interactionID, req.Status)
	if err != nil {
		handleInteractionError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.InteractionResponse{Interaction: item})
}

func (h *InteractionsHandler) AddShortlist(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, http.StatusCreated, h.service.AddShortlist)
}

func (h *InteractionsHandler) RemoveShortlist(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, http.StatusOK, h.service.RemoveShortlist)
}

func (h *InteractionsHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, http.StatusCreated, h.service.AddFavorite)
}

func (h *InteractionsHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, http.StatusOK, h.service.RemoveFavorite)
}

func (h *InteractionsHandler) Block(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, http.StatusCreated, h.service.Block)
}

func (h *InteractionsHandler) Unblock(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, http.StatusOK, h.service.Unblock)
}

func (h *InteractionsHandler) Shortlists(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.service.ListShortlists)
}

func (h *InteractionsHandler) Favorites(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.service.ListFavorites)
}

func (h *InteractionsHandler) Blocked(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.service.ListBlocked)
}

func (h *InteractionsHandler) SentInterests(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.service.ListSentInterests)
}

func (h *InteractionsHandler) ReceivedInterests(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.service.ListReceivedInterests)
}

type mutateFunc func(ctx context.Context, userID, profileID int64) (model.Interaction, error)

type listFunc func(ctx context.Context, userID int64, page, limit int) (interactionsvc.Page, error)

// target resolves the caller and the {profileID} path parameter.
func (h *InteractionsHandler) target(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return 0, 0, false
	}
	if h.service == nil {
		writeInternal(w, "INTERACTION_SERVICE_UNAVAILABLE", "interaction service is unavailable")
		return 0, 0, false
	}
	profileID, ok := int64Param(r, "profileID")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid profile id")
		return 0, 0, false
	}
	return identity.UserID, profileID, true
}

func (h *InteractionsHandler) mutate(w http.ResponseWriter, r *http.Request, status int, fn mutateFunc) {
	userID, profileID, ok := h.target(w, r)
	if !ok {
		return
	}

	item, err := fn(r.Context(), userID, profileID)
	if err != nil {
		handleInteractionError(w, err)
		return
	}
	httperrors.Write(w, status, dto.InteractionResponse{Interaction: item})
}

func (h *InteractionsHandler) list(w http.ResponseWriter, r *http.Request, fn listFunc) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeInternal(w, "INTERACTION_SERVICE_UNAVAILABLE", "interaction service is unavailable")
		return
	}

	page, limit := pageParams(r)
	res, err := fn(r.Context(), identity.UserID, page, limit)
	if err != nil {
		handleInteractionError(w, err)
		return
	}

	items := make([]dto.InteractionItemResponse, 0, len(res.Items))
	for _, item := range res.Items {
		items = append(items, dto.InteractionItemResponse{Interaction: item.Interaction, Profile: item.Profile})
	}
	httperrors.Write(w, http.StatusOK, dto.InteractionsResponse{
		Items:      items,
		Pagination: dto.NewPagination(res.Page, res.Limit, res.Total),
	})
}

func handleInteractionError(w http.ResponseWriter, err error) {
	if tm, ok := interactionsvc.IsTooManyRequests(err); ok {
		httperrors.WriteRateLimited(w, "TOO_MANY_INTERESTS", "interest limit reached, try again later", tm.RetryAfter())
		return
	}

	switch {
	case errors.Is(err, interactionsvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, interactionsvc.ErrProfileRequired):
		writePreconditionFailed(w, "PROFILE_REQUIRED", "create your profile first")
	case errors.Is(err, interactionsvc.ErrNotFound):
		writeNotFound(w, "NOT_FOUND", "profile or interaction not found")
	case errors.Is(err, interactionsvc.ErrSelfTarget):
		writeConflict(w, "SELF_TARGET", "cannot target your own profile")
	case errors.Is(err, interactionsvc.ErrAlreadyExists):
		writeConflict(w, "ALREADY_EXISTS", "interaction already exists")
	case errors.Is(err, interactionsvc.ErrAlreadyResponded):
		writeConflict(w, "ALREADY_RESPONDED", "interest was already answered")
	case errors.Is(err, interactionsvc.ErrForbidden):
		writeForbidden(w, "FORBIDDEN", "only the recipient can respond to an interest")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}
