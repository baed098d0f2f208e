package handlers

import (
	"errors"
	"net/http"

	prefsvc "github.com/ivankudzin/matrimony/internal/services/preferences"
	"github.com/ivankudzin/matrimony/internal/transport/http/dto"
	httperrors "github.com/ivankudzin/matrimony/internal/transport/http/errors"
)

type PreferenceHandler struct {
	service *prefsvc.Service
}

func NewPreferenceHandler(service *prefsvc.Service) *PreferenceHandler {
	return &PreferenceHandler{service: service}
}

func (h *PreferenceHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeInternal(w, "PREFERENCE_SERVICE_UNAVAILABLE", "preference service is unavailable")
		return
	}

	pref, err := h.service.Get(r.Context(), identity.UserID)
	if err != nil {
		handlePreferenceError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.PreferenceResponse{Preference: pref})
}

func (h *PreferenceHandler) Put(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeInternal(w, "PREFERENCE_SERVICE_UNAVAILABLE", "preference service is unavailable")
		return
	}

	var req dto.PreferenceRequest
	if !decodeValid(w, r, &req) {
		return
	}

	pref, err := h.service.Upsert(r.Context(), identity.UserID, req.ToModel())
	if err != nil {
		handlePreferenceError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.PreferenceResponse{Preference: pref})
}

func handlePreferenceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, prefsvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, prefsvc.ErrNotFound):
		writeNotFound(w, "PREFERENCE_NOT_FOUND", "partner preference is not set")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}
