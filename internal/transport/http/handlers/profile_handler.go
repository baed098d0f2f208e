package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ivankudzin/matrimony/internal/domain/model"
	profilesvc "github.com/ivankudzin/matrimony/internal/services/profiles"
	"github.com/ivankudzin/matrimony/internal/transport/http/dto"
	httperrors "github.com/ivankudzin/matrimony/internal/transport/http/errors"
)

const dateLayout = "2006-01-02"

type ProfileHandler struct {
	service *profilesvc.Service
}

func NewProfileHandler(service *profilesvc.Service) *ProfileHandler {
	return &ProfileHandler{service: service}
}

func (h *ProfileHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeInternal(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}

	var req dto.ProfileRequest
	if !decodeValid(w, r, &req) {
		return
	}
	if req.Personal == nil || req.Location == nil || req.Religious == nil {
		writeBadRequest(w, "VALIDATION_ERROR", "personal_info, location and religious_info are required")
		return
	}
	in, err := profileInput(req)
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", err.Error())
		return
	}

	p, err := h.service.Create(r.Context(), identity.UserID, in)
	if err != nil {
		handleProfileError(w, err)
		return
	}
	httperrors.Write(w, http.StatusCreated, dto.ProfileResponse{Profile: p})
}

func (h *ProfileHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeInternal(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}

	p, err := h.service.GetMine(r.Context(), identity.UserID)
	if err != nil {
		handleProfileError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.ProfileResponse{Profile: p})
}

func (h *ProfileHandler) UpdateMine(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeInternal(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}

	var req dto.ProfileRequest
	if !decodeValid(w, r, &req) {
		return
	}
	in, err := profileInput(req)
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", err.Error())
		return
	}

	p, err := h.service.Update(r.Context(), identity.UserID, in)
	if err != nil {
		handleProfileError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.ProfileResponse{Profile: p})
}

func (h *ProfileHandler) UpdatePrivacy(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeInternal(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}

	var req dto.PrivacyRequest
	if !decodeValid(w, r, &req) {
		return
	}

	p, err := h.service.UpdatePrivacy(r.Context(), identity.UserID, model.Privacy{
		ShowPhone:  req.ShowPhone,
		ShowEmail:  req.ShowEmail,
		ShowPhotos: req.ShowPhotos,
		Visibility: req.Visibility,
	})
	if err != nil {
		handleProfileError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.ProfileResponse{Profile: p})
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.get(w, r, false)
}

// View is Get plus a recorded profile view for the caller.
func (h *ProfileHandler) View(w http.ResponseWriter, r *http.Request) {
	h.get(w, r, true)
}

func (h *ProfileHandler) get(w http.ResponseWriter, r *http.Request, record bool) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeInternal(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}
	ref := strings.TrimSpace(chi.URLParam(r, "ref"))
	if ref == "" {
		writeBadRequest(w, "VALIDATION_ERROR", "profile reference is required")
		return
	}

	var (
		p   model.Profile
		err error
	)
	if record {
		p, err = h.service.View(r.Context(), identity.UserID, ref)
	} else {
		p, err = h.service.GetByRef(r.Context(), identity.UserID, ref)
	}
	if err != nil {
		handleProfileError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.ProfileResponse{Profile: p})
}

func profileInput(req dto.ProfileRequest) (profilesvc.Input, error) {
	in := profilesvc.Input{
		Professional: req.Professional,
		Family:       req.Family,
		Lifestyle:    req.Lifestyle,
		Privacy:      req.Privacy,
	}

	if req.Personal != nil {
		dob, err := time.Parse(dateLayout, req.Personal.DateOfBirth)
		if err != nil {
			return profilesvc.Input{}, errors.New("date_of_birth: must be YYYY-MM-DD")
		}
		in.Personal = &model.PersonalInfo{
			FirstName:     req.Personal.FirstName,
			LastName:      req.Personal.LastName,
			DateOfBirth:   dob.UTC(),
			Gender:        req.Personal.Gender,
			MaritalStatus: req.Personal.MaritalStatus,
			HeightCM:      req.Personal.HeightCM,
			WeightKG:      req.Personal.WeightKG,
			MotherTongue:  req.Personal.MotherTongue,
			Bio:           req.Personal.Bio,
		}
	}
	if req.Location != nil {
		in.Location = &model.Location{
			Country: req.Location.Country,
			State:   req.Location.State,
			City:    req.Location.City,
		}
	}
	if req.Religious != nil {
		in.Religious = &model.ReligiousInfo{
			Religion: req.Religious.Religion,
			Caste:    req.Religious.Caste,
			SubCaste: req.Religious.SubCaste,
			Star:     req.Religious.Star,
		}
	}
	if req.Photos != nil {
		in.Photos = make([]model.Photo, 0, len(req.Photos))
		for _, photo := range req.Photos {
			in.Photos = append(in.Photos, model.Photo{ID: photo.ID, URL: photo.URL, IsProfile: photo.IsProfile})
		}
	}
	if req.Documents != nil {
		in.Documents = make([]model.Document, 0, len(req.Documents))
		for _, doc := range req.Documents {
			in.Documents = append(in.Documents, model.Document{ID: doc.ID, Type: doc.Type, URL: doc.URL})
		}
	}

	return in, nil
}

func handleProfileError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, profilesvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, profilesvc.ErrNotFound):
		writeNotFound(w, "PROFILE_NOT_FOUND", "profile not found")
	case errors.Is(err, profilesvc.ErrAlreadyExists):
		writeConflict(w, "PROFILE_EXISTS", "profile already exists")
	case errors.Is(err, profilesvc.ErrForbidden):
		writeForbidden(w, "PROFILE_PRIVATE", "profile is private")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}
