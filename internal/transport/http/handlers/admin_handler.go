package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ivankudzin/matrimony/internal/domain/model"
	profilesvc "github.com/ivankudzin/matrimony/internal/services/profiles"
	"github.com/ivankudzin/matrimony/internal/transport/http/dto"
	httperrors "github.com/ivankudzin/matrimony/internal/transport/http/errors"
)

// AdminHandler exposes the verification and premium switches on a profile.
// Routes are mounted behind RequireRole("admin").
type AdminHandler struct {
	profiles *profilesvc.Service
	logger   *zap.Logger
}

func NewAdminHandler(profiles *profilesvc.Service, logger *zap.Logger) *AdminHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminHandler{profiles: profiles, logger: logger}
}

func (h *AdminHandler) SetVerification(w http.ResponseWriter, r *http.Request) {
	identity, target, ok := h.resolve(w, r)
	if !ok {
		return
	}

	var req dto.VerificationRequest
	if !decodeValid(w, r, &req) {
		return
	}

	p, err := h.profiles.SetVerification(r.Context(), target.UserID, profilesvc.VerificationInput{
		IDVerified:        req.IDVerified,
		PhotoVerified:     req.PhotoVerified,
		EducationVerified: req.EducationVerified,
		IncomeVerified:    req.IncomeVerified,
	})
	if err != nil {
		handleProfileError(w, err)
		return
	}

	h.logger.Info("admin_audit",
		zap.String("action", "set_verification"),
		zap.Int64("actor_id", identity),
		zap.Int64("profile_id", p.ID),
	)
	httperrors.Write(w, http.StatusOK, dto.ProfileResponse{Profile: p})
}

func (h *AdminHandler) SetPremium(w http.ResponseWriter, r *http.Request) {
	identity, target, ok := h.resolve(w, r)
	if !ok {
		return
	}

	var req dto.PremiumRequest
	if !decodeValid(w, r, &req) {
		return
	}

	p, err := h.profiles.SetPremium(r.Context(), target.UserID, req.ExpiresAt)
	if err != nil {
		handleProfileError(w, err)
		return
	}

	h.logger.Info("admin_audit",
		zap.String("action", "set_premium"),
		zap.Int64("actor_id", identity),
		zap.Int64("profile_id", p.ID),
		zap.Bool("is_premium", p.IsPremium),
	)
	httperrors.Write(w, http.StatusOK, dto.ProfileResponse{Profile: p})
}

func (h *AdminHandler) resolve(w http.ResponseWriter, r *http.Request) (int64, model.Profile, bool) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return 0, model.Profile{}, false
	}
	if h.profiles == nil {
		writeInternal(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return 0, model.Profile{}, false
	}
	ref := strings.TrimSpace(chi.URLParam(r, "ref"))
	if ref == "" {
		writeBadRequest(w, "VALIDATION_ERROR", "profile reference is required")
		return 0, model.Profile{}, false
	}

	target, err := h.profiles.Resolve(r.Context(), ref)
	if err != nil {
		handleProfileError(w, err)
		return 0, model.Profile{}, false
	}
	return identity.UserID, target, true
}
