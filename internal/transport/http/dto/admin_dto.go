package dto

import "time"

type VerificationRequest struct {
	IDVerified        *bool `json:"id_verified"`
	PhotoVerified     *bool `json:"photo_verified"`
	EducationVerified *bool `json:"education_verified"`
	IncomeVerified    *bool `json:"income_verified"`
}

// PremiumRequest grants premium until ExpiresAt; a null value revokes it.
type PremiumRequest struct {
	ExpiresAt *time.Time `json:"expires_at"`
}
