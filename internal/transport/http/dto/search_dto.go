package dto

import (
	"github.com/ivankudzin/matrimony/internal/domain/enums"
	"github.com/ivankudzin/matrimony/internal/domain/model"
)

type AdvancedSearchRequest struct {
	AgeMin        int                   `json:"age_min" validate:"omitempty,min=18,max=100"`
	AgeMax        int                   `json:"age_max" validate:"omitempty,min=18,max=100"`
	HeightMin     int                   `json:"height_min" validate:"omitempty,min=50,max=300"`
	HeightMax     int                   `json:"height_max" validate:"omitempty,min=50,max=300"`
	MaritalStatus []enums.MaritalStatus `json:"marital_status"`
	Religion      []string              `json:"religion" validate:"max=50,dive,max=50"`
	Caste         []string              `json:"caste" validate:"max=50,dive,max=50"`
	Education     []string              `json:"education" validate:"max=50,dive,max=100"`
	Occupation    []string              `json:"occupation" validate:"max=50,dive,max=100"`
	Country       string                `json:"country" validate:"max=100"`
	State         string                `json:"state" validate:"max=100"`
	City          string                `json:"city" validate:"max=100"`
	Page          int                   `json:"page"`
	Limit         int                   `json:"limit"`
}

type SearchResponse struct {
	Items      []model.ProfileSummary `json:"items"`
	Pagination Pagination             `json:"pagination"`
}
