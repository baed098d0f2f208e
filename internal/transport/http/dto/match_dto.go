package dto

import (
	"github.com/ivankudzin/matrimony/internal/domain/enums"
	"github.com/ivankudzin/matrimony/internal/domain/model"
)

type SuggestionResponse struct {
	Profile  model.ProfileSummary    `json:"profile"`
	Score    int                     `json:"match_score"`
	Criteria []model.CriterionResult `json:"matched_criteria"`
}

type SuggestionsResponse struct {
	Items      []SuggestionResponse `json:"items"`
	Pagination Pagination           `json:"pagination"`
}

type CalculationResponse struct {
	Profile  model.ProfileSummary    `json:"profile"`
	Score    int                     `json:"match_score"`
	Criteria []model.CriterionResult `json:"matched_criteria"`
	Match    model.Match             `json:"match"`
}

type MatchItemResponse struct {
	Match   model.Match          `json:"match"`
	Profile model.ProfileSummary `json:"profile"`
}

type MatchesResponse struct {
	Items      []MatchItemResponse `json:"items"`
	Pagination Pagination          `json:"pagination"`
}

type UpdateMatchStatusRequest struct {
	Status enums.MatchStatus `json:"status" validate:"required"`
}
