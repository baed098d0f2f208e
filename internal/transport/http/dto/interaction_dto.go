package dto

import (
	"github.com/ivankudzin/matrimony/internal/domain/enums"
	"github.com/ivankudzin/matrimony/internal/domain/model"
)

type SendInterestRequest struct {
	Message string `json:"message" validate:"max=500"`
}

type RespondInterestRequest struct {
	Status enums.InteractionStatus `json:"status" validate:"required,oneof=accepted rejected"`
}

type InteractionResponse struct {
	Interaction model.Interaction `json:"interaction"`
}

type InteractionItemResponse struct {
	Interaction model.Interaction    `json:"interaction"`
	Profile     model.ProfileSummary `json:"profile"`
}

type InteractionsResponse struct {
	Items      []InteractionItemResponse `json:"items"`
	Pagination Pagination                `json:"pagination"`
}
