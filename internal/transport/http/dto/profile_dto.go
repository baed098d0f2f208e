package dto

import (
	"github.com/ivankudzin/matrimony/internal/domain/enums"
	"github.com/ivankudzin/matrimony/internal/domain/model"
)

type PersonalInfoRequest struct {
	FirstName     string              `json:"first_name" validate:"required,max=50"`
	LastName      string              `json:"last_name" validate:"required,max=50"`
	DateOfBirth   string              `json:"date_of_birth" validate:"required,datetime=2006-01-02"`
	Gender        enums.Gender        `json:"gender" validate:"required"`
	MaritalStatus enums.MaritalStatus `json:"marital_status" validate:"required"`
	HeightCM      int                 `json:"height_cm" validate:"gte=0,lte=300"`
	WeightKG      int                 `json:"weight_kg" validate:"gte=0,lte=500"`
	MotherTongue  string              `json:"mother_tongue" validate:"max=50"`
	Bio           string              `json:"bio"`
}

type LocationRequest struct {
	Country string `json:"country" validate:"required,max=100"`
	State   string `json:"state" validate:"required,max=100"`
	City    string `json:"city" validate:"required,max=100"`
}

type ReligiousInfoRequest struct {
	Religion string `json:"religion" validate:"required,max=50"`
	Caste    string `json:"caste" validate:"max=50"`
	SubCaste string `json:"sub_caste" validate:"max=50"`
	Star     string `json:"star" validate:"max=50"`
}

type PhotoRequest struct {
	ID        string `json:"id"`
	URL       string `json:"url" validate:"required"`
	IsProfile bool   `json:"is_profile"`
}

type DocumentRequest struct {
	ID   string             `json:"id"`
	Type enums.DocumentType `json:"type" validate:"required"`
	URL  string             `json:"url" validate:"required"`
}

// ProfileRequest is shared by create and update. On update an omitted
// section keeps its stored value.
type ProfileRequest struct {
	Personal     *PersonalInfoRequest    `json:"personal_info"`
	Professional *model.ProfessionalInfo `json:"professional_info"`
	Family       *model.FamilyInfo       `json:"family_info"`
	Location     *LocationRequest        `json:"location"`
	Religious    *ReligiousInfoRequest   `json:"religious_info"`
	Lifestyle    *model.Lifestyle        `json:"lifestyle"`
	Photos       []PhotoRequest          `json:"photos" validate:"omitempty,max=10,dive"`
	Documents    []DocumentRequest       `json:"documents" validate:"omitempty,max=10,dive"`
	Privacy      *model.Privacy          `json:"privacy"`
}

type PrivacyRequest struct {
	ShowPhone  bool                  `json:"show_phone"`
	ShowEmail  bool                  `json:"show_email"`
	ShowPhotos enums.PhotoVisibility `json:"show_photos" validate:"required"`
	Visibility enums.Visibility      `json:"profile_visibility" validate:"required"`
}

type ProfileResponse struct {
	Profile model.Profile `json:"profile"`
}
