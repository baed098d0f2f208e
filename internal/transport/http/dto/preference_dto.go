package dto

import (
	"github.com/ivankudzin/matrimony/internal/domain/enums"
	"github.com/ivankudzin/matrimony/internal/domain/model"
)

type IntRangeRequest struct {
	Min int `json:"min" validate:"gte=0"`
	Max int `json:"max" validate:"gte=0"`
}

type PreferenceRequest struct {
	AgeRange      IntRangeRequest       `json:"age_range"`
	HeightRange   IntRangeRequest       `json:"height_range"`
	MaritalStatus []enums.MaritalStatus `json:"marital_status"`
	Location      model.LocationFilter  `json:"location"`
	Religion      []string              `json:"religion"`
	Caste         []string              `json:"caste"`
	Education     []string              `json:"education"`
	Occupation    []string              `json:"occupation"`
	EmployedIn    []enums.EmployedIn    `json:"employed_in"`
	AnnualIncome  model.IncomeRange     `json:"annual_income"`
	Diet          []string              `json:"diet"`
	Smoking       enums.Acceptance      `json:"smoking"`
	Drinking      enums.Acceptance      `json:"drinking"`
	FamilyType    []string              `json:"family_type"`
	FamilyStatus  []string              `json:"family_status"`
}

func (r PreferenceRequest) ToModel() model.Preference {
	return model.Preference{
		AgeRange:      model.IntRange{Min: r.AgeRange.Min, Max: r.AgeRange.Max},
		HeightRange:   model.IntRange{Min: r.HeightRange.Min, Max: r.HeightRange.Max},
		MaritalStatus: r.MaritalStatus,
		Location:      r.Location,
		Religion:      r.Religion,
		Caste:         r.Caste,
		Education:     r.Education,
		Occupation:    r.Occupation,
		EmployedIn:    r.EmployedIn,
		AnnualIncome:  r.AnnualIncome,
		Diet:          r.Diet,
		Smoking:       r.Smoking,
		Drinking:      r.Drinking,
		FamilyType:    r.FamilyType,
		FamilyStatus:  r.FamilyStatus,
	}
}

type PreferenceResponse struct {
	Preference model.Preference `json:"preference"`
}
