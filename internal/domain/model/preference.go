package model

import (
	"time"

	"github.com/ivankudzin/matrimony/internal/domain/enums"
)

type Preference struct {
	UserID        int64                 `json:"user_id"`
	AgeRange      IntRange              `json:"age_range"`
	HeightRange   IntRange              `json:"height_range"`
	MaritalStatus []enums.MaritalStatus `json:"marital_status"`
	Location      LocationFilter        `json:"location"`
	Religion      []string              `json:"religion"`
	Caste         []string              `json:"caste"`
	Education     []string              `json:"education"`
	Occupation    []string              `json:"occupation"`
	EmployedIn    []enums.EmployedIn    `json:"employed_in"`
	AnnualIncome  IncomeRange           `json:"annual_income"`
	Diet          []string              `json:"diet"`
	Smoking       enums.Acceptance      `json:"smoking"`
	Drinking      enums.Acceptance      `json:"drinking"`
	FamilyType    []string              `json:"family_type"`
	FamilyStatus  []string              `json:"family_status"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

type IntRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Bounded reports whether both ends of the range are set.
func (r IntRange) Bounded() bool {
	return r.Min > 0 && r.Max > 0
}

func (r IntRange) Contains(v int) bool {
	return v >= r.Min && v <= r.Max
}

type LocationFilter struct {
	Countries []string `json:"countries"`
	States    []string `json:"states"`
	Cities    []string `json:"cities"`
}

type IncomeRange struct {
	Min string `json:"min"`
	Max string `json:"max"`
}
