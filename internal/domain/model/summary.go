package model

import "github.com/ivankudzin/matrimony/internal/domain/enums"

// ProfileSummary is the compact card shown in suggestion, interaction and
// conversation lists.
type ProfileSummary struct {
	ID            int64               `json:"id"`
	UserID        int64               `json:"user_id"`
	DisplayID     string              `json:"profile_id"`
	FirstName     string              `json:"first_name"`
	LastName      string              `json:"last_name"`
	Age           int                 `json:"age"`
	Gender        enums.Gender        `json:"gender"`
	MaritalStatus enums.MaritalStatus `json:"marital_status"`
	HeightCM      int                 `json:"height_cm"`
	Religion      string              `json:"religion"`
	Education     string              `json:"education"`
	Occupation    string              `json:"occupation"`
	City          string              `json:"city"`
	State         string              `json:"state"`
	Country       string              `json:"country"`
	PhotoURL      string              `json:"photo_url"`
	IsPremium     bool                `json:"is_premium"`
	IsVerified    bool                `json:"is_verified"`
}
