package model

import (
	"strings"
	"time"

	"github.com/ivankudzin/matrimony/internal/domain/enums"
)

type Profile struct {
	ID               int64            `json:"id"`
	UserID           int64            `json:"user_id"`
	DisplayID        string           `json:"profile_id"`
	Personal         PersonalInfo     `json:"personal_info"`
	Professional     ProfessionalInfo `json:"professional_info"`
	Family           FamilyInfo       `json:"family_info"`
	Location         Location         `json:"location"`
	Religious        ReligiousInfo    `json:"religious_info"`
	Lifestyle        Lifestyle        `json:"lifestyle"`
	Photos           []Photo          `json:"photos"`
	Documents        []Document       `json:"documents"`
	Privacy          Privacy          `json:"privacy"`
	Stats            ProfileStats     `json:"stats"`
	Verification     Verification     `json:"verification"`
	ProfileCompleted bool             `json:"profile_completed"`
	IsActive         bool             `json:"is_active"`
	IsPremium        bool             `json:"is_premium"`
	PremiumExpiresAt *time.Time       `json:"premium_expires_at"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

type PersonalInfo struct {
	FirstName     string              `json:"first_name"`
	LastName      string              `json:"last_name"`
	DateOfBirth   time.Time           `json:"date_of_birth"`
	Gender        enums.Gender        `json:"gender"`
	MaritalStatus enums.MaritalStatus `json:"marital_status"`
	HeightCM      int                 `json:"height_cm"`
	WeightKG      int                 `json:"weight_kg"`
	MotherTongue  string              `json:"mother_tongue"`
	Bio           string              `json:"bio"`
}

type ProfessionalInfo struct {
	Education        string           `json:"education"`
	EducationDetails string           `json:"education_details"`
	Occupation       string           `json:"occupation"`
	EmployedIn       enums.EmployedIn `json:"employed_in"`
	AnnualIncome     string           `json:"annual_income"`
	WorkLocation     string           `json:"work_location"`
}

type FamilyInfo struct {
	FatherOccupation string           `json:"father_occupation"`
	MotherOccupation string           `json:"mother_occupation"`
	Siblings         int              `json:"siblings"`
	FamilyType       enums.FamilyType `json:"family_type"`
	FamilyStatus     string           `json:"family_status"`
	FamilyValues     string           `json:"family_values"`
}

type Location struct {
	Country string `json:"country"`
	State   string `json:"state"`
	City    string `json:"city"`
}

type ReligiousInfo struct {
	Religion string `json:"religion"`
	Caste    string `json:"caste"`
	SubCaste string `json:"sub_caste"`
	Star     string `json:"star"`
}

type Lifestyle struct {
	Diet     enums.Diet  `json:"diet"`
	Smoking  enums.Habit `json:"smoking"`
	Drinking enums.Habit `json:"drinking"`
	Hobbies  []string    `json:"hobbies"`
}

type Photo struct {
	ID         string    `json:"id"`
	URL        string    `json:"url"`
	IsProfile  bool      `json:"is_profile"`
	IsVerified bool      `json:"is_verified"`
	UploadedAt time.Time `json:"uploaded_at"`
}

type Document struct {
	ID         string             `json:"id"`
	Type       enums.DocumentType `json:"type"`
	URL        string             `json:"url"`
	IsVerified bool               `json:"is_verified"`
	UploadedAt time.Time          `json:"uploaded_at"`
}

type Privacy struct {
	ShowPhone  bool                  `json:"show_phone"`
	ShowEmail  bool                  `json:"show_email"`
	ShowPhotos enums.PhotoVisibility `json:"show_photos"`
	Visibility enums.Visibility      `json:"profile_visibility"`
}

type ProfileStats struct {
	Views        int64 `json:"views"`
	ContactViews int64 `json:"contact_views"`
	Shortlists   int64 `json:"shortlists"`
}

type Verification struct {
	IDVerified        bool       `json:"id_verified"`
	PhotoVerified     bool       `json:"photo_verified"`
	EducationVerified bool       `json:"education_verified"`
	IncomeVerified    bool       `json:"income_verified"`
	VerifiedAt        *time.Time `json:"verified_at"`
}

func (v Verification) Any() bool {
	return v.IDVerified || v.PhotoVerified || v.EducationVerified || v.IncomeVerified
}

func (p Profile) FullName() string {
	return strings.TrimSpace(p.Personal.FirstName + " " + p.Personal.LastName)
}

// PrimaryPhoto returns the photo flagged as the profile picture, falling back to the first one.
func (p Profile) PrimaryPhoto() (Photo, bool) {
	for _, photo := range p.Photos {
		if photo.IsProfile {
			return photo, true
		}
	}
	if len(p.Photos) > 0 {
		return p.Photos[0], true
	}
	return Photo{}, false
}

func (p Profile) Discoverable() bool {
	return p.IsActive && p.Privacy.Visibility == enums.VisibilityPublic
}
