package rules

import "github.com/ivankudzin/matrimony/internal/domain/enums"

// ComplementGender returns the gender whose profiles are offered to g.
// Only male and female are paired; any other value gets no candidate pool.
func ComplementGender(g enums.Gender) (enums.Gender, bool) {
	switch g {
	case enums.GenderMale:
		return enums.GenderFemale, true
	case enums.GenderFemale:
		return enums.GenderMale, true
	default:
		return "", false
	}
}
