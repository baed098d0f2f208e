package rules

import (
	"strings"

	"github.com/ivankudzin/matrimony/internal/domain/model"
)

// ProfileCompleted reports whether every field needed for discovery and scoring is present.
func ProfileCompleted(p model.Profile) bool {
	return p.Personal.Gender.Valid() &&
		!p.Personal.DateOfBirth.IsZero() &&
		p.Personal.MaritalStatus != "" &&
		strings.TrimSpace(p.Religious.Religion) != "" &&
		strings.TrimSpace(p.Professional.Education) != "" &&
		strings.TrimSpace(p.Professional.Occupation) != "" &&
		strings.TrimSpace(p.Location.Country) != "" &&
		strings.TrimSpace(p.Location.State) != "" &&
		strings.TrimSpace(p.Location.City) != ""
}
