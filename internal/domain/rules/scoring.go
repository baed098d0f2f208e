package rules

import (
	"math"
	"slices"
	"time"

	"github.com/ivankudzin/matrimony/internal/domain/enums"
	"github.com/ivankudzin/matrimony/internal/domain/model"
)

const (
	CriterionAge           = "age"
	CriterionHeight        = "height"
	CriterionMaritalStatus = "marital_status"
	CriterionCountry       = "country"
	CriterionReligion      = "religion"
	CriterionEducation     = "education"
	CriterionOccupation    = "occupation"
	CriterionDiet          = "diet"
)

const (
	weightAge           = 20
	weightHeight        = 10
	weightMaritalStatus = 15
	weightCountry       = 15
	weightReligion      = 15
	weightEducation     = 10
	weightOccupation    = 10
	weightDiet          = 5
)

// SuggestionCutoff is the minimum score a scored candidate needs to be suggested.
const SuggestionCutoff = 50

type Evaluation struct {
	Score    int
	Earned   int
	Possible int
	Criteria []model.CriterionResult
}

// Evaluate runs the weighted checklist of pref against candidate. Criteria the
// preference does not set are left out of both the earned and possible totals.
func Evaluate(candidate model.Profile, pref model.Preference, now time.Time) Evaluation {
	var ev Evaluation

	check := func(criterion string, weight int, matched bool) {
		ev.Possible += weight
		if matched {
			ev.Earned += weight
		}
		ev.Criteria = append(ev.Criteria, model.CriterionResult{Criterion: criterion, Matched: matched})
	}

	if pref.AgeRange.Max > 0 {
		age := AgeAt(candidate.Personal.DateOfBirth, now)
		check(CriterionAge, weightAge, pref.AgeRange.Contains(age))
	}
	if pref.HeightRange.Bounded() {
		check(CriterionHeight, weightHeight, pref.HeightRange.Contains(candidate.Personal.HeightCM))
	}
	if len(pref.MaritalStatus) > 0 {
		check(CriterionMaritalStatus, weightMaritalStatus, slices.Contains(pref.MaritalStatus, candidate.Personal.MaritalStatus))
	}
	if len(pref.Location.Countries) > 0 {
		check(CriterionCountry, weightCountry, slices.Contains(pref.Location.Countries, candidate.Location.Country))
	}
	if len(pref.Religion) > 0 {
		check(CriterionReligion, weightReligion, slices.Contains(pref.Religion, candidate.Religious.Religion))
	}
	if len(pref.Education) > 0 {
		check(CriterionEducation, weightEducation, slices.Contains(pref.Education, candidate.Professional.Education))
	}
	if len(pref.Occupation) > 0 {
		check(CriterionOccupation, weightOccupation, slices.Contains(pref.Occupation, candidate.Professional.Occupation))
	}
	if len(pref.Diet) > 0 {
		matched := slices.Contains(pref.Diet, string(candidate.Lifestyle.Diet)) || slices.Contains(pref.Diet, enums.DoesntMatter)
		check(CriterionDiet, weightDiet, matched)
	}

	if ev.Possible > 0 {
		ev.Score = int(math.Round(float64(ev.Earned) * 100 / float64(ev.Possible)))
	}
	return ev
}

func Score(candidate model.Profile, pref model.Preference, now time.Time) int {
	return Evaluate(candidate, pref, now).Score
}

// AgeAt returns full calendar years between birth and now.
func AgeAt(birth, now time.Time) int {
	if birth.IsZero() {
		return 0
	}
	b := birth.UTC()
	n := now.UTC()

	years := n.Year() - b.Year()
	if n.Month() < b.Month() || (n.Month() == b.Month() && n.Day() < b.Day()) {
		years--
	}
	return years
}
