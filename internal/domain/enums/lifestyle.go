package enums

// DoesntMatter is the wildcard accepted by preference sets and habit filters.
const DoesntMatter = "doesnt_matter"

type Diet string

const (
	DietVegetarian    Diet = "vegetarian"
	DietNonVegetarian Diet = "non_vegetarian"
	DietEggetarian    Diet = "eggetarian"
)

type Habit string

const (
	HabitYes          Habit = "yes"
	HabitNo           Habit = "no"
	HabitOccasionally Habit = "occasionally"
)

type Acceptance string

const (
	AcceptanceAcceptable    Acceptance = "acceptable"
	AcceptanceNotAcceptable Acceptance = "not_acceptable"
	AcceptanceDoesntMatter  Acceptance = DoesntMatter
)

type EmployedIn string

const (
	EmployedInGovernment   EmployedIn = "government"
	EmployedInPrivate      EmployedIn = "private"
	EmployedInBusiness     EmployedIn = "business"
	EmployedInSelfEmployed EmployedIn = "self_employed"
	EmployedInNotWorking   EmployedIn = "not_working"
)

type FamilyType string

const (
	FamilyTypeNuclear FamilyType = "nuclear"
	FamilyTypeJoint   FamilyType = "joint"
)

type DocumentType string

const (
	DocumentIDProof              DocumentType = "id_proof"
	DocumentAddressProof         DocumentType = "address_proof"
	DocumentEducationCertificate DocumentType = "education_certificate"
	DocumentIncomeProof          DocumentType = "income_proof"
)

func (d Diet) Valid() bool {
	switch d {
	case DietVegetarian, DietNonVegetarian, DietEggetarian:
		return true
	default:
		return false
	}
}

func (h Habit) Valid() bool {
	switch h {
	case HabitYes, HabitNo, HabitOccasionally:
		return true
	default:
		return false
	}
}

func (a Acceptance) Valid() bool {
	switch a {
	case AcceptanceAcceptable, AcceptanceNotAcceptable, AcceptanceDoesntMatter:
		return true
	default:
		return false
	}
}

func (e EmployedIn) Valid() bool {
	switch e {
	case EmployedInGovernment, EmployedInPrivate, EmployedInBusiness, EmployedInSelfEmployed, EmployedInNotWorking:
		return true
	default:
		return false
	}
}

func (f FamilyType) Valid() bool {
	return f == FamilyTypeNuclear || f == FamilyTypeJoint
}

func (d DocumentType) Valid() bool {
	switch d {
	case DocumentIDProof, DocumentAddressProof, DocumentEducationCertificate, DocumentIncomeProof:
		return true
	default:
		return false
	}
}
