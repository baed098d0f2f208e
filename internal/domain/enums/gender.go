package enums

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	default:
		return false
	}
}

type MaritalStatus string

const (
	MaritalStatusNeverMarried MaritalStatus = "never_married"
	MaritalStatusDivorced     MaritalStatus = "divorced"
	MaritalStatusWidowed      MaritalStatus = "widowed"
	MaritalStatusSeparated    MaritalStatus = "separated"
)

func (m MaritalStatus) Valid() bool {
	switch m {
	case MaritalStatusNeverMarried, MaritalStatusDivorced, MaritalStatusWidowed, MaritalStatusSeparated:
		return true
	default:
		return false
	}
}
