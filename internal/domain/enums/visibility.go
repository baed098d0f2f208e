package enums

type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

type PhotoVisibility string

const (
	PhotoVisibilityAll     PhotoVisibility = "all"
	PhotoVisibilityPremium PhotoVisibility = "premium"
	PhotoVisibilityNone    PhotoVisibility = "none"
)

func (v Visibility) Valid() bool {
	return v == VisibilityPublic || v == VisibilityPrivate
}

func (v PhotoVisibility) Valid() bool {
	switch v {
	case PhotoVisibilityAll, PhotoVisibilityPremium, PhotoVisibilityNone:
		return true
	default:
		return false
	}
}
