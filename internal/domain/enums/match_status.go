package enums

type MatchStatus string

const (
	MatchStatusSuggested  MatchStatus = "suggested"
	MatchStatusViewed     MatchStatus = "viewed"
	MatchStatusInterested MatchStatus = "interested"
	MatchStatusRejected   MatchStatus = "rejected"
)

func (s MatchStatus) Valid() bool {
	switch s {
	case MatchStatusSuggested, MatchStatusViewed, MatchStatusInterested, MatchStatusRejected:
		return true
	default:
		return false
	}
}
