package enums

type InteractionType string

const (
	InteractionInterest  InteractionType = "interest"
	InteractionShortlist InteractionType = "shortlist"
	InteractionFavorite  InteractionType = "favorite"
	InteractionBlock     InteractionType = "block"
	InteractionView      InteractionType = "view"
)

type InteractionStatus string

const (
	InteractionStatusPending  InteractionStatus = "pending"
	InteractionStatusAccepted InteractionStatus = "accepted"
	InteractionStatusRejected InteractionStatus = "rejected"
	InteractionStatusActive   InteractionStatus = "active"
	InteractionStatusRemoved  InteractionStatus = "removed"
)
