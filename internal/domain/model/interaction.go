package model

import (
	"time"

	"github.com/ivankudzin/matrimony/internal/domain/enums"
)

type Interaction struct {
	ID         int64                   `json:"id"`
	FromUserID int64                   `json:"from_user_id"`
	ToUserID   int64                   `json:"to_user_id"`
	Type       enums.InteractionType   `json:"interaction_type"`
	Status     enums.InteractionStatus `json:"status"`
	Message    string                  `json:"message"`
	CreatedAt  time.Time               `json:"created_at"`
	UpdatedAt  time.Time               `json:"updated_at"`
}
