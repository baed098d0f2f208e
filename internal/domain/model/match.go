package model

import (
	"time"

	"github.com/ivankudzin/matrimony/internal/domain/enums"
)

type Match struct {
	ID            int64             `json:"id"`
	UserID        int64             `json:"user_id"`
	MatchedUserID int64             `json:"matched_user_id"`
	Score         int               `json:"match_score"`
	Criteria      []CriterionResult `json:"matched_criteria"`
	Status        enums.MatchStatus `json:"status"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

type CriterionResult struct {
	Criterion string `json:"criteria"`
	Matched   bool   `json:"matched"`
}
