package postgres

import (
	"testing"

	"github.com/ivankudzin/matrimony/internal/domain/enums"
)

func TestInteractionFilterClause(t *testing.T) {
	tests := []struct {
		name     string
		filter   InteractionFilter
		want     string
		wantArgs int
	}{
		{
			name:     "type only",
			filter:   InteractionFilter{Type: enums.InteractionBlock},
			want:     "type = $1",
			wantArgs: 1,
		},
		{
			name:     "received interests",
			filter:   InteractionFilter{Type: enums.InteractionInterest, ToUserID: 7},
			want:     "type = $1 AND to_user_id = $2",
			wantArgs: 2,
		},
		{
			name: "active shortlists",
			filter: InteractionFilter{
				Type:       enums.InteractionShortlist,
				FromUserID: 3,
				Statuses:   []enums.InteractionStatus{enums.InteractionStatusActive},
			},
			want:     "type = $1 AND from_user_id = $2 AND status = ANY($3)",
			wantArgs: 3,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, args := tc.filter.clause()
			if got != tc.want {
				t.Fatalf("unexpected clause: got %q want %q", got, tc.want)
			}
			if len(args) != tc.wantArgs {
				t.Fatalf("unexpected args: got %d want %d", len(args), tc.wantArgs)
			}
		})
	}
}
