package postgres

import (
	"testing"

	"github.com/Santhoshkumar2302/langfuse/pkg/model"
	"github.com/stretchr/testify/assert"
)

func TestBuildFetchQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		filter   model.Filter
		wantSubs []string
		wantArgs []any
	}{
		{
			name:   "defaults",
			filter: model.Filter{}.Normalized(),
			wantSubs: []string{
				"timestamp >= now() - ($1 || ' days')::interval",
				"ORDER BY timestamp DESC LIMIT $2",
			},
			wantArgs: []any{30, 1000},
		},
		{
			name:   "user filter",
			filter: model.Filter{User: "alice", Limit: 5, LastNDays: 7},
			wantSubs: []string{
				"timestamp >= now() - ($1 || ' days')::interval",
				"user_id = $2",
				"ORDER BY timestamp DESC LIMIT $3",
			},
			wantArgs: []any{7, "alice", 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			query, args := buildFetchQuery(tt.filter)
			for _, sub := range tt.wantSubs {
				assert.Contains(t, query, sub)
			}
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestNullString(t *testing.T) {
	t.Parallel()

	assert.False(t, nullString("").Valid)
	assert.True(t, nullString("x").Valid)
	assert.Equal(t, "x", nullString("x").String)
}
