package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusiness_CheckAdvance(t *testing.T) {
	now := time.Date(2025, 10, 15, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		business Business
		startsAt time.Time
		wantErr  error
	}{
		{
			name:     "no limits",
			business: Business{},
			startsAt: now.Add(time.Minute),
		},
		{
			name:     "exactly minimum advance",
			business: Business{MinAdvanceHours: 2},
			startsAt: now.Add(2 * time.Hour),
		},
		{
			name:     "less than minimum advance",
			business: Business{MinAdvanceHours: 2},
			startsAt: now.Add(119 * time.Minute),
			wantErr:  ErrTooLateToBook,
		},
		{
			name:     "in the past",
			business: Business{},
			startsAt: now.Add(-time.Hour),
			wantErr:  ErrTooLateToBook,
		},
		{
			name:     "last allowed day",
			business: Business{MaxAdvanceDays: 30},
			startsAt: time.Date(2025, 11, 14, 18, 0, 0, 0, time.UTC),
		},
		{
			name:     "beyond advance limit",
			business: Business{MaxAdvanceDays: 30},
			startsAt: time.Date(2025, 11, 15, 9, 0, 0, 0, time.UTC),
			wantErr:  ErrBeyondAdvanceLimit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.business.CheckAdvance(tt.startsAt, now)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestBusiness_IsBeyondAdvanceLimit(t *testing.T) {
	now := time.Date(2025, 10, 15, 23, 30, 0, 0, time.UTC)

	unlimited := Business{}
	assert.False(t, unlimited.IsBeyondAdvanceLimit(now.AddDate(5, 0, 0), now))

	limited := Business{MaxAdvanceDays: 7}
	assert.False(t, limited.IsBeyondAdvanceLimit(time.Date(2025, 10, 22, 0, 0, 0, 0, time.UTC), now))
	assert.True(t, limited.IsBeyondAdvanceLimit(time.Date(2025, 10, 23, 0, 0, 0, 0, time.UTC), now))
}
