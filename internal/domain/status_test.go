package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAppointmentStatus(t *testing.T) {
	for _, s := range AllStatuses {
		parsed, err := ParseAppointmentStatus(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}

	_, err := ParseAppointmentStatus("CONFIRMED")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = ParseAppointmentStatus("in_progress")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestAppointmentStatus_IsOccupying(t *testing.T) {
	occupying := map[AppointmentStatus]bool{
		StatusConfirmed:      true,
		StatusPaymentPending: true,
	}
	for _, s := range AllStatuses {
		assert.Equal(t, occupying[s], s.IsOccupying(), s)
	}
}

func TestAppointmentStatus_CanTransitionTo(t *testing.T) {
	allowed := map[AppointmentStatus][]AppointmentStatus{
		StatusPending:        {StatusPaymentPending, StatusRejected, StatusCancelled, StatusExpired},
		StatusPaymentPending: {StatusConfirmed, StatusCancelled},
		StatusConfirmed:      {StatusCancelled, StatusCompleted, StatusNoShow},
	}

	for _, from := range AllStatuses {
		targets := make(map[AppointmentStatus]bool)
		for _, to := range allowed[from] {
			targets[to] = true
		}
		for _, to := range AllStatuses {
			assert.Equal(t, targets[to], from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestAppointmentStatus_IsTerminal(t *testing.T) {
	for _, s := range AllStatuses {
		hasExits := false
		for _, to := range AllStatuses {
			if s.CanTransitionTo(to) {
				hasExits = true
			}
		}
		assert.Equal(t, !hasExits, s.IsTerminal(), s)
	}
}
