package common

import (
	"errors"
	"fairway/src/models"
	"fairway/src/types"
	"testing"

	"github.com/stretchr/testify/assert"
)

var allStatuses = []types.BookingStatus{
	types.BOOKING_PENDING,
	types.BOOKING_CONFIRMED,
	types.BOOKING_DECLINED,
	types.BOOKING_CANCELLED,
	types.BOOKING_COMPLETED,
}

func TestCanTransition(t *testing.T) {
	allowed := map[types.BookingStatus][]types.BookingStatus{
		types.BOOKING_PENDING:   {types.BOOKING_CONFIRMED, types.BOOKING_DECLINED, types.BOOKING_CANCELLED},
		types.BOOKING_CONFIRMED: {types.BOOKING_COMPLETED, types.BOOKING_CANCELLED},
	}
	for _, from := range allStatuses {
		for _, to := range allStatuses {
			want := false
			for _, next := range allowed[from] {
				if next == to {
					want = true
				}
			}
			assert.Equalf(t, want, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestTerminalStatusesHaveNoExits(t *testing.T) {
	for _, from := range []types.BookingStatus{types.BOOKING_DECLINED, types.BOOKING_CANCELLED, types.BOOKING_COMPLETED} {
		for _, to := range allStatuses {
			assert.Falsef(t, CanTransition(from, to), "%s should be terminal", from)
		}
	}
}

func TestValidateTransition(t *testing.T) {
	booking := &models.Booking{
		ID:         1,
		Status:     types.BOOKING_PENDING,
		PlayerID:   7,
		ProviderID: 9,
	}

	t.Run("stranger is rejected", func(t *testing.T) {
		err := ValidateTransition(booking, 5, types.BOOKING_CANCELLED)
		assert.ErrorIs(t, err, ErrNotParticipant)
	})

	t.Run("player may cancel", func(t *testing.T) {
		assert.Nil(t, ValidateTransition(booking, 7, types.BOOKING_CANCELLED))
	})

	t.Run("player may not confirm", func(t *testing.T) {
		err := ValidateTransition(booking, 7, types.BOOKING_CONFIRMED)
		assert.ErrorIs(t, err, ErrPlayerTransition)
	})

	t.Run("provider may confirm, decline or cancel", func(t *testing.T) {
		assert.Nil(t, ValidateTransition(booking, 9, types.BOOKING_CONFIRMED))
		assert.Nil(t, ValidateTransition(booking, 9, types.BOOKING_DECLINED))
		assert.Nil(t, ValidateTransition(booking, 9, types.BOOKING_CANCELLED))
	})

	t.Run("provider may not complete a pending booking", func(t *testing.T) {
		err := ValidateTransition(booking, 9, types.BOOKING_COMPLETED)
		var invalid *InvalidTransitionError
		assert.True(t, errors.As(err, &invalid))
		assert.Equal(t, "cannot change from pending to completed", err.Error())
	})

	t.Run("completed booking rejects every target", func(t *testing.T) {
		done := &models.Booking{ID: 2, Status: types.BOOKING_COMPLETED, PlayerID: 7, ProviderID: 9}
		for _, to := range allStatuses {
			err := ValidateTransition(done, 9, to)
			var invalid *InvalidTransitionError
			assert.Truef(t, errors.As(err, &invalid), "completed -> %s", to)
		}
	})
}
