package common

import (
	"errors"
	"fairway/src/config"
	"fairway/src/db"
	"fairway/src/models"
	"fairway/src/types"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"
)

var (
	ErrBookingNotFound    = errors.New("booking not found")
	ErrNotParticipant     = errors.New("only the booking's player or provider may change it")
	ErrPlayerTransition   = errors.New("players may only cancel a booking")
	ErrSelfBooking        = errors.New("you cannot book your own service")
	ErrTransitionConflict = errors.New("booking was updated by another request, try again")
)

type InvalidTransitionError struct {
	From types.BookingStatus
	To   types.BookingStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot change from %s to %s", e.From, e.To)
}

// bookingTransitions is the full lifecycle. declined, cancelled and
// completed are terminal.
var bookingTransitions = map[types.BookingStatus][]types.BookingStatus{
	types.BOOKING_PENDING:   {types.BOOKING_CONFIRMED, types.BOOKING_DECLINED, types.BOOKING_CANCELLED},
	types.BOOKING_CONFIRMED: {types.BOOKING_COMPLETED, types.BOOKING_CANCELLED},
}

func CanTransition(from, to types.BookingStatus) bool {
	for _, next := range bookingTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidateTransition applies the actor rule before the transition table: the
// caller must be a participant, and a player may request nothing but a
// cancellation.
func ValidateTransition(b *models.Booking, actorId uint, target types.BookingStatus) error {
	if actorId != b.PlayerID && actorId != b.ProviderID {
		return ErrNotParticipant
	}
	if actorId == b.PlayerID && target != types.BOOKING_CANCELLED {
		return ErrPlayerTransition
	}
	if !CanTransition(b.Status, target) {
		return &InvalidTransitionError{From: b.Status, To: target}
	}
	return nil
}

// TransitionBooking moves a booking to target on behalf of actorId. The
// status write is conditional on the status the actor saw, so two racing
// requests cannot both win.
func TransitionBooking(bookingId uint, actorId uint, target types.BookingStatus) (*models.Booking, error) {
	gdb := db.GetDb()
	var booking models.Booking
	if err := gdb.
		Model(&models.Booking{}).
		Where("id = ?", bookingId).
		First(&booking).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	if err := ValidateTransition(&booking, actorId, target); err != nil {
		return nil, err
	}
	res := gdb.
		Model(&models.Booking{}).
		Where("id = ? AND status = ?", booking.ID, booking.Status).
		Update("status", target)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrTransitionConflict
	}
	booking.Status = target
	if target == types.BOOKING_CONFIRMED {
		NotifyBookingConfirmed(&booking)
	}
	return &booking, nil
}

func CreateBooking(params *types.CreateBookingRequestBody, playerId uint) (*models.Booking, error) {
	if playerId == params.ProviderID {
		return nil, ErrSelfBooking
	}
	scheduledAt, err := time.Parse(config.TIME_PARSE_FORMAT, params.ScheduledAt)
	if err != nil {
		log.Printf("Error parsing scheduled_at: %s\n", err.Error())
		return nil, err
	}
	booking := models.Booking{
		Status:      types.BOOKING_PENDING,
		ServiceID:   params.ServiceID,
		PlayerID:    playerId,
		ProviderID:  params.ProviderID,
		ScheduledAt: &scheduledAt,
		TotalPrice:  params.Price,
		Notes:       params.Notes,
	}
	gdb := db.GetDb()
	if err := gdb.Create(&booking).Error; err != nil {
		return nil, err
	}
	NotifyBookingRequested(&booking)
	return &booking, nil
}

// ExpireStalePendingBookings cancels requests the provider never answered
// before the scheduled time. Runs from the scheduler.
func ExpireStalePendingBookings() {
	gdb := db.GetDb()
	res := gdb.
		Model(&models.Booking{}).
		Where("status = ? AND scheduled_at < ?", types.BOOKING_PENDING, time.Now()).
		Update("status", types.BOOKING_CANCELLED)
	if res.Error != nil {
		log.Printf("Error expiring stale bookings: %s\n", res.Error.Error())
		return
	}
	if res.RowsAffected > 0 {
		log.Printf("Cancelled %d stale pending bookings\n", res.RowsAffected)
	}
}
