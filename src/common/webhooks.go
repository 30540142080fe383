package common

import (
	"context"
	"errors"
	"fairway/src/config"
	"fairway/src/db"
	"fairway/src/lib"
	"fairway/src/models"
	"fairway/src/types"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/stripe/stripe-go/v82"
	"gorm.io/gorm"
)

// ClaimWebhookEvent records a Stripe event inside tx before it is processed.
// Stripe delivers at-least-once; a false return means this event id was
// already claimed and the delivery must be treated as a no-op.
func ClaimWebhookEvent(tx *gorm.DB, eventId string, eventType string, sessionId *string) (bool, error) {
	evt := models.WebhookEvent{
		EventID:           eventId,
		Type:              eventType,
		CheckoutSessionId: sessionId,
	}
	if err := tx.Create(&evt).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ProcessEventOnce claims the event and runs apply in a single transaction.
// A failing apply rolls the claim back so Stripe's redelivery gets a clean
// retry; nothing is half-processed. The redis key is written only after a
// successful commit and serves as a cheap duplicate fast path.
func ProcessEventOnce(eventId string, eventType string, sessionId *string, apply func(tx *gorm.DB) error) (bool, error) {
	key := fmt.Sprintf("stripe:event:%s", eventId)
	rdb := lib.GetRedisClient()
	if rdb != nil {
		if n, err := rdb.Exists(context.Background(), key).Result(); err == nil && n > 0 {
			return false, nil
		}
	}
	claimed := false
	gdb := db.GetDb()
	err := gdb.Transaction(func(tx *gorm.DB) error {
		ok, err := ClaimWebhookEvent(tx, eventId, eventType, sessionId)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		claimed = true
		return apply(tx)
	})
	if err != nil {
		return false, err
	}
	if claimed && rdb != nil {
		rdb.SetNX(context.Background(), key, 1, 24*time.Hour)
	}
	return claimed, nil
}

// CreateBookingFromCheckout materializes the Booking a paid checkout was
// carrying as metadata. A session that already produced a booking is a
// no-op, so the same session arriving under a second event id stays single.
func CreateBookingFromCheckout(tx *gorm.DB, cs *stripe.CheckoutSession) error {
	md := cs.Metadata
	serviceId, err := strconv.ParseUint(md["service_id"], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid service_id in checkout metadata: %s", md["service_id"])
	}
	providerId, err := strconv.ParseUint(md["provider_id"], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid provider_id in checkout metadata: %s", md["provider_id"])
	}
	playerId, err := strconv.ParseUint(md["player_id"], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid player_id in checkout metadata: %s", md["player_id"])
	}
	price, err := strconv.ParseFloat(md["price"], 64)
	if err != nil {
		return fmt.Errorf("invalid price in checkout metadata: %s", md["price"])
	}
	scheduledAt, err := time.Parse(config.TIME_PARSE_FORMAT, md["scheduled_at"])
	if err != nil {
		return fmt.Errorf("invalid scheduled_at in checkout metadata: %s", md["scheduled_at"])
	}
	var notes *string
	if n, ok := md["notes"]; ok && n != "" {
		notes = &n
	}
	var existing int64
	if err := tx.
		Model(&models.Booking{}).
		Where("checkout_session_id = ?", cs.ID).
		Count(&existing).
		Error; err != nil {
		return err
	}
	if existing > 0 {
		log.Printf("Booking for checkout session %s already exists\n", cs.ID)
		return nil
	}
	booking := models.Booking{
		Status:            types.BOOKING_PENDING,
		ServiceID:         uint(serviceId),
		PlayerID:          uint(playerId),
		ProviderID:        uint(providerId),
		ScheduledAt:       &scheduledAt,
		TotalPrice:        price,
		Notes:             notes,
		CheckoutSessionId: &cs.ID,
		Metadata:          types.Metadata(md),
	}
	if err := tx.Create(&booking).Error; err != nil {
		return err
	}
	log.Printf("Created booking %d from checkout session %s\n", booking.ID, cs.ID)
	NotifyBookingPaid(&booking)
	return nil
}
