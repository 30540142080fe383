package common

import (
	"fairway/src/models"
	"fairway/src/types"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/stripe/stripe-go/v82"
	"gorm.io/gorm"
)

// MapSubscriptionStatus folds Stripe's subscription sub-statuses into the
// three states the caddie gate cares about. The second return is false for
// statuses that should not change stored state (e.g. incomplete).
func MapSubscriptionStatus(s stripe.SubscriptionStatus) (types.SubscriptionStatus, bool) {
	switch s {
	case stripe.SubscriptionStatusActive, stripe.SubscriptionStatusTrialing:
		return types.SUBSCRIPTION_ACTIVE, true
	case stripe.SubscriptionStatusPastDue:
		return types.SUBSCRIPTION_PAST_DUE, true
	case stripe.SubscriptionStatusCanceled, stripe.SubscriptionStatusUnpaid:
		return types.SUBSCRIPTION_CANCELLED, true
	}
	return "", false
}

// ActivateCaddieSubscription handles a subscription-mode checkout completing.
func ActivateCaddieSubscription(tx *gorm.DB, cs *stripe.CheckoutSession) error {
	caddieId, err := strconv.ParseUint(cs.Metadata["caddie_id"], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid caddie_id in checkout metadata: %s", cs.Metadata["caddie_id"])
	}
	updates := map[string]any{
		"subscription_status": types.SUBSCRIPTION_ACTIVE,
	}
	if cs.Subscription != nil {
		updates["stripe_subscription_id"] = cs.Subscription.ID
	}
	if cs.Customer != nil {
		updates["stripe_customer_id"] = cs.Customer.ID
	}
	if err := tx.
		Model(&models.CaddieProfile{}).
		Where("id = ?", caddieId).
		Updates(updates).
		Error; err != nil {
		return err
	}
	log.Printf("Caddie %d subscription activated\n", caddieId)
	return nil
}

// SyncCaddieSubscription applies a customer.subscription.updated event to
// the caddie matched by the stored subscription id. No match is a no-op.
func SyncCaddieSubscription(tx *gorm.DB, sub *stripe.Subscription) error {
	status, ok := MapSubscriptionStatus(sub.Status)
	if !ok {
		log.Printf("Ignoring subscription %s with status %s\n", sub.ID, sub.Status)
		return nil
	}
	updates := map[string]any{"subscription_status": status}
	if sub.CancelAt > 0 {
		endsAt := time.Unix(sub.CancelAt, 0)
		updates["subscription_ends_at"] = &endsAt
	}
	res := tx.
		Model(&models.CaddieProfile{}).
		Where("stripe_subscription_id = ?", sub.ID).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		log.Printf("No caddie holds subscription %s\n", sub.ID)
	}
	return nil
}

// CancelCaddieSubscription handles customer.subscription.deleted.
func CancelCaddieSubscription(tx *gorm.DB, sub *stripe.Subscription) error {
	return tx.
		Model(&models.CaddieProfile{}).
		Where("stripe_subscription_id = ?", sub.ID).
		Updates(map[string]any{
			"subscription_status":    types.SUBSCRIPTION_CANCELLED,
			"stripe_subscription_id": nil,
		}).
		Error
}

// MarkCaddiePastDueByCustomer handles invoice.payment_failed, matched by the
// stored customer id. An unknown customer updates nothing and is not an error.
func MarkCaddiePastDueByCustomer(tx *gorm.DB, customerId string) error {
	if customerId == "" {
		return nil
	}
	res := tx.
		Model(&models.CaddieProfile{}).
		Where("stripe_customer_id = ?", customerId).
		Update("subscription_status", types.SUBSCRIPTION_PAST_DUE)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		log.Printf("No caddie matches customer %s for failed invoice\n", customerId)
	}
	return nil
}
