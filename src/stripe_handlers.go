package main

import (
	"encoding/json"
	"fairway/src/common"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
	"gorm.io/gorm"
)

func stripeWebhookRoute(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	apiv1.POST("/webhook/stripe", handleStripeWebhook)
	return apiv1
}

// applyStripeEvent claims the event and runs apply in one transaction. On
// failure the claim rolls back and the response is a 500, so Stripe keeps
// the delivery alive and the retry starts from a clean slate. Returns false
// when a response has already been written.
func applyStripeEvent(ctx *gin.Context, event *stripe.Event, sessionId *string, apply func(tx *gorm.DB) error) bool {
	processed, err := common.ProcessEventOnce(event.ID, string(event.Type), sessionId, apply)
	if err != nil {
		log.Printf("Error processing event %s: %s\n", event.ID, err.Error())
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return false
	}
	if !processed {
		log.Printf("[Stripe] Event %s already processed\n", event.ID)
	}
	return true
}

// handleStripeWebhook is the only writer of payment-derived state. Stripe
// delivers at-least-once, so every recognized event is claimed through the
// webhook_events ledger in the same transaction that applies it.
func handleStripeWebhook(ctx *gin.Context) {
	payload, err := io.ReadAll(ctx.Request.Body)
	if err != nil {
		log.Printf("Error reading request body: %s\n", err.Error())
		ctx.Status(http.StatusServiceUnavailable)
		return
	}
	whsecret := os.Getenv("STRIPE_WEBHOOK_SECRET")
	event, err := webhook.ConstructEvent(payload, ctx.GetHeader("Stripe-Signature"), whsecret)
	if err != nil {
		log.Printf("Error verifying webhook signature: %s\n", err.Error())
		ctx.Status(http.StatusBadRequest)
		return
	}
	log.Printf("[StripeEvent] %s\n", event.Type)
	switch event.Type {
	case "checkout.session.completed":
		var cs stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
			log.Printf("[Stripe] Error parsing CheckoutSession: %s\n", err.Error())
			break
		}
		var apply func(tx *gorm.DB) error
		switch cs.Mode {
		case stripe.CheckoutSessionModePayment:
			apply = func(tx *gorm.DB) error { return common.CreateBookingFromCheckout(tx, &cs) }
		case stripe.CheckoutSessionModeSubscription:
			apply = func(tx *gorm.DB) error { return common.ActivateCaddieSubscription(tx, &cs) }
		default:
			log.Printf("[Stripe] Ignoring checkout session %s with mode %s\n", cs.ID, cs.Mode)
		}
		if apply != nil && !applyStripeEvent(ctx, &event, &cs.ID, apply) {
			return
		}
	case "customer.subscription.updated":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			log.Printf("[Stripe] Error parsing Subscription: %s\n", err.Error())
			break
		}
		if !applyStripeEvent(ctx, &event, nil, func(tx *gorm.DB) error {
			return common.SyncCaddieSubscription(tx, &sub)
		}) {
			return
		}
	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			log.Printf("[Stripe] Error parsing Subscription: %s\n", err.Error())
			break
		}
		if !applyStripeEvent(ctx, &event, nil, func(tx *gorm.DB) error {
			return common.CancelCaddieSubscription(tx, &sub)
		}) {
			return
		}
	case "invoice.payment_failed":
		var inv stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
			log.Printf("[Stripe] Error parsing Invoice: %s\n", err.Error())
			break
		}
		customerId := ""
		if inv.Customer != nil {
			customerId = inv.Customer.ID
		}
		if !applyStripeEvent(ctx, &event, nil, func(tx *gorm.DB) error {
			return common.MarkCaddiePastDueByCustomer(tx, customerId)
		}) {
			return
		}
	}
	ctx.Status(http.StatusOK)
}
