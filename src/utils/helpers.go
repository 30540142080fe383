package utils

import (
	"context"
	"fairway/src/config"
	"fairway/src/lib"
	"fairway/src/models"
	"fairway/src/types"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/account"
	"github.com/stripe/stripe-go/v82/accountlink"
)

// ToMinorUnits converts a decimal price to the processor's integer
// representation (cents).
func ToMinorUnits(price float64) int64 {
	return int64(math.Round(price * 100))
}

// PlatformFeeAmount returns the platform's cut of a minor-unit amount.
func PlatformFeeAmount(amount int64) int64 {
	return amount * config.PLATFORM_FEE_PERCENT / 100
}

func FormatPrice(price float64) string {
	return fmt.Sprintf("$%.2f", price)
}

func FormatSchedule(t *time.Time) string {
	if t == nil {
		return "an upcoming date"
	}
	return t.Format("Monday, Jan 2 2006 at 3:04 PM")
}

func GenerateToken(user *models.User) (string, error) {
	claims := &types.Claims{
		Role: user.Role,
		UID:  user.UID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}

// CreateBookingCheckout opens a hosted payment-mode checkout session. The
// platform fee stays on the platform account; the remainder transfers to the
// provider's payout account. The Booking row does not exist yet: every field
// needed to create it rides along as metadata for the webhook handler.
func CreateBookingCheckout(service *models.Service, providerAccountId string, metadata map[string]string) (*stripe.CheckoutSession, error) {
	sc := lib.GetStripeClient()
	unitAmount := ToMinorUnits(service.Price)
	fee := PlatformFeeAmount(unitAmount)
	piParams := &stripe.CheckoutSessionCreatePaymentIntentDataParams{
		ApplicationFeeAmount: stripe.Int64(fee),
		TransferData: &stripe.CheckoutSessionCreatePaymentIntentDataTransferDataParams{
			Destination: stripe.String(providerAccountId),
		},
	}
	for k, v := range metadata {
		piParams.AddMetadata(k, v)
	}
	createParams := stripe.CheckoutSessionCreateParams{
		SuccessURL:        stripe.String(fmt.Sprintf("%s/checkout/callback/success", os.Getenv("APP_HOST"))),
		CancelURL:         stripe.String(fmt.Sprintf("%s/checkout/callback/cancel", os.Getenv("APP_HOST"))),
		UIMode:            stripe.String("hosted"),
		Mode:              stripe.String("payment"),
		PaymentIntentData: piParams,
		LineItems: []*stripe.CheckoutSessionCreateLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionCreateLineItemPriceDataParams{
					Currency:   stripe.String(config.DEFAULT_CURRENCY),
					UnitAmount: stripe.Int64(unitAmount),
					ProductData: &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
						Name: stripe.String(service.Title),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		Metadata: metadata,
	}
	checkoutSession, err := sc.V1CheckoutSessions.Create(context.Background(), &createParams)
	if err != nil {
		log.Printf("CreateBookingCheckout failed: %s\n", err.Error())
		return nil, err
	}
	log.Printf("CheckoutSessionID: %s\n", checkoutSession.ID)
	return checkoutSession, nil
}

// CreateSubscriptionCheckout opens a subscription-mode checkout session for
// the caddie membership price.
func CreateSubscriptionCheckout(caddie *models.CaddieProfile, email string) (*stripe.CheckoutSession, error) {
	sc := lib.GetStripeClient()
	metadata := map[string]string{
		"caddie_id": strconv.FormatUint(uint64(caddie.ID), 10),
	}
	createParams := stripe.CheckoutSessionCreateParams{
		SuccessURL:    stripe.String(fmt.Sprintf("%s/caddies/subscription/success", os.Getenv("APP_HOST"))),
		CancelURL:     stripe.String(fmt.Sprintf("%s/caddies/subscription/cancel", os.Getenv("APP_HOST"))),
		Mode:          stripe.String("subscription"),
		CustomerEmail: stripe.String(email),
		LineItems: []*stripe.CheckoutSessionCreateLineItemParams{
			{
				Price:    stripe.String(os.Getenv("STRIPE_CADDIE_PRICE_ID")),
				Quantity: stripe.Int64(1),
			},
		},
		SubscriptionData: &stripe.CheckoutSessionCreateSubscriptionDataParams{
			Metadata: metadata,
		},
		Metadata: metadata,
	}
	checkoutSession, err := sc.V1CheckoutSessions.Create(context.Background(), &createParams)
	if err != nil {
		log.Printf("CreateSubscriptionCheckout failed: %s\n", err.Error())
		return nil, err
	}
	return checkoutSession, nil
}

// CreateStripeAccount provisions a payout account for a provider and returns
// the hosted onboarding link.
func CreateStripeAccount(user *models.User) (*stripe.Account, string, error) {
	acc, err := account.New(&stripe.AccountParams{
		BusinessProfile: &stripe.AccountBusinessProfileParams{
			Name: stripe.String(user.Name),
		},
		Email: stripe.String(user.Email),
		Capabilities: &stripe.AccountCapabilitiesParams{
			CardPayments: &stripe.AccountCapabilitiesCardPaymentsParams{
				Requested: stripe.Bool(true),
			},
			Transfers: &stripe.AccountCapabilitiesTransfersParams{
				Requested: stripe.Bool(true),
			},
		},
	})
	if err != nil {
		return nil, "", err
	}
	link, err := accountlink.New(&stripe.AccountLinkParams{
		Account:    stripe.String(acc.ID),
		Type:       stripe.String("account_onboarding"),
		ReturnURL:  stripe.String(fmt.Sprint(os.Getenv("APP_HOST"), "/dashboard")),
		RefreshURL: stripe.String(fmt.Sprint(os.Getenv("APP_HOST"), "/callback/account/refresh")),
	})
	if err != nil {
		return acc, "", err
	}
	return acc, link.URL, nil
}
