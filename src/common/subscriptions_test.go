package common

import (
	"fairway/src/types"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stripe/stripe-go/v82"
)

func TestMapSubscriptionStatus(t *testing.T) {
	cases := []struct {
		in   stripe.SubscriptionStatus
		want types.SubscriptionStatus
		ok   bool
	}{
		{stripe.SubscriptionStatusActive, types.SUBSCRIPTION_ACTIVE, true},
		{stripe.SubscriptionStatusTrialing, types.SUBSCRIPTION_ACTIVE, true},
		{stripe.SubscriptionStatusPastDue, types.SUBSCRIPTION_PAST_DUE, true},
		{stripe.SubscriptionStatusCanceled, types.SUBSCRIPTION_CANCELLED, true},
		{stripe.SubscriptionStatusUnpaid, types.SUBSCRIPTION_CANCELLED, true},
		{stripe.SubscriptionStatusIncomplete, "", false},
		{stripe.SubscriptionStatusIncompleteExpired, "", false},
		{stripe.SubscriptionStatusPaused, "", false},
	}
	for _, c := range cases {
		got, ok := MapSubscriptionStatus(c.in)
		assert.Equalf(t, c.ok, ok, "status %s", c.in)
		assert.Equalf(t, c.want, got, "status %s", c.in)
	}
}
