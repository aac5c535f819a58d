package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to OrderStatus
		ok       bool
	}{
		{OrderStatusPending, OrderStatusPaid, true},
		{OrderStatusPending, OrderStatusFailedAttempt, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusPending, OrderStatusRejected, false},
		{OrderStatusPendingVerification, OrderStatusPaid, true},
		{OrderStatusPendingVerification, OrderStatusRejected, true},
		{OrderStatusPaid, OrderStatusProcessing, true},
		{OrderStatusPaid, OrderStatusRefunded, true},
		{OrderStatusProcessing, OrderStatusShipped, true},
		{OrderStatusShipped, OrderStatusDelivered, true},

		// once shipped, cancellation is disallowed
		{OrderStatusShipped, OrderStatusCancelled, false},
		{OrderStatusDelivered, OrderStatusCancelled, false},

		// refund only after payment
		{OrderStatusPending, OrderStatusRefunded, false},
		{OrderStatusPendingVerification, OrderStatusRefunded, false},
		{OrderStatusDelivered, OrderStatusRefunded, true},

		// terminal states go nowhere
		{OrderStatusCancelled, OrderStatusPaid, false},
		{OrderStatusRejected, OrderStatusPaid, false},
		{OrderStatusRefunded, OrderStatusPaid, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.ok, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestPaymentMethodInitialStatus(t *testing.T) {
	assert.Equal(t, OrderStatusPending, PaymentMethodStripe.InitialStatus())
	assert.Equal(t, OrderStatusPendingVerification, PaymentMethodYape.InitialStatus())
	assert.Equal(t, OrderStatusPendingVerification, PaymentMethodPlin.InitialStatus())

	assert.False(t, PaymentMethodStripe.RequiresTransactionCode())
	assert.True(t, PaymentMethodYape.RequiresTransactionCode())
	assert.True(t, PaymentMethodPlin.RequiresTransactionCode())
}
