package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusTransitions(t *testing.T) {
	cases := []struct {
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{OrderDraft, OrderPending, true},
		{OrderDraft, OrderCancelled, true},
		{OrderDraft, OrderOrdered, false},
		{OrderPending, OrderOrdered, true},
		{OrderPending, OrderCancelled, true},
		{OrderPending, OrderReceived, false},
		{OrderOrdered, OrderPartial, true},
		{OrderOrdered, OrderReceived, true},
		{OrderOrdered, OrderCancelled, false},
		{OrderPartial, OrderPartial, true},
		{OrderPartial, OrderReceived, true},
		{OrderPartial, OrderCancelled, false},
		{OrderReceived, OrderPending, false},
		{OrderCancelled, OrderPending, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestOrderReceiptPredicates(t *testing.T) {
	order := PurchaseOrder{Items: []PurchaseOrderItem{
		{QuantityOrdered: 10, QuantityReceived: 0},
		{QuantityOrdered: 5, QuantityReceived: 0},
	}}
	assert.False(t, order.AnyReceived())
	assert.False(t, order.FullyReceived())

	order.Items[0].QuantityReceived = 10
	assert.True(t, order.AnyReceived())
	assert.False(t, order.FullyReceived())
	assert.Equal(t, 5, order.Items[1].Remaining())

	order.Items[1].QuantityReceived = 5
	assert.True(t, order.FullyReceived())
}
