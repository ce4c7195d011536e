package order

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{StatusPending, StatusProcessing, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusShipped, false},
		{StatusPending, StatusDelivered, false},
		{StatusProcessing, StatusShipped, true},
		{StatusProcessing, StatusCancelled, true},
		{StatusProcessing, StatusDelivered, false},
		{StatusProcessing, StatusPending, false},
		{StatusShipped, StatusDelivered, true},
		{StatusShipped, StatusCancelled, false},
		{StatusShipped, StatusPending, false},
		{StatusDelivered, StatusShipped, false},
		{StatusDelivered, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusProcessing, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			o := &Order{Status: tt.from}
			assert.Equal(t, tt.allowed, o.CanTransitionTo(tt.to))
		})
	}
}

func TestTransition_Allowed(t *testing.T) {
	o := &Order{Status: StatusPending}

	err := o.Transition(StatusProcessing)

	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, o.Status)
	assert.False(t, o.UpdatedAt.IsZero())
}

func TestTransition_CancelledIsTerminal(t *testing.T) {
	o := &Order{Status: StatusCancelled}

	err := o.Transition(StatusProcessing)

	assert.ErrorIs(t, err, ErrOrderCancelled)
	assert.Equal(t, StatusCancelled, o.Status)
}

func TestTransition_AlreadyPaid(t *testing.T) {
	o := &Order{Status: StatusProcessing}

	err := o.Transition(StatusProcessing)

	assert.ErrorIs(t, err, ErrOrderPaid)
}

func TestTransition_InvalidMove(t *testing.T) {
	o := &Order{Status: StatusShipped}

	err := o.Transition(StatusCancelled)

	assert.ErrorIs(t, err, ErrInvalidStatus)
	assert.Equal(t, StatusShipped, o.Status)
}

func TestTransition_UnknownStatus(t *testing.T) {
	o := &Order{Status: Status("bogus")}

	assert.False(t, o.CanTransitionTo(StatusProcessing))
	assert.Error(t, o.Transition(StatusProcessing))
}

func TestShippingAddress_Validate(t *testing.T) {
	valid := ShippingAddress{
		Name:    "Ada Lovelace",
		Address: "12 Analytical Way",
		City:    "London",
		Country: "UK",
	}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name string
		addr ShippingAddress
	}{
		{"missing name", ShippingAddress{Address: "a", City: "b", Country: "c"}},
		{"missing address", ShippingAddress{Name: "a", City: "b", Country: "c"}},
		{"missing city", ShippingAddress{Name: "a", Address: "b", Country: "c"}},
		{"missing country", ShippingAddress{Name: "a", Address: "b", City: "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.addr.Validate(), ErrMissingAddress)
		})
	}
}

func TestComputeTotal(t *testing.T) {
	assert.Equal(t, 0.0, ComputeTotal(nil))

	total := ComputeTotal([]Item{
		{ProductID: "p1", Quantity: 2, Price: 499.99},
		{ProductID: "p2", Quantity: 1, Price: 120.50},
	})
	assert.InDelta(t, 1120.48, total, 0.001)
}

func TestAmountsMatch(t *testing.T) {
	assert.True(t, AmountsMatch(1500.00, 1500.00))
	assert.True(t, AmountsMatch(1500.00, 1500.009))
	assert.True(t, AmountsMatch(1500.00, 1499.99))

	// A shortfall past the tolerance is a mismatch: 1400 paid against a
	// 1500 order must never confirm.
	assert.False(t, AmountsMatch(1500.00, 1400.00))
	assert.False(t, AmountsMatch(1500.00, 1500.02))
}

func TestOrder_PaidAtRoundTrip(t *testing.T) {
	now := time.Now()
	o := Order{Status: StatusProcessing, PaidAt: &now}
	require.NotNil(t, o.PaidAt)
	assert.WithinDuration(t, now, *o.PaidAt, time.Second)
}
