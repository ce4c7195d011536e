package order

import (
	"errors"
	"fmt"
	"math"
	"time"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrEmptyOrder      = errors.New("order must have at least one item")
	ErrInvalidStatus   = errors.New("invalid order status transition")
	ErrOrderPaid       = errors.New("order has already been paid")
	ErrOrderCancelled  = errors.New("order is cancelled")
	ErrOrderNotPending = errors.New("order is no longer pending")
	ErrMissingEmail    = errors.New("contact email is required")
	ErrMissingAddress  = errors.New("shipping address is incomplete")
)

// validTransitions defines the allowed status moves. Shipped orders can only
// be delivered; delivered and cancelled are terminal.
var validTransitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

// CanTransitionTo checks whether the order may move to the target status.
func (o *Order) CanTransitionTo(target Status) bool {
	allowed, exists := validTransitions[o.Status]
	if !exists {
		return false
	}
	for _, s := range allowed {
		if s == target {
			return true
		}
	}
	return false
}

// Transition is the single authorized way to change an order's status.
// The payment verifier's stock-decrement guard builds on its precondition:
// only a pending order can become processing.
func (o *Order) Transition(target Status) error {
	if !o.CanTransitionTo(target) {
		return o.transitionError(target)
	}
	o.Status = target
	o.UpdatedAt = time.Now()
	return nil
}

func (o *Order) transitionError(target Status) error {
	switch {
	case o.Status == StatusCancelled:
		return ErrOrderCancelled
	case target == StatusProcessing && o.Status != StatusPending:
		return ErrOrderPaid
	default:
		return fmt.Errorf("%w: cannot transition from %s to %s", ErrInvalidStatus, o.Status, target)
	}
}

// ShippingAddress is the structured delivery destination captured at checkout.
type ShippingAddress struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

// Validate checks the fields required before an order can be created.
func (a *ShippingAddress) Validate() error {
	if a.Name == "" || a.Address == "" || a.City == "" || a.Country == "" {
		return ErrMissingAddress
	}
	return nil
}

// Item snapshots a product at order time. Price is the unit price then,
// decoupled from later catalog changes.
type Item struct {
	OrderID   string  `json:"order_id"`
	ProductID string  `json:"product_id"`
	Name      string  `json:"name,omitempty"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// Order is a checkout submission. UserID is empty for guest checkout;
// Email is always set. PaymentRef is nil until a gateway transaction has
// been initialized for the order.
type Order struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id,omitempty"`
	Email      string          `json:"email"`
	Items      []Item          `json:"items"`
	Total      float64         `json:"total"`
	Status     Status          `json:"status"`
	Shipping   ShippingAddress `json:"shipping"`
	PaymentRef string          `json:"payment_ref,omitempty"`
	PaidAt     *time.Time      `json:"paid_at,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// ComputeTotal sums price × quantity over the items.
func ComputeTotal(items []Item) float64 {
	var total float64
	for _, item := range items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// AmountTolerance absorbs rounding drift when reconciling the gateway's
// reported amount against the stored total.
const AmountTolerance = 0.01

// AmountsMatch reports whether a gateway-reported amount agrees with the
// stored total within tolerance.
func AmountsMatch(stored, reported float64) bool {
	return math.Abs(stored-reported) <= AmountTolerance
}
