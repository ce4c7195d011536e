package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/example/storefront/internal/events"
	"github.com/example/storefront/internal/infrastructure/kafka"
	"github.com/example/storefront/internal/infrastructure/store"
	"github.com/example/storefront/internal/order"
	"github.com/example/storefront/internal/payment"
	"github.com/google/uuid"
)

var (
	ErrAmountMismatch = errors.New("gateway amount does not match order total")
	// ErrPaymentIncomplete means the gateway reported a non-success status.
	// The order stays pending so the payment can be retried.
	ErrPaymentIncomplete = errors.New("payment not completed")
	ErrNotOwner          = errors.New("order belongs to another user")
)

// Gateway is the slice of the payment client the checkout flow needs.
type Gateway interface {
	Initialize(ctx context.Context, req payment.InitializeRequest) (*payment.InitializeResult, error)
	Verify(ctx context.Context, reference string) (*payment.VerifyResult, error)
}

// Line is one cart line as submitted by the client. Prices are never
// trusted from the client; they are re-read from the catalog.
type Line struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Input is a checkout submission. ResumeOrderID re-enters an existing
// pending order instead of creating a new one.
type Input struct {
	ResumeOrderID string
	UserID        string
	Email         string
	Shipping      order.ShippingAddress
	Lines         []Line
}

// Result hands the client everything it needs to open the gateway's hosted
// payment UI.
type Result struct {
	Order            *order.Order `json:"order"`
	AuthorizationURL string       `json:"authorization_url"`
	AccessCode       string       `json:"access_code"`
	Reference        string       `json:"reference"`
}

// Service orchestrates checkout and payment verification.
type Service struct {
	orders      store.OrderStore
	catalog     store.CatalogStore
	gateway     Gateway
	publisher   kafka.Publisher
	callbackURL string
}

func NewService(orders store.OrderStore, catalog store.CatalogStore, gateway Gateway, publisher kafka.Publisher, callbackURL string) *Service {
	return &Service{
		orders:      orders,
		catalog:     catalog,
		gateway:     gateway,
		publisher:   publisher,
		callbackURL: callbackURL,
	}
}

// Checkout resolves or creates a pending order for the submitted cart,
// initializes a gateway transaction and returns the hosted-payment handle.
// Any failure after the order exists leaves it pending and resumable.
func (s *Service) Checkout(ctx context.Context, in Input) (*Result, error) {
	if len(in.Lines) == 0 {
		return nil, order.ErrEmptyOrder
	}
	if in.Email == "" {
		return nil, order.ErrMissingEmail
	}
	if err := in.Shipping.Validate(); err != nil {
		return nil, err
	}

	items, total, err := s.priceLines(ctx, in.Lines)
	if err != nil {
		return nil, err
	}

	o, created, err := s.resolveOrder(ctx, in, items, total)
	if err != nil {
		return nil, err
	}

	if err := s.ensureItems(ctx, o.ID, created, items); err != nil {
		return nil, err
	}

	reference := payment.NewReference(o.ID)
	initResult, err := s.gateway.Initialize(ctx, payment.InitializeRequest{
		Email:       o.Email,
		Amount:      payment.ToMinorUnits(o.Total),
		Reference:   reference,
		CallbackURL: s.callbackURL,
		Metadata:    payment.Metadata{OrderID: o.ID},
	})
	if err != nil {
		return nil, err
	}

	// Persist the reference before the client ever sees the payment UI, so
	// verification can find the order even if the flow is interrupted.
	if err := s.orders.SetPaymentRef(ctx, o.ID, reference); err != nil {
		return nil, err
	}
	o.PaymentRef = reference

	return &Result{
		Order:            o,
		AuthorizationURL: initResult.AuthorizationURL,
		AccessCode:       initResult.AccessCode,
		Reference:        reference,
	}, nil
}

// priceLines re-reads every carted product and snapshots its current price.
func (s *Service) priceLines(ctx context.Context, lines []Line) ([]order.Item, float64, error) {
	items := make([]order.Item, 0, len(lines))
	for _, line := range lines {
		if line.Quantity < 1 {
			return nil, 0, fmt.Errorf("%w: quantity for %s", order.ErrEmptyOrder, line.ProductID)
		}
		p, err := s.catalog.GetProduct(ctx, line.ProductID)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, order.Item{
			ProductID: p.ID,
			Name:      p.Name,
			Quantity:  line.Quantity,
			Price:     p.Price,
		})
	}
	return items, order.ComputeTotal(items), nil
}

// resolveOrder updates a resumed pending order in place, or creates a new
// one. A resumed order that is no longer pending (cancelled included) is not
// reused; checkout starts over with a fresh order.
func (s *Service) resolveOrder(ctx context.Context, in Input, items []order.Item, total float64) (*order.Order, bool, error) {
	if in.ResumeOrderID != "" {
		existing, err := s.orders.GetOrder(ctx, in.ResumeOrderID)
		if err == nil {
			if existing.UserID != "" && existing.UserID != in.UserID {
				return nil, false, ErrNotOwner
			}
			if existing.Status == order.StatusPending {
				existing.Email = in.Email
				existing.Shipping = in.Shipping
				existing.Total = total
				if err := s.orders.UpdateCheckoutFields(ctx, existing); err != nil {
					return nil, false, err
				}
				existing.Items = items
				return existing, false, nil
			}
		} else if err != order.ErrOrderNotFound {
			return nil, false, err
		}
	}

	now := time.Now()
	o := &order.Order{
		ID:        uuid.New().String(),
		UserID:    in.UserID,
		Email:     in.Email,
		Items:     items,
		Total:     total,
		Status:    order.StatusPending,
		Shipping:  in.Shipping,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.orders.CreateOrder(ctx, o); err != nil {
		return nil, false, err
	}
	return o, true, nil
}

// ensureItems inserts line items once. On resume, items are only backfilled
// if none exist yet, which guards against double-insertion.
func (s *Service) ensureItems(ctx context.Context, orderID string, created bool, items []order.Item) error {
	if !created {
		n, err := s.orders.CountItems(ctx, orderID)
		if err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
	}
	for i := range items {
		items[i].OrderID = orderID
	}
	return s.orders.CreateItems(ctx, items)
}

// Verify reconciles the gateway's view of a transaction with the stored
// order and performs the one-time stock decrement. Stock is decremented at
// most once per order no matter how many times Verify is invoked for the
// same reference: the conditional pending→processing update is the gate.
func (s *Service) Verify(ctx context.Context, reference string) (*order.Order, error) {
	result, err := s.gateway.Verify(ctx, reference)
	if err != nil {
		return nil, err
	}

	o, err := s.resolveVerifiedOrder(ctx, result.Metadata.OrderID, reference)
	if err != nil {
		return nil, err
	}

	if result.Status != payment.StatusSuccess {
		// Keep the order pending and remember the reference so the user
		// can retry payment against the same order.
		if o.PaymentRef == "" {
			if err := s.orders.SetPaymentRef(ctx, o.ID, reference); err != nil {
				log.Printf("[Checkout] Failed to store reference %s on order %s: %v", reference, o.ID, err)
			}
		}
		return o, fmt.Errorf("%w: gateway status %q", ErrPaymentIncomplete, result.Status)
	}

	reported := payment.FromMinorUnits(result.Amount)
	if !order.AmountsMatch(o.Total, reported) {
		return nil, fmt.Errorf("%w: order total %.2f, gateway reported %.2f",
			ErrAmountMismatch, o.Total, reported)
	}

	paidAt := time.Now()
	if result.PaidAt != nil {
		paidAt = *result.PaidAt
	}

	claimed, err := s.orders.MarkPaid(ctx, o.ID, reference, paidAt)
	if err != nil {
		return nil, err
	}
	if claimed {
		s.decrementStock(ctx, o.ID)
		s.publishPaymentConfirmed(ctx, o, reference, paidAt)
	}

	return s.orders.GetOrder(ctx, o.ID)
}

// resolveVerifiedOrder prefers the order id echoed back in the gateway
// metadata and falls back to the stored payment reference.
func (s *Service) resolveVerifiedOrder(ctx context.Context, orderID, reference string) (*order.Order, error) {
	if orderID != "" {
		if o, err := s.orders.GetOrder(ctx, orderID); err == nil {
			return o, nil
		} else if err != order.ErrOrderNotFound {
			return nil, err
		}
	}
	return s.orders.GetOrderByPaymentRef(ctx, reference)
}

func (s *Service) decrementStock(ctx context.Context, orderID string) {
	items, err := s.orders.GetItems(ctx, orderID)
	if err != nil {
		log.Printf("[Checkout] Failed to load items for stock decrement, order %s: %v", orderID, err)
		return
	}
	for _, item := range items {
		if err := s.catalog.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			log.Printf("[Checkout] Failed to decrement stock for %s: %v", item.ProductID, err)
		}
	}
}

func (s *Service) publishPaymentConfirmed(ctx context.Context, o *order.Order, reference string, paidAt time.Time) {
	if s.publisher == nil {
		return
	}
	items, _ := s.orders.GetItems(ctx, o.ID)
	event, err := events.New(events.TypePaymentConfirmed, events.PaymentConfirmed{
		OrderID:   o.ID,
		Email:     o.Email,
		Reference: reference,
		Total:     o.Total,
		Items:     items,
		PaidAt:    paidAt,
	})
	if err != nil {
		log.Printf("[Checkout] Failed to build PaymentConfirmed event: %v", err)
		return
	}
	if err := s.publisher.Publish(ctx, o.ID, event); err != nil {
		log.Printf("[Checkout] Failed to publish PaymentConfirmed for order %s: %v", o.ID, err)
	}
}

// Cancel sets a pending or processing order to cancelled through the order
// state machine.
func (s *Service) Cancel(ctx context.Context, orderID, userID string) (*order.Order, error) {
	o, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != "" && o.UserID != userID {
		return nil, ErrNotOwner
	}
	if err := o.Transition(order.StatusCancelled); err != nil {
		return nil, err
	}
	if err := s.orders.UpdateStatus(ctx, o.ID, order.StatusCancelled); err != nil {
		return nil, err
	}
	return o, nil
}
