package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/example/storefront/internal/order"
)

// MockOrderStore is an in-memory OrderStore for testing. MarkPaid keeps
// the conditional pending-to-processing semantics of the PostgreSQL
// implementation.
type MockOrderStore struct {
	mu     sync.RWMutex
	orders map[string]order.Order
	items  map[string][]order.Item

	// For tracking calls in tests
	MarkPaidCalls      []MarkPaidCall
	SetPaymentRefCalls []SetPaymentRefCall
	CreateOrderErr     error
	SetPaymentRefErr   error
	MarkPaidErr        error
}

// MarkPaidCall records parameters passed to MarkPaid
type MarkPaidCall struct {
	OrderID string
	Ref     string
}

// SetPaymentRefCall records parameters passed to SetPaymentRef
type SetPaymentRefCall struct {
	OrderID string
	Ref     string
}

// NewMockOrderStore creates a new MockOrderStore
func NewMockOrderStore() *MockOrderStore {
	return &MockOrderStore{
		orders: make(map[string]order.Order),
		items:  make(map[string][]order.Item),
	}
}

// Seed inserts an order and its items directly
func (m *MockOrderStore) Seed(o order.Order, items []order.Item) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[o.ID] = o
	m.items[o.ID] = items
}

func (m *MockOrderStore) CreateOrder(ctx context.Context, o *order.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateOrderErr != nil {
		return m.CreateOrderErr
	}
	m.orders[o.ID] = *o
	return nil
}

func (m *MockOrderStore) UpdateCheckoutFields(ctx context.Context, o *order.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.orders[o.ID]
	if !ok {
		return order.ErrOrderNotFound
	}
	if existing.Status != order.StatusPending {
		return order.ErrOrderNotPending
	}
	existing.Email = o.Email
	existing.Total = o.Total
	existing.Shipping = o.Shipping
	existing.UpdatedAt = time.Now()
	m.orders[o.ID] = existing
	return nil
}

func (m *MockOrderStore) GetOrder(ctx context.Context, id string) (*order.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	o, ok := m.orders[id]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	return &o, nil
}

func (m *MockOrderStore) GetOrderByPaymentRef(ctx context.Context, ref string) (*order.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, o := range m.orders {
		if o.PaymentRef == ref {
			o := o
			return &o, nil
		}
	}
	return nil, order.ErrOrderNotFound
}

func (m *MockOrderStore) ListOrdersByUser(ctx context.Context, userID string) ([]order.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []order.Order
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MockOrderStore) ListAllOrders(ctx context.Context) ([]order.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]order.Order, 0, len(m.orders))
	for _, o := range m.orders {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MockOrderStore) CreateItems(ctx context.Context, items []order.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range items {
		m.items[item.OrderID] = append(m.items[item.OrderID], item)
	}
	return nil
}

func (m *MockOrderStore) GetItems(ctx context.Context, orderID string) ([]order.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]order.Item(nil), m.items[orderID]...), nil
}

func (m *MockOrderStore) CountItems(ctx context.Context, orderID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items[orderID]), nil
}

func (m *MockOrderStore) SetPaymentRef(ctx context.Context, orderID, ref string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SetPaymentRefCalls = append(m.SetPaymentRefCalls, SetPaymentRefCall{OrderID: orderID, Ref: ref})
	if m.SetPaymentRefErr != nil {
		return m.SetPaymentRefErr
	}

	o, ok := m.orders[orderID]
	if !ok {
		return order.ErrOrderNotFound
	}
	o.PaymentRef = ref
	m.orders[orderID] = o
	return nil
}

func (m *MockOrderStore) MarkPaid(ctx context.Context, orderID, ref string, paidAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.MarkPaidCalls = append(m.MarkPaidCalls, MarkPaidCall{OrderID: orderID, Ref: ref})
	if m.MarkPaidErr != nil {
		return false, m.MarkPaidErr
	}

	o, ok := m.orders[orderID]
	if !ok || o.Status != order.StatusPending {
		return false, nil
	}
	o.Status = order.StatusProcessing
	o.PaymentRef = ref
	o.PaidAt = &paidAt
	o.UpdatedAt = time.Now()
	m.orders[orderID] = o
	return true, nil
}

func (m *MockOrderStore) UpdateStatus(ctx context.Context, orderID string, status order.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orders[orderID]
	if !ok {
		return order.ErrOrderNotFound
	}
	o.Status = status
	o.UpdatedAt = time.Now()
	m.orders[orderID] = o
	return nil
}
