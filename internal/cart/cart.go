package cart

import (
	"errors"
	"sort"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrEmptyCart       = errors.New("cart is empty")
)

const bucket = "carts"

// KV is the injected persistence boundary for cart state. Carts are
// client-held: nothing here is shared between sessions.
type KV interface {
	Get(bucket, key string) (any, bool)
	Set(bucket, key string, value any)
	Delete(bucket, key string)
}

// Cart is a quantity map keyed by product id.
type Cart struct {
	Lines map[string]int `json:"lines"`
}

// ProductIDs returns the carted product ids in stable order.
func (c Cart) ProductIDs() []string {
	ids := make([]string, 0, len(c.Lines))
	for id := range c.Lines {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Total derives the cart total from live prices. Unknown products
// contribute nothing.
func (c Cart) Total(price func(productID string) (float64, bool)) float64 {
	var total float64
	for id, qty := range c.Lines {
		if p, ok := price(id); ok {
			total += p * float64(qty)
		}
	}
	return total
}

func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Store holds one cart per session key on top of the KV boundary.
type Store struct {
	kv KV
}

func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

// Get returns the session's cart, or an empty one.
func (s *Store) Get(sessionID string) Cart {
	if v, ok := s.kv.Get(bucket, sessionID); ok {
		if c, ok := v.(Cart); ok {
			return c
		}
	}
	return Cart{Lines: map[string]int{}}
}

// Add increases the quantity of a product, creating the line if needed.
func (s *Store) Add(sessionID, productID string, qty int) (Cart, error) {
	if qty < 1 {
		return Cart{}, ErrInvalidQuantity
	}
	c := s.Get(sessionID)
	c.Lines[productID] += qty
	s.kv.Set(bucket, sessionID, c)
	return c, nil
}

// Update sets a line's quantity outright. Zero or negative removes the line.
func (s *Store) Update(sessionID, productID string, qty int) Cart {
	c := s.Get(sessionID)
	if qty < 1 {
		delete(c.Lines, productID)
	} else {
		c.Lines[productID] = qty
	}
	s.kv.Set(bucket, sessionID, c)
	return c
}

// Remove drops a line from the cart.
func (s *Store) Remove(sessionID, productID string) Cart {
	c := s.Get(sessionID)
	delete(c.Lines, productID)
	s.kv.Set(bucket, sessionID, c)
	return c
}

// Clear empties the session's cart.
func (s *Store) Clear(sessionID string) {
	s.kv.Delete(bucket, sessionID)
}
