package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/example/storefront/internal/catalog"
)

// MockCatalogStore is an in-memory CatalogStore for testing
type MockCatalogStore struct {
	mu         sync.RWMutex
	products   map[string]catalog.Product
	categories map[string]catalog.Category
	brands     map[string]catalog.Brand
	tags       map[string]catalog.Tag
	banners    map[string]catalog.Banner

	// For tracking calls in tests
	DecrementCalls []DecrementCall
	GetProductErr  error
	DecrementErr   error
}

// DecrementCall records parameters passed to DecrementStock
type DecrementCall struct {
	ProductID string
	Qty       int
}

// NewMockCatalogStore creates a new MockCatalogStore
func NewMockCatalogStore() *MockCatalogStore {
	return &MockCatalogStore{
		products:   make(map[string]catalog.Product),
		categories: make(map[string]catalog.Category),
		brands:     make(map[string]catalog.Brand),
		tags:       make(map[string]catalog.Tag),
		banners:    make(map[string]catalog.Banner),
	}
}

// Seed inserts products without going through CreateProduct
func (m *MockCatalogStore) Seed(products ...catalog.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range products {
		m.products[p.ID] = p
	}
}

// Stock returns the current stock for a product
func (m *MockCatalogStore) Stock(productID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.products[productID].Stock
}

func (m *MockCatalogStore) ListProducts(ctx context.Context, f catalog.Filter) ([]catalog.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	f.Normalize()
	out := make([]catalog.Product, 0, len(m.products))
	for _, p := range m.products {
		if f.InStockOnly && p.Stock <= 0 {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockCatalogStore) GetProduct(ctx context.Context, id string) (*catalog.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.GetProductErr != nil {
		return nil, m.GetProductErr
	}
	p, ok := m.products[id]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	return &p, nil
}

func (m *MockCatalogStore) ListInStock(ctx context.Context) ([]catalog.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]catalog.Product, 0, len(m.products))
	for _, p := range m.products {
		if p.Stock > 0 {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockCatalogStore) CreateProduct(ctx context.Context, p *catalog.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[p.ID] = *p
	return nil
}

func (m *MockCatalogStore) UpdateProduct(ctx context.Context, p *catalog.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[p.ID]; !ok {
		return catalog.ErrProductNotFound
	}
	m.products[p.ID] = *p
	return nil
}

func (m *MockCatalogStore) DeleteProduct(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return catalog.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *MockCatalogStore) DecrementStock(ctx context.Context, productID string, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.DecrementCalls = append(m.DecrementCalls, DecrementCall{ProductID: productID, Qty: qty})
	if m.DecrementErr != nil {
		return m.DecrementErr
	}

	p, ok := m.products[productID]
	if !ok {
		return catalog.ErrProductNotFound
	}
	p.Stock -= qty
	if p.Stock < 0 {
		p.Stock = 0
	}
	m.products[productID] = p
	return nil
}

func (m *MockCatalogStore) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]catalog.Category, 0, len(m.categories))
	for _, c := range m.categories {
		out = append(out, c)
	}
	return out, nil
}

func (m *MockCatalogStore) CreateCategory(ctx context.Context, c *catalog.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.categories[c.ID] = *c
	return nil
}

func (m *MockCatalogStore) UpdateCategory(ctx context.Context, c *catalog.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.categories[c.ID]; !ok {
		return catalog.ErrCategoryNotFound
	}
	m.categories[c.ID] = *c
	return nil
}

func (m *MockCatalogStore) DeleteCategory(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.categories[id]; !ok {
		return catalog.ErrCategoryNotFound
	}
	delete(m.categories, id)
	return nil
}

func (m *MockCatalogStore) ListBrands(ctx context.Context) ([]catalog.Brand, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]catalog.Brand, 0, len(m.brands))
	for _, b := range m.brands {
		out = append(out, b)
	}
	return out, nil
}

func (m *MockCatalogStore) CreateBrand(ctx context.Context, b *catalog.Brand) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.brands[b.ID] = *b
	return nil
}

func (m *MockCatalogStore) DeleteBrand(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.brands[id]; !ok {
		return catalog.ErrBrandNotFound
	}
	delete(m.brands, id)
	return nil
}

func (m *MockCatalogStore) ListTags(ctx context.Context) ([]catalog.Tag, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]catalog.Tag, 0, len(m.tags))
	for _, t := range m.tags {
		out = append(out, t)
	}
	return out, nil
}

func (m *MockCatalogStore) CreateTag(ctx context.Context, t *catalog.Tag) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tags[t.ID] = *t
	return nil
}

func (m *MockCatalogStore) DeleteTag(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tags, id)
	return nil
}

func (m *MockCatalogStore) ListBanners(ctx context.Context, activeOnly bool) ([]catalog.Banner, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]catalog.Banner, 0, len(m.banners))
	for _, b := range m.banners {
		if activeOnly && !b.Active {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (m *MockCatalogStore) CreateBanner(ctx context.Context, b *catalog.Banner) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.banners[b.ID] = *b
	return nil
}

func (m *MockCatalogStore) UpdateBanner(ctx context.Context, b *catalog.Banner) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.banners[b.ID] = *b
	return nil
}

func (m *MockCatalogStore) DeleteBanner(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.banners, id)
	return nil
}
