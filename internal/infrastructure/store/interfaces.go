package store

import (
	"context"
	"time"

	"github.com/example/storefront/internal/catalog"
	"github.com/example/storefront/internal/order"
	"github.com/example/storefront/internal/user"
)

// CatalogStore persists products, categories, brands, tags and banners.
type CatalogStore interface {
	ListProducts(ctx context.Context, f catalog.Filter) ([]catalog.Product, error)
	GetProduct(ctx context.Context, id string) (*catalog.Product, error)
	// ListInStock returns every product with stock > 0, with category,
	// brand and tag names joined in.
	ListInStock(ctx context.Context) ([]catalog.Product, error)
	CreateProduct(ctx context.Context, p *catalog.Product) error
	UpdateProduct(ctx context.Context, p *catalog.Product) error
	DeleteProduct(ctx context.Context, id string) error
	// DecrementStock subtracts qty from a product's stock, clamped at zero.
	DecrementStock(ctx context.Context, productID string, qty int) error

	ListCategories(ctx context.Context) ([]catalog.Category, error)
	CreateCategory(ctx context.Context, c *catalog.Category) error
	UpdateCategory(ctx context.Context, c *catalog.Category) error
	DeleteCategory(ctx context.Context, id string) error

	ListBrands(ctx context.Context) ([]catalog.Brand, error)
	CreateBrand(ctx context.Context, b *catalog.Brand) error
	DeleteBrand(ctx context.Context, id string) error

	ListTags(ctx context.Context) ([]catalog.Tag, error)
	CreateTag(ctx context.Context, t *catalog.Tag) error
	DeleteTag(ctx context.Context, id string) error

	ListBanners(ctx context.Context, activeOnly bool) ([]catalog.Banner, error)
	CreateBanner(ctx context.Context, b *catalog.Banner) error
	UpdateBanner(ctx context.Context, b *catalog.Banner) error
	DeleteBanner(ctx context.Context, id string) error
}

// OrderStore persists orders and their line items.
type OrderStore interface {
	CreateOrder(ctx context.Context, o *order.Order) error
	// UpdateCheckoutFields rewrites email, total and shipping address on a
	// resumed pending order.
	UpdateCheckoutFields(ctx context.Context, o *order.Order) error
	GetOrder(ctx context.Context, id string) (*order.Order, error)
	GetOrderByPaymentRef(ctx context.Context, ref string) (*order.Order, error)
	ListOrdersByUser(ctx context.Context, userID string) ([]order.Order, error)
	ListAllOrders(ctx context.Context) ([]order.Order, error)

	CreateItems(ctx context.Context, items []order.Item) error
	GetItems(ctx context.Context, orderID string) ([]order.Item, error)
	CountItems(ctx context.Context, orderID string) (int, error)

	SetPaymentRef(ctx context.Context, orderID, ref string) error
	// MarkPaid advances a pending order to processing in a single
	// conditional update. It reports whether the row was actually claimed,
	// which is the idempotency gate for the stock decrement: a second
	// verification of the same order finds no pending row and gets false.
	MarkPaid(ctx context.Context, orderID, ref string, paidAt time.Time) (bool, error)
	UpdateStatus(ctx context.Context, orderID string, status order.Status) error
}

// UserStore persists registered accounts.
type UserStore interface {
	CreateUser(ctx context.Context, u *user.User) error
	GetUser(ctx context.Context, id string) (*user.User, error)
	GetUserByEmail(ctx context.Context, email string) (*user.User, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}
