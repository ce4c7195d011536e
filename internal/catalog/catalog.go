package catalog

import (
	"errors"
	"time"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrBrandNotFound    = errors.New("brand not found")
	ErrInvalidName      = errors.New("name is required")
	ErrInvalidPrice     = errors.New("price must be greater than zero")
	ErrInvalidStock     = errors.New("stock cannot be negative")
)

// Product is a catalog item. Stock is never negative; it is decremented
// only after a payment has been confirmed for an order.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	CategoryID  string    `json:"category_id"`
	Category    string    `json:"category,omitempty"`
	BrandID     string    `json:"brand_id,omitempty"`
	Brand       string    `json:"brand,omitempty"`
	Images      []string  `json:"images"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type Brand struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Banner is a storefront hero/promo image managed from the back-office.
type Banner struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	ImageURL  string    `json:"image_url"`
	LinkURL   string    `json:"link_url,omitempty"`
	Active    bool      `json:"active"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
}

// Sort orders accepted by product listing.
const (
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
)

// Filter narrows a product listing. Zero values mean "no constraint".
type Filter struct {
	CategorySlug string
	BrandSlug    string
	Query        string
	MinPrice     float64
	MaxPrice     float64
	InStockOnly  bool
	Sort         string
	Page         int
	Limit        int
}

// Normalize clamps paging and defaults the sort order.
func (f *Filter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
	switch f.Sort {
	case SortNewest, SortPriceAsc, SortPriceDesc:
	default:
		f.Sort = SortNewest
	}
}

// Offset returns the row offset for the current page.
func (f *Filter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// ValidateProduct checks the fields an admin must supply.
func ValidateProduct(p *Product) error {
	if p.Name == "" {
		return ErrInvalidName
	}
	if p.Price <= 0 {
		return ErrInvalidPrice
	}
	if p.Stock < 0 {
		return ErrInvalidStock
	}
	return nil
}
