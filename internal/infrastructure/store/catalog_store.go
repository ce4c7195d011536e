package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/example/storefront/internal/catalog"
	"github.com/lib/pq"
)

// PostgresCatalogStore implements CatalogStore on PostgreSQL.
type PostgresCatalogStore struct {
	db *sql.DB
}

func NewPostgresCatalogStore(db *sql.DB) *PostgresCatalogStore {
	return &PostgresCatalogStore{db: db}
}

const productColumns = `
	p.id, p.name, p.description, p.price, p.stock,
	COALESCE(p.category_id, ''), COALESCE(c.name, ''),
	COALESCE(p.brand_id, ''), COALESCE(b.name, ''),
	p.images, p.created_at, p.updated_at,
	COALESCE(array_agg(t.name) FILTER (WHERE t.name IS NOT NULL), '{}')`

const productJoins = `
	FROM products p
	LEFT JOIN categories c ON c.id = p.category_id
	LEFT JOIN brands b ON b.id = p.brand_id
	LEFT JOIN product_tags pt ON pt.product_id = p.id
	LEFT JOIN tags t ON t.id = pt.tag_id`

func scanProduct(row interface{ Scan(...any) error }) (*catalog.Product, error) {
	var p catalog.Product
	var images []byte
	var tags pq.StringArray
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock,
		&p.CategoryID, &p.Category, &p.BrandID, &p.Brand,
		&images, &p.CreatedAt, &p.UpdatedAt, &tags)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(images, &p.Images); err != nil {
		p.Images = nil
	}
	p.Tags = []string(tags)
	return &p, nil
}

func (s *PostgresCatalogStore) ListProducts(ctx context.Context, f catalog.Filter) ([]catalog.Product, error) {
	f.Normalize()

	query := `SELECT ` + productColumns + productJoins + ` WHERE 1=1`
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.CategorySlug != "" {
		query += ` AND c.slug = ` + arg(f.CategorySlug)
	}
	if f.BrandSlug != "" {
		query += ` AND b.slug = ` + arg(f.BrandSlug)
	}
	if f.Query != "" {
		p := arg("%" + f.Query + "%")
		query += ` AND (p.name ILIKE ` + p + ` OR p.description ILIKE ` + p + `)`
	}
	if f.MinPrice > 0 {
		query += ` AND p.price >= ` + arg(f.MinPrice)
	}
	if f.MaxPrice > 0 {
		query += ` AND p.price <= ` + arg(f.MaxPrice)
	}
	if f.InStockOnly {
		query += ` AND p.stock > 0`
	}

	query += ` GROUP BY p.id, c.name, b.name`

	switch f.Sort {
	case catalog.SortPriceAsc:
		query += ` ORDER BY p.price ASC`
	case catalog.SortPriceDesc:
		query += ` ORDER BY p.price DESC`
	default:
		query += ` ORDER BY p.created_at DESC`
	}
	query += ` LIMIT ` + arg(f.Limit) + ` OFFSET ` + arg(f.Offset())

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []catalog.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func (s *PostgresCatalogStore) GetProduct(ctx context.Context, id string) (*catalog.Product, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+productColumns+productJoins+` WHERE p.id = $1 GROUP BY p.id, c.name, b.name`, id)
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, catalog.ErrProductNotFound
	}
	return p, err
}

func (s *PostgresCatalogStore) ListInStock(ctx context.Context) ([]catalog.Product, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+productColumns+productJoins+` WHERE p.stock > 0 GROUP BY p.id, c.name, b.name ORDER BY p.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []catalog.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func (s *PostgresCatalogStore) CreateProduct(ctx context.Context, p *catalog.Product) error {
	images, _ := json.Marshal(p.Images)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO products (id, name, description, price, stock, category_id, brand_id, images, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), $8, $9, $10)`,
		p.ID, p.Name, p.Description, p.Price, p.Stock, p.CategoryID, p.BrandID, images, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return err
	}
	return s.setProductTags(ctx, p.ID, p.Tags)
}

func (s *PostgresCatalogStore) UpdateProduct(ctx context.Context, p *catalog.Product) error {
	images, _ := json.Marshal(p.Images)
	res, err := s.db.ExecContext(ctx,
		`UPDATE products SET name = $2, description = $3, price = $4, stock = $5,
		 category_id = NULLIF($6, ''), brand_id = NULLIF($7, ''), images = $8, updated_at = $9
		 WHERE id = $1`,
		p.ID, p.Name, p.Description, p.Price, p.Stock, p.CategoryID, p.BrandID, images, time.Now())
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return catalog.ErrProductNotFound
	}
	return s.setProductTags(ctx, p.ID, p.Tags)
}

func (s *PostgresCatalogStore) setProductTags(ctx context.Context, productID string, tags []string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM product_tags WHERE product_id = $1`, productID); err != nil {
		return err
	}
	for _, name := range tags {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO product_tags (product_id, tag_id)
			 SELECT $1, id FROM tags WHERE name = $2
			 ON CONFLICT DO NOTHING`, productID, name)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *PostgresCatalogStore) DeleteProduct(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return catalog.ErrProductNotFound
	}
	return nil
}

// DecrementStock subtracts qty from a product's stock in a single statement,
// clamped at zero so stock can never go negative.
func (s *PostgresCatalogStore) DecrementStock(ctx context.Context, productID string, qty int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE products SET stock = GREATEST(stock - $2, 0), updated_at = now() WHERE id = $1`,
		productID, qty)
	return err
}

// Categories

func (s *PostgresCatalogStore) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, slug, description, created_at FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []catalog.Category
	for rows.Next() {
		var c catalog.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.CreatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (s *PostgresCatalogStore) CreateCategory(ctx context.Context, c *catalog.Category) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (id, name, slug, description, created_at) VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.Name, c.Slug, c.Description, c.CreatedAt)
	return err
}

func (s *PostgresCatalogStore) UpdateCategory(ctx context.Context, c *catalog.Category) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE categories SET name = $2, slug = $3, description = $4 WHERE id = $1`,
		c.ID, c.Name, c.Slug, c.Description)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return catalog.ErrCategoryNotFound
	}
	return nil
}

func (s *PostgresCatalogStore) DeleteCategory(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return catalog.ErrCategoryNotFound
	}
	return nil
}

// Brands

func (s *PostgresCatalogStore) ListBrands(ctx context.Context) ([]catalog.Brand, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, slug, created_at FROM brands ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var brands []catalog.Brand
	for rows.Next() {
		var b catalog.Brand
		if err := rows.Scan(&b.ID, &b.Name, &b.Slug, &b.CreatedAt); err != nil {
			return nil, err
		}
		brands = append(brands, b)
	}
	return brands, rows.Err()
}

func (s *PostgresCatalogStore) CreateBrand(ctx context.Context, b *catalog.Brand) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO brands (id, name, slug, created_at) VALUES ($1, $2, $3, $4)`,
		b.ID, b.Name, b.Slug, b.CreatedAt)
	return err
}

func (s *PostgresCatalogStore) DeleteBrand(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM brands WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return catalog.ErrBrandNotFound
	}
	return nil
}

// Tags

func (s *PostgresCatalogStore) ListTags(ctx context.Context) ([]catalog.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM tags ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []catalog.Tag
	for rows.Next() {
		var t catalog.Tag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

func (s *PostgresCatalogStore) CreateTag(ctx context.Context, t *catalog.Tag) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO tags (id, name) VALUES ($1, $2)`, t.ID, t.Name)
	return err
}

func (s *PostgresCatalogStore) DeleteTag(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM tags WHERE id = $1`, id)
	return err
}

// Banners

func (s *PostgresCatalogStore) ListBanners(ctx context.Context, activeOnly bool) ([]catalog.Banner, error) {
	query := `SELECT id, title, image_url, link_url, active, sort_order, created_at FROM banners`
	if activeOnly {
		query += ` WHERE active`
	}
	query += ` ORDER BY sort_order ASC, created_at DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var banners []catalog.Banner
	for rows.Next() {
		var b catalog.Banner
		if err := rows.Scan(&b.ID, &b.Title, &b.ImageURL, &b.LinkURL, &b.Active, &b.SortOrder, &b.CreatedAt); err != nil {
			return nil, err
		}
		banners = append(banners, b)
	}
	return banners, rows.Err()
}

func (s *PostgresCatalogStore) CreateBanner(ctx context.Context, b *catalog.Banner) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO banners (id, title, image_url, link_url, active, sort_order, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		b.ID, b.Title, b.ImageURL, b.LinkURL, b.Active, b.SortOrder, b.CreatedAt)
	return err
}

func (s *PostgresCatalogStore) UpdateBanner(ctx context.Context, b *catalog.Banner) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE banners SET title = $2, image_url = $3, link_url = $4, active = $5, sort_order = $6 WHERE id = $1`,
		b.ID, b.Title, b.ImageURL, b.LinkURL, b.Active, b.SortOrder)
	return err
}

func (s *PostgresCatalogStore) DeleteBanner(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM banners WHERE id = $1`, id)
	return err
}
