package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/example/storefront/internal/catalog"
	"github.com/example/storefront/internal/infrastructure/store"
	"github.com/example/storefront/internal/order"
	"github.com/google/uuid"
)

// AdminHandlers is the back-office surface: catalog management, banner
// management and order fulfilment. Every route is behind RequireAdmin.
type AdminHandlers struct {
	catalog store.CatalogStore
	orders  store.OrderStore
}

func NewAdminHandlers(catalogStore store.CatalogStore, orders store.OrderStore) *AdminHandlers {
	return &AdminHandlers{catalog: catalogStore, orders: orders}
}

// ProductRequest is the admin create/update payload for a product.
type ProductRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Stock       int      `json:"stock"`
	CategoryID  string   `json:"category_id"`
	BrandID     string   `json:"brand_id,omitempty"`
	Images      []string `json:"images"`
	Tags        []string `json:"tags"`
}

func (req *ProductRequest) apply(p *catalog.Product) {
	p.Name = req.Name
	p.Description = req.Description
	p.Price = req.Price
	p.Stock = req.Stock
	p.CategoryID = req.CategoryID
	p.BrandID = req.BrandID
	p.Images = req.Images
	p.Tags = req.Tags
}

// CreateProduct creates a new product (admin only)
func (h *AdminHandlers) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	now := time.Now()
	p := &catalog.Product{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now}
	req.apply(p)

	if err := catalog.ValidateProduct(p); err != nil {
		respondJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.catalog.CreateProduct(r.Context(), p); err != nil {
		respondJSONError(w, "Failed to create product", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

// UpdateProduct updates an existing product (admin only)
func (h *AdminHandlers) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/admin/products/")

	p, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		respondJSONError(w, "Product not found", http.StatusNotFound)
		return
	}

	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	req.apply(p)
	p.UpdatedAt = time.Now()

	if err := catalog.ValidateProduct(p); err != nil {
		respondJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.catalog.UpdateProduct(r.Context(), p); err != nil {
		respondJSONError(w, "Failed to update product", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// DeleteProduct deletes a product (admin only)
func (h *AdminHandlers) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/admin/products/")

	if err := h.catalog.DeleteProduct(r.Context(), id); err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respondJSONError(w, "Product not found", http.StatusNotFound)
			return
		}
		respondJSONError(w, "Failed to delete product", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Product deleted"})
}

// CreateCategory creates a new category (admin only)
func (h *AdminHandlers) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Slug        string `json:"slug"`
		Description string `json:"description,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		respondJSONError(w, catalog.ErrInvalidName.Error(), http.StatusBadRequest)
		return
	}

	c := &catalog.Category{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Slug:        slugify(req.Slug, req.Name),
		Description: req.Description,
		CreatedAt:   time.Now(),
	}
	if err := h.catalog.CreateCategory(r.Context(), c); err != nil {
		respondJSONError(w, "Failed to create category", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusCreated, c)
}

// UpdateCategory updates an existing category (admin only)
func (h *AdminHandlers) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/admin/categories/")

	var req struct {
		Name        string `json:"name"`
		Slug        string `json:"slug"`
		Description string `json:"description,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	c := &catalog.Category{
		ID:          id,
		Name:        req.Name,
		Slug:        slugify(req.Slug, req.Name),
		Description: req.Description,
	}
	if err := h.catalog.UpdateCategory(r.Context(), c); err != nil {
		if errors.Is(err, catalog.ErrCategoryNotFound) {
			respondJSONError(w, "Category not found", http.StatusNotFound)
			return
		}
		respondJSONError(w, "Failed to update category", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Category updated"})
}

// DeleteCategory deletes a category (admin only)
func (h *AdminHandlers) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/admin/categories/")

	if err := h.catalog.DeleteCategory(r.Context(), id); err != nil {
		if errors.Is(err, catalog.ErrCategoryNotFound) {
			respondJSONError(w, "Category not found", http.StatusNotFound)
			return
		}
		respondJSONError(w, "Failed to delete category", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Category deleted"})
}

// CreateBrand creates a new brand (admin only)
func (h *AdminHandlers) CreateBrand(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
		Slug string `json:"slug"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		respondJSONError(w, catalog.ErrInvalidName.Error(), http.StatusBadRequest)
		return
	}

	b := &catalog.Brand{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Slug:      slugify(req.Slug, req.Name),
		CreatedAt: time.Now(),
	}
	if err := h.catalog.CreateBrand(r.Context(), b); err != nil {
		respondJSONError(w, "Failed to create brand", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusCreated, b)
}

// DeleteBrand deletes a brand (admin only)
func (h *AdminHandlers) DeleteBrand(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/admin/brands/")

	if err := h.catalog.DeleteBrand(r.Context(), id); err != nil {
		if errors.Is(err, catalog.ErrBrandNotFound) {
			respondJSONError(w, "Brand not found", http.StatusNotFound)
			return
		}
		respondJSONError(w, "Failed to delete brand", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Brand deleted"})
}

// ListTags returns all tags (admin only)
func (h *AdminHandlers) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.catalog.ListTags(r.Context())
	if err != nil {
		respondJSONError(w, "Failed to fetch tags", http.StatusInternalServerError)
		return
	}
	if tags == nil {
		tags = []catalog.Tag{}
	}
	respondJSON(w, http.StatusOK, tags)
}

// CreateTag creates a new tag (admin only)
func (h *AdminHandlers) CreateTag(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		respondJSONError(w, catalog.ErrInvalidName.Error(), http.StatusBadRequest)
		return
	}

	t := &catalog.Tag{ID: uuid.New().String(), Name: req.Name}
	if err := h.catalog.CreateTag(r.Context(), t); err != nil {
		respondJSONError(w, "Failed to create tag", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusCreated, t)
}

// DeleteTag deletes a tag (admin only)
func (h *AdminHandlers) DeleteTag(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/admin/tags/")

	if err := h.catalog.DeleteTag(r.Context(), id); err != nil {
		respondJSONError(w, "Failed to delete tag", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Tag deleted"})
}

// BannerRequest is the admin create/update payload for a banner.
type BannerRequest struct {
	Title     string `json:"title"`
	ImageURL  string `json:"image_url"`
	LinkURL   string `json:"link_url,omitempty"`
	Active    bool   `json:"active"`
	SortOrder int    `json:"sort_order"`
}

// ListBanners returns every banner, active or not (admin only)
func (h *AdminHandlers) ListBanners(w http.ResponseWriter, r *http.Request) {
	banners, err := h.catalog.ListBanners(r.Context(), false)
	if err != nil {
		respondJSONError(w, "Failed to fetch banners", http.StatusInternalServerError)
		return
	}
	if banners == nil {
		banners = []catalog.Banner{}
	}
	respondJSON(w, http.StatusOK, banners)
}

// CreateBanner creates a new banner (admin only)
func (h *AdminHandlers) CreateBanner(w http.ResponseWriter, r *http.Request) {
	var req BannerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Title == "" || req.ImageURL == "" {
		respondJSONError(w, "title and image_url are required", http.StatusBadRequest)
		return
	}

	b := &catalog.Banner{
		ID:        uuid.New().String(),
		Title:     req.Title,
		ImageURL:  req.ImageURL,
		LinkURL:   req.LinkURL,
		Active:    req.Active,
		SortOrder: req.SortOrder,
		CreatedAt: time.Now(),
	}
	if err := h.catalog.CreateBanner(r.Context(), b); err != nil {
		respondJSONError(w, "Failed to create banner", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusCreated, b)
}

// UpdateBanner updates an existing banner (admin only)
func (h *AdminHandlers) UpdateBanner(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/admin/banners/")

	var req BannerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	b := &catalog.Banner{
		ID:        id,
		Title:     req.Title,
		ImageURL:  req.ImageURL,
		LinkURL:   req.LinkURL,
		Active:    req.Active,
		SortOrder: req.SortOrder,
	}
	if err := h.catalog.UpdateBanner(r.Context(), b); err != nil {
		respondJSONError(w, "Failed to update banner", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Banner updated"})
}

// DeleteBanner deletes a banner (admin only)
func (h *AdminHandlers) DeleteBanner(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/admin/banners/")

	if err := h.catalog.DeleteBanner(r.Context(), id); err != nil {
		respondJSONError(w, "Failed to delete banner", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Banner deleted"})
}

// ListOrders returns every order for fulfilment (admin only)
func (h *AdminHandlers) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListAllOrders(r.Context())
	if err != nil {
		respondJSONError(w, "Failed to fetch orders", http.StatusInternalServerError)
		return
	}
	if orders == nil {
		orders = []order.Order{}
	}
	respondJSON(w, http.StatusOK, orders)
}

// UpdateOrderStatus moves an order through the fulfilment state machine
// (admin only). Illegal moves are rejected.
func (h *AdminHandlers) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSuffix(extractPathParam(r.URL.Path, "/admin/orders/"), "/status")

	var req struct {
		Status order.Status `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	o, err := h.orders.GetOrder(r.Context(), id)
	if err != nil {
		respondJSONError(w, "Order not found", http.StatusNotFound)
		return
	}
	if err := o.Transition(req.Status); err != nil {
		respondJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.orders.UpdateStatus(r.Context(), o.ID, req.Status); err != nil {
		respondJSONError(w, "Failed to update order", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

// slugify falls back to a lowercased, hyphenated name when no explicit slug
// is given.
func slugify(slug, name string) string {
	if slug != "" {
		return slug
	}
	return strings.ToLower(strings.Join(strings.Fields(name), "-"))
}
