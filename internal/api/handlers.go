package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/example/storefront/internal/api/middleware"
	"github.com/example/storefront/internal/cart"
	"github.com/example/storefront/internal/catalog"
	"github.com/example/storefront/internal/infrastructure/store"
	"github.com/google/uuid"
)

// CatalogHandlers serves the public storefront reads.
type CatalogHandlers struct {
	catalog store.CatalogStore
}

func NewCatalogHandlers(catalogStore store.CatalogStore) *CatalogHandlers {
	return &CatalogHandlers{catalog: catalogStore}
}

// GetProducts lists products with filters, sort and paging from the query
// string.
func (h *CatalogHandlers) GetProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := catalog.Filter{
		CategorySlug: q.Get("category"),
		BrandSlug:    q.Get("brand"),
		Query:        q.Get("q"),
		Sort:         q.Get("sort"),
		InStockOnly:  q.Get("in_stock") == "true",
	}
	f.MinPrice, _ = strconv.ParseFloat(q.Get("min_price"), 64)
	f.MaxPrice, _ = strconv.ParseFloat(q.Get("max_price"), 64)
	f.Page, _ = strconv.Atoi(q.Get("page"))
	f.Limit, _ = strconv.Atoi(q.Get("limit"))

	products, err := h.catalog.ListProducts(r.Context(), f)
	if err != nil {
		respondJSONError(w, "Failed to fetch products", http.StatusInternalServerError)
		return
	}
	if products == nil {
		products = []catalog.Product{}
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *CatalogHandlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/products/")
	p, err := h.catalog.GetProduct(r.Context(), id)
	if err == catalog.ErrProductNotFound {
		respondJSONError(w, "Product not found", http.StatusNotFound)
		return
	}
	if err != nil {
		respondJSONError(w, "Failed to fetch product", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (h *CatalogHandlers) GetCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		respondJSONError(w, "Failed to fetch categories", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, categories)
}

func (h *CatalogHandlers) GetBrands(w http.ResponseWriter, r *http.Request) {
	brands, err := h.catalog.ListBrands(r.Context())
	if err != nil {
		respondJSONError(w, "Failed to fetch brands", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, brands)
}

func (h *CatalogHandlers) GetBanners(w http.ResponseWriter, r *http.Request) {
	banners, err := h.catalog.ListBanners(r.Context(), true)
	if err != nil {
		respondJSONError(w, "Failed to fetch banners", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, banners)
}

// CartHandlers serves the session cart. The cart itself is client-local
// state; these endpoints just give browser clients a place to park it.
type CartHandlers struct {
	carts   *cart.Store
	catalog store.CatalogStore
}

func NewCartHandlers(carts *cart.Store, catalogStore store.CatalogStore) *CartHandlers {
	return &CartHandlers{carts: carts, catalog: catalogStore}
}

// cartView is a cart priced against the live catalog.
type cartView struct {
	Items []cartItemView `json:"items"`
	Total float64        `json:"total"`
}

type cartItemView struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

func (h *CartHandlers) view(r *http.Request, c cart.Cart) cartView {
	view := cartView{Items: []cartItemView{}}
	for _, id := range c.ProductIDs() {
		p, err := h.catalog.GetProduct(r.Context(), id)
		if err != nil {
			continue
		}
		qty := c.Lines[id]
		view.Items = append(view.Items, cartItemView{Product: *p, Quantity: qty})
		view.Total += p.Price * float64(qty)
	}
	return view
}

func (h *CartHandlers) GetCart(w http.ResponseWriter, r *http.Request) {
	sessionID := cartSession(w, r)
	respondJSON(w, http.StatusOK, h.view(r, h.carts.Get(sessionID)))
}

func (h *CartHandlers) AddItem(w http.ResponseWriter, r *http.Request) {
	sessionID := cartSession(w, r)

	var req struct {
		ProductID string `json:"product_id"`
		Quantity  int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	if _, err := h.catalog.GetProduct(r.Context(), req.ProductID); err != nil {
		respondJSONError(w, "Product not found", http.StatusNotFound)
		return
	}

	c, err := h.carts.Add(sessionID, req.ProductID, req.Quantity)
	if err != nil {
		respondJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	respondJSON(w, http.StatusOK, h.view(r, c))
}

func (h *CartHandlers) UpdateItem(w http.ResponseWriter, r *http.Request) {
	sessionID := cartSession(w, r)
	productID := extractPathParam(r.URL.Path, "/cart/items/")

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	c := h.carts.Update(sessionID, productID, req.Quantity)
	respondJSON(w, http.StatusOK, h.view(r, c))
}

func (h *CartHandlers) RemoveItem(w http.ResponseWriter, r *http.Request) {
	sessionID := cartSession(w, r)
	productID := extractPathParam(r.URL.Path, "/cart/items/")
	c := h.carts.Remove(sessionID, productID)
	respondJSON(w, http.StatusOK, h.view(r, c))
}

func (h *CartHandlers) ClearCart(w http.ResponseWriter, r *http.Request) {
	sessionID := cartSession(w, r)
	h.carts.Clear(sessionID)
	respondJSON(w, http.StatusOK, cartView{Items: []cartItemView{}})
}

// cartSession returns the caller's cart session id, minting a cookie on
// first contact.
func cartSession(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie("cart_session"); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if sid := r.Header.Get("X-Session-ID"); sid != "" {
		return sid
	}

	sid := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     "cart_session",
		Value:    sid,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sid
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondJSONError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, status, map[string]string{"error": message})
}

func extractPathParam(path, prefix string) string {
	return strings.TrimPrefix(path, prefix)
}

// getUserID extracts the authenticated user id, empty for guests.
func getUserID(r *http.Request) string {
	return middleware.GetUserID(r.Context())
}
