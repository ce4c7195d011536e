package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/example/storefront/internal/api/middleware"
	"github.com/example/storefront/internal/catalog"
	"github.com/example/storefront/internal/checkout"
	"github.com/example/storefront/internal/infrastructure/store"
	"github.com/example/storefront/internal/order"
	"github.com/example/storefront/internal/payment"
)

// CheckoutHandlers serves checkout, payment verification and order reads.
type CheckoutHandlers struct {
	service *checkout.Service
	orders  store.OrderStore
}

func NewCheckoutHandlers(service *checkout.Service, orders store.OrderStore) *CheckoutHandlers {
	return &CheckoutHandlers{service: service, orders: orders}
}

// CheckoutRequest is a checkout submission: cart lines, shipping details
// and optionally an order to resume.
type CheckoutRequest struct {
	ResumeOrderID string                `json:"resume_order_id,omitempty"`
	Email         string                `json:"email"`
	Shipping      order.ShippingAddress `json:"shipping"`
	Lines         []checkout.Line       `json:"lines"`
}

// Checkout creates/resumes a pending order and returns the hosted-payment
// handle.
func (h *CheckoutHandlers) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.service.Checkout(r.Context(), checkout.Input{
		ResumeOrderID: req.ResumeOrderID,
		UserID:        getUserID(r),
		Email:         req.Email,
		Shipping:      req.Shipping,
		Lines:         req.Lines,
	})
	if err != nil {
		h.respondCheckoutError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, result)
}

func (h *CheckoutHandlers) respondCheckoutError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, order.ErrEmptyOrder),
		errors.Is(err, order.ErrMissingEmail),
		errors.Is(err, order.ErrMissingAddress):
		respondJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, catalog.ErrProductNotFound):
		respondJSONError(w, "A carted product no longer exists", http.StatusBadRequest)
	case errors.Is(err, checkout.ErrNotOwner):
		respondJSONError(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, payment.ErrGatewayRejected):
		log.Printf("[API] Gateway rejected checkout: %v", err)
		respondJSONError(w, "Payment could not be initialized; your order is saved and can be retried", http.StatusBadGateway)
	default:
		log.Printf("[API] Checkout failed: %v", err)
		respondJSONError(w, "Checkout failed; your order is saved and can be retried", http.StatusInternalServerError)
	}
}

// VerifyPayment reconciles a gateway reference with the stored order. Safe
// to call repeatedly; stock is decremented at most once per order.
func (h *CheckoutHandlers) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reference string `json:"reference"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Reference == "" {
		respondJSONError(w, "reference is required", http.StatusBadRequest)
		return
	}
	h.verify(w, r, req.Reference)
}

// PaymentCallback is the gateway's redirect target after hosted payment.
func (h *CheckoutHandlers) PaymentCallback(w http.ResponseWriter, r *http.Request) {
	reference := r.URL.Query().Get("reference")
	if reference == "" {
		reference = r.URL.Query().Get("trxref")
	}
	if reference == "" {
		respondJSONError(w, "reference is required", http.StatusBadRequest)
		return
	}
	h.verify(w, r, reference)
}

func (h *CheckoutHandlers) verify(w http.ResponseWriter, r *http.Request, reference string) {
	o, err := h.service.Verify(r.Context(), reference)
	switch {
	case err == nil:
		respondJSON(w, http.StatusOK, o)
	case errors.Is(err, checkout.ErrPaymentIncomplete):
		// Not an order failure: the order stays pending and payment can
		// be retried.
		respondJSON(w, http.StatusOK, map[string]any{
			"order":  o,
			"status": "pending",
			"error":  err.Error(),
		})
	case errors.Is(err, checkout.ErrAmountMismatch):
		respondJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, order.ErrOrderNotFound):
		respondJSONError(w, "No order found for this reference", http.StatusNotFound)
	case errors.Is(err, payment.ErrGatewayRejected):
		respondJSONError(w, "Verification failed; please try again", http.StatusBadGateway)
	default:
		log.Printf("[API] Payment verification failed: %v", err)
		respondJSONError(w, "Verification failed; please try again", http.StatusInternalServerError)
	}
}

// orderView is an order with its line items.
type orderView struct {
	order.Order
	Items []order.Item `json:"items"`
}

func (h *CheckoutHandlers) GetOrders(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r)
	if userID == "" {
		respondJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	orders, err := h.orders.ListOrdersByUser(r.Context(), userID)
	if err != nil {
		respondJSONError(w, "Failed to fetch orders", http.StatusInternalServerError)
		return
	}
	if orders == nil {
		orders = []order.Order{}
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *CheckoutHandlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/orders/")
	id = strings.TrimSuffix(id, "/cancel")

	o, err := h.orders.GetOrder(r.Context(), id)
	if err == order.ErrOrderNotFound {
		respondJSONError(w, "Order not found", http.StatusNotFound)
		return
	}
	if err != nil {
		respondJSONError(w, "Failed to fetch order", http.StatusInternalServerError)
		return
	}

	// Guests track orders by id; registered users' orders are private to
	// them and to staff.
	if o.UserID != "" && o.UserID != getUserID(r) && !middleware.IsAdmin(r.Context()) {
		respondJSONError(w, "forbidden", http.StatusForbidden)
		return
	}

	items, err := h.orders.GetItems(r.Context(), o.ID)
	if err != nil {
		respondJSONError(w, "Failed to fetch order", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, orderView{Order: *o, Items: items})
}

// CancelOrder is the user-abort affordance: it sets the order to cancelled
// through the state machine.
func (h *CheckoutHandlers) CancelOrder(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSuffix(extractPathParam(r.URL.Path, "/orders/"), "/cancel")

	o, err := h.service.Cancel(r.Context(), id, getUserID(r))
	switch {
	case err == nil:
		respondJSON(w, http.StatusOK, o)
	case errors.Is(err, order.ErrOrderNotFound):
		respondJSONError(w, "Order not found", http.StatusNotFound)
	case errors.Is(err, checkout.ErrNotOwner):
		respondJSONError(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, order.ErrInvalidStatus), errors.Is(err, order.ErrOrderCancelled):
		respondJSONError(w, err.Error(), http.StatusBadRequest)
	default:
		respondJSONError(w, "Failed to cancel order", http.StatusInternalServerError)
	}
}
