package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/example/storefront/internal/api/middleware"
	"github.com/example/storefront/internal/contact"
)

// ContactHandlers serves support message threads.
type ContactHandlers struct {
	service *contact.Service
}

func NewContactHandlers(service *contact.Service) *ContactHandlers {
	return &ContactHandlers{service: service}
}

// principal derives who is acting from the request. Guests carry only the
// email they supply per request.
func principal(r *http.Request, email string) contact.Principal {
	p := contact.Principal{Email: email}
	if claims, ok := middleware.GetUserFromContext(r.Context()); ok {
		p.UserID = claims.UserID
		p.Email = claims.Email
		p.Admin = middleware.IsAdmin(r.Context())
	}
	return p
}

// Submit accepts an inbound support message from a guest or a logged-in
// user.
func (h *ContactHandlers) Submit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Subject string `json:"subject"`
		Body    string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	userID := getUserID(r)
	if claims, ok := middleware.GetUserFromContext(r.Context()); ok {
		if req.Email == "" {
			req.Email = claims.Email
		}
		if req.Name == "" {
			req.Name = claims.Email
		}
	}

	m, err := h.service.Submit(r.Context(), userID, req.Name, req.Email, req.Subject, req.Body)
	if err != nil {
		if errors.Is(err, contact.ErrMissingFields) {
			respondJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		respondJSONError(w, "Failed to submit message", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusCreated, m)
}

// ListMessages returns the caller's own threads, or every thread for staff.
func (h *ContactHandlers) ListMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.service.ListFor(r.Context(), principal(r, ""))
	if err != nil {
		respondJSONError(w, "Failed to fetch messages", http.StatusInternalServerError)
		return
	}
	if messages == nil {
		messages = []contact.Message{}
	}
	respondJSON(w, http.StatusOK, messages)
}

// GetThread returns one message with its replies. Guests identify
// themselves with the email query parameter.
func (h *ContactHandlers) GetThread(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSuffix(extractPathParam(r.URL.Path, "/contact/"), "/replies")

	thread, err := h.service.GetThread(r.Context(), principal(r, r.URL.Query().Get("email")), id)
	switch {
	case err == nil:
		respondJSON(w, http.StatusOK, thread)
	case errors.Is(err, contact.ErrMessageNotFound):
		respondJSONError(w, "Message not found", http.StatusNotFound)
	case errors.Is(err, contact.ErrNotOwner):
		respondJSONError(w, "forbidden", http.StatusForbidden)
	default:
		respondJSONError(w, "Failed to fetch message", http.StatusInternalServerError)
	}
}

// PostReply appends a reply to a thread the caller may read.
func (h *ContactHandlers) PostReply(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSuffix(extractPathParam(r.URL.Path, "/contact/"), "/replies")

	var req struct {
		Email string `json:"email"`
		Body  string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	reply, err := h.service.PostReply(r.Context(), principal(r, req.Email), id, req.Body)
	switch {
	case err == nil:
		respondJSON(w, http.StatusCreated, reply)
	case errors.Is(err, contact.ErrEmptyReply):
		respondJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, contact.ErrMessageNotFound):
		respondJSONError(w, "Message not found", http.StatusNotFound)
	case errors.Is(err, contact.ErrNotOwner):
		respondJSONError(w, "forbidden", http.StatusForbidden)
	default:
		respondJSONError(w, "Failed to post reply", http.StatusInternalServerError)
	}
}
