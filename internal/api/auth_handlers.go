package api

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/example/storefront/internal/api/middleware"
	"github.com/example/storefront/internal/auth"
	"github.com/example/storefront/internal/infrastructure/store"
	"github.com/example/storefront/internal/user"
	"github.com/google/uuid"
)

const sessionBucket = "sessions"

// hashToken creates a SHA-256 hash of the token for secure storage
func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// session tracks an issued refresh token so it can be rotated and revoked.
type session struct {
	ID               string
	UserID           string
	RefreshTokenHash string
	ExpiresAt        time.Time
	CreatedAt        time.Time
}

// AuthHandlers handles authentication-related HTTP requests
type AuthHandlers struct {
	users      store.UserStore
	jwtService *auth.JWTService
	sessions   *store.MemKV
}

// NewAuthHandlers creates a new AuthHandlers instance
func NewAuthHandlers(users store.UserStore, jwtService *auth.JWTService, sessions *store.MemKV) *AuthHandlers {
	return &AuthHandlers{
		users:      users,
		jwtService: jwtService,
		sessions:   sessions,
	}
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse represents the authentication response
type AuthResponse struct {
	User    UserResponse `json:"user"`
	Message string       `json:"message,omitempty"`
}

// UserResponse represents user data in responses
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// Register handles user registration
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		respondJSONError(w, user.ErrInvalidEmail.Error(), http.StatusBadRequest)
		return
	}

	if _, err := h.users.GetUserByEmail(r.Context(), req.Email); err == nil {
		respondJSONError(w, "Email already registered", http.StatusConflict)
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		if err == auth.ErrPasswordTooShort {
			respondJSONError(w, "Password must be at least 8 characters", http.StatusBadRequest)
			return
		}
		respondJSONError(w, "Registration failed", http.StatusInternalServerError)
		return
	}

	newUser := &user.User{
		ID:           uuid.New().String(),
		Email:        req.Email,
		PasswordHash: passwordHash,
		Name:         req.Name,
		Role:         user.RoleCustomer,
		IsActive:     true,
		CreatedAt:    time.Now(),
	}
	if err := h.users.CreateUser(r.Context(), newUser); err != nil {
		respondJSONError(w, "Registration failed", http.StatusInternalServerError)
		return
	}

	h.setAuthCookies(w, newUser.ID, newUser.Email, newUser.Role, r)

	respondJSON(w, http.StatusCreated, AuthResponse{
		User:    toUserResponse(newUser),
		Message: "Registration successful",
	})
}

// Login handles user login
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	u, err := h.users.GetUserByEmail(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		respondJSONError(w, "Invalid email or password", http.StatusUnauthorized)
		return
	}

	if !u.IsActive {
		respondJSONError(w, "Account is deactivated", http.StatusForbidden)
		return
	}

	if !auth.CheckPassword(req.Password, u.PasswordHash) {
		respondJSONError(w, "Invalid email or password", http.StatusUnauthorized)
		return
	}

	h.setAuthCookies(w, u.ID, u.Email, u.Role, r)

	respondJSON(w, http.StatusOK, AuthResponse{
		User:    toUserResponse(u),
		Message: "Login successful",
	})
}

// Logout handles user logout
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie("session_id"); err == nil {
		h.sessions.Delete(sessionBucket, cookie.Value)
	}

	h.clearAuthCookies(w)

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Logout successful",
	})
}

// Refresh handles token refresh
func (h *AuthHandlers) Refresh(w http.ResponseWriter, r *http.Request) {
	refreshCookie, err := r.Cookie("refresh_token")
	if err != nil {
		respondJSONError(w, "No refresh token", http.StatusUnauthorized)
		return
	}

	sessionCookie, err := r.Cookie("session_id")
	if err != nil {
		h.clearAuthCookies(w)
		respondJSONError(w, "No session", http.StatusUnauthorized)
		return
	}

	userID, err := h.jwtService.ValidateRefreshToken(refreshCookie.Value)
	if err != nil {
		h.clearAuthCookies(w)
		respondJSONError(w, "Invalid refresh token", http.StatusUnauthorized)
		return
	}

	sessionData, exists := h.sessions.Get(sessionBucket, sessionCookie.Value)
	if !exists {
		h.clearAuthCookies(w)
		respondJSONError(w, "Session not found", http.StatusUnauthorized)
		return
	}
	sess := sessionData.(*session)

	if time.Now().After(sess.ExpiresAt) {
		h.sessions.Delete(sessionBucket, sessionCookie.Value)
		h.clearAuthCookies(w)
		respondJSONError(w, "Session expired", http.StatusUnauthorized)
		return
	}

	if hashToken(refreshCookie.Value) != sess.RefreshTokenHash {
		h.clearAuthCookies(w)
		respondJSONError(w, "Invalid refresh token", http.StatusUnauthorized)
		return
	}

	u, err := h.users.GetUser(r.Context(), userID)
	if err != nil {
		h.clearAuthCookies(w)
		respondJSONError(w, "User not found", http.StatusUnauthorized)
		return
	}
	if !u.IsActive {
		h.clearAuthCookies(w)
		respondJSONError(w, "Account is deactivated", http.StatusForbidden)
		return
	}

	// Rotate: the old session dies with its refresh token.
	h.sessions.Delete(sessionBucket, sessionCookie.Value)
	h.setAuthCookies(w, u.ID, u.Email, u.Role, r)

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Token refreshed",
	})
}

// Me returns the current authenticated user's information
func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		respondJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	u, err := h.users.GetUser(r.Context(), claims.UserID)
	if err != nil {
		respondJSONError(w, "User not found", http.StatusNotFound)
		return
	}

	respondJSON(w, http.StatusOK, toUserResponse(u))
}

// ChangePassword handles password change requests
func (h *AuthHandlers) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		respondJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	u, err := h.users.GetUser(r.Context(), claims.UserID)
	if err != nil {
		respondJSONError(w, "User not found", http.StatusNotFound)
		return
	}
	if !auth.CheckPassword(req.CurrentPassword, u.PasswordHash) {
		respondJSONError(w, "Current password is incorrect", http.StatusBadRequest)
		return
	}

	newHash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		if err == auth.ErrPasswordTooShort {
			respondJSONError(w, "New password must be at least 8 characters", http.StatusBadRequest)
			return
		}
		respondJSONError(w, "Failed to change password", http.StatusInternalServerError)
		return
	}
	if err := h.users.UpdatePassword(r.Context(), claims.UserID, newHash); err != nil {
		respondJSONError(w, "Failed to change password", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Password changed successfully",
	})
}

// Helper methods

func (h *AuthHandlers) setAuthCookies(w http.ResponseWriter, userID, email, role string, r *http.Request) {
	accessToken, accessExpiry, _ := h.jwtService.GenerateAccessToken(userID, email, role)
	refreshToken, refreshExpiry, _ := h.jwtService.GenerateRefreshToken(userID)

	sessionID := uuid.New().String()
	h.sessions.Set(sessionBucket, sessionID, &session{
		ID:               sessionID,
		UserID:           userID,
		RefreshTokenHash: hashToken(refreshToken),
		ExpiresAt:        refreshExpiry,
		CreatedAt:        time.Now(),
	})

	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    accessToken,
		Path:     "/",
		Expires:  accessExpiry,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})

	http.SetCookie(w, &http.Cookie{
		Name:     "refresh_token",
		Value:    refreshToken,
		Path:     "/auth/refresh",
		Expires:  refreshExpiry,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})

	http.SetCookie(w, &http.Cookie{
		Name:     "session_id",
		Value:    sessionID,
		Path:     "/",
		Expires:  refreshExpiry,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandlers) clearAuthCookies(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	http.SetCookie(w, &http.Cookie{
		Name:     "refresh_token",
		Value:    "",
		Path:     "/auth/refresh",
		MaxAge:   -1,
		HttpOnly: true,
	})

	http.SetCookie(w, &http.Cookie{
		Name:     "session_id",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}
