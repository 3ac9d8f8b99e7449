package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/marmos91/davmount/internal/logger"
	"github.com/marmos91/davmount/pkg/controlplane/api/auth"
	"github.com/marmos91/davmount/pkg/controlplane/api/middleware"
	"github.com/marmos91/davmount/pkg/controlplane/models"
	"github.com/marmos91/davmount/pkg/controlplane/store"
)

// AuthHandler handles authentication-related API endpoints.
type AuthHandler struct {
	store      store.Store
	jwtService *auth.JWTService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(s store.Store, jwtService *auth.JWTService) *AuthHandler {
	return &AuthHandler{
		store:      s,
		jwtService: jwtService,
	}
}

// LoginRequest is the request body for POST /api/v1/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is the response body for POST /api/v1/auth/login.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// UserResponse is a sanitized user representation for API responses.
type UserResponse struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	Role      string     `json:"role"`
	Enabled   bool       `json:"enabled"`
	CreatedAt time.Time  `json:"created_at"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

// userToResponse converts a user model to its API representation.
func userToResponse(user *models.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Role:      user.Role,
		Enabled:   user.Enabled,
		CreatedAt: user.CreatedAt,
		LastLogin: user.LastLogin,
	}
}

// Login handles POST /api/v1/auth/login.
// Authenticates user credentials and returns a JWT token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	if req.Username == "" || req.Password == "" {
		ErrorResponse(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	// Validate credentials
	user, err := h.store.ValidateCredentials(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, models.ErrInvalidCredentials) || errors.Is(err, models.ErrUserNotFound) {
			ErrorResponse(w, http.StatusUnauthorized, "Invalid username or password")
			return
		}
		if errors.Is(err, models.ErrUserDisabled) {
			ErrorResponse(w, http.StatusForbidden, "User account is disabled")
			return
		}
		ErrorResponse(w, http.StatusInternalServerError, "Authentication failed")
		return
	}

	// Generate token
	token, err := h.jwtService.GenerateToken(user)
	if err != nil {
		ErrorResponse(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	// Update last login time (non-critical, log error for debugging)
	if err := h.store.UpdateLastLogin(r.Context(), user.Username, time.Now()); err != nil {
		logger.Warn("failed to update last login time",
			logger.KeyUser, user.Username, logger.Err(err))
	}

	OKResponse(w, LoginResponse{
		Token:     token.Token,
		ExpiresAt: token.ExpiresAt,
		User:      userToResponse(user),
	})
}

// Me handles GET /api/v1/auth/me.
// Returns the authenticated user's profile.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		ErrorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	user, err := h.store.GetUserByUsername(r.Context(), claims.Username)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			ErrorResponse(w, http.StatusUnauthorized, "User not found")
			return
		}
		ErrorResponse(w, http.StatusInternalServerError, "Failed to fetch user")
		return
	}

	OKResponse(w, userToResponse(user))
}
