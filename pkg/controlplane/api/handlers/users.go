package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/marmos91/davmount/pkg/controlplane/api/middleware"
	"github.com/marmos91/davmount/pkg/controlplane/models"
	"github.com/marmos91/davmount/pkg/controlplane/store"
	"github.com/marmos91/davmount/pkg/identity"
)

// UserHandler handles user management API endpoints.
type UserHandler struct {
	store store.Store
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(s store.Store) *UserHandler {
	return &UserHandler{store: s}
}

// CreateUserRequest is the request body for POST /api/v1/users.
type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// ResetPasswordRequest is the request body for POST /api/v1/users/{username}/password.
type ResetPasswordRequest struct {
	Password string `json:"password"`
}

// Create handles POST /api/v1/users.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	if req.Username == "" {
		ErrorResponse(w, http.StatusBadRequest, "Username is required")
		return
	}
	if err := identity.ValidatePassword(req.Password); err != nil {
		ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	role := req.Role
	if role == "" {
		role = string(models.RoleUser)
	}
	if !models.UserRole(role).IsValid() {
		ErrorResponse(w, http.StatusBadRequest, "Invalid role: must be 'user' or 'admin'")
		return
	}

	hash, err := identity.HashPassword(req.Password)
	if err != nil {
		ErrorResponse(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	user := &models.User{
		Username:     req.Username,
		PasswordHash: hash,
		Role:         role,
		Enabled:      true,
	}

	if _, err := h.store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, models.ErrDuplicateUser) {
			ErrorResponse(w, http.StatusConflict, "User already exists")
			return
		}
		ErrorResponse(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	CreatedResponse(w, userToResponse(user))
}

// List handles GET /api/v1/users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		ErrorResponse(w, http.StatusInternalServerError, "Failed to list users")
		return
	}

	result := make([]UserResponse, 0, len(users))
	for _, u := range users {
		result = append(result, userToResponse(u))
	}
	OKResponse(w, result)
}

// Get handles GET /api/v1/users/{username}.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	user, err := h.store.GetUserByUsername(r.Context(), username)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			ErrorResponse(w, http.StatusNotFound, "User not found")
			return
		}
		ErrorResponse(w, http.StatusInternalServerError, "Failed to fetch user")
		return
	}

	OKResponse(w, userToResponse(user))
}

// Delete handles DELETE /api/v1/users/{username}.
// Users cannot delete their own account.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	if claims := middleware.GetClaimsFromContext(r.Context()); claims != nil && claims.Username == username {
		ErrorResponse(w, http.StatusBadRequest, "Cannot delete your own account")
		return
	}

	if err := h.store.DeleteUser(r.Context(), username); err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			ErrorResponse(w, http.StatusNotFound, "User not found")
			return
		}
		ErrorResponse(w, http.StatusInternalServerError, "Failed to delete user")
		return
	}

	NoContent(w)
}

// ResetPassword handles POST /api/v1/users/{username}/password.
func (h *UserHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	var req ResetPasswordRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	if err := identity.ValidatePassword(req.Password); err != nil {
		ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := identity.HashPassword(req.Password)
	if err != nil {
		ErrorResponse(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	if err := h.store.UpdateUserPassword(r.Context(), username, hash); err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			ErrorResponse(w, http.StatusNotFound, "User not found")
			return
		}
		ErrorResponse(w, http.StatusInternalServerError, "Failed to update password")
		return
	}

	NoContent(w)
}
