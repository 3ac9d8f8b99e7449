//go:build integration

package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/marmos91/davmount/pkg/controlplane/api/auth"
	"github.com/marmos91/davmount/pkg/controlplane/api/middleware"
	"github.com/marmos91/davmount/pkg/controlplane/models"
	"github.com/marmos91/davmount/pkg/controlplane/store"
)

func setupAuthTest(t *testing.T) (*store.GORMStore, *auth.JWTService, *AuthHandler) {
	t.Helper()

	s, err := store.New(&store.Config{
		Type:   store.DatabaseTypeSQLite,
		SQLite: store.SQLiteConfig{Path: ":memory:"},
	})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	jwtService, err := auth.NewJWTService(auth.JWTConfig{Secret: testJWTSecret})
	if err != nil {
		t.Fatalf("failed to create JWT service: %v", err)
	}

	return s, jwtService, NewAuthHandler(s, jwtService)
}

func TestAuthHandler_Login(t *testing.T) {
	s, jwtService, handler := setupAuthTest(t)
	createTestUser(t, s, "alice", "correct-horse", "admin")

	rec := postJSON(t, handler.Login, "/api/v1/auth/login", LoginRequest{
		Username: "alice",
		Password: "correct-horse",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("Login status = %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body)
	}

	var resp LoginResponse
	decodeEnvelope(t, rec, &resp)
	if resp.Token == "" {
		t.Fatal("login response has empty token")
	}
	if resp.User.Username != "alice" {
		t.Errorf("User.Username = %q, want alice", resp.User.Username)
	}
	if resp.User.Role != "admin" {
		t.Errorf("User.Role = %q, want admin", resp.User.Role)
	}
	if time.Until(resp.ExpiresAt) <= 0 {
		t.Errorf("ExpiresAt = %v is not in the future", resp.ExpiresAt)
	}

	// The issued token must round-trip through validation
	claims, err := jwtService.ValidateToken(resp.Token)
	if err != nil {
		t.Fatalf("issued token failed validation: %v", err)
	}
	if claims.Username != "alice" {
		t.Errorf("claims.Username = %q, want alice", claims.Username)
	}
	if !claims.IsAdmin() {
		t.Error("claims.IsAdmin() = false for admin user")
	}

	// Successful login records the time
	user, err := s.GetUserByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("failed to fetch user: %v", err)
	}
	if user.LastLogin == nil {
		t.Error("LastLogin not recorded after login")
	}
}

func TestAuthHandler_LoginFailures(t *testing.T) {
	s, _, handler := setupAuthTest(t)
	createTestUser(t, s, "alice", "correct-horse", "user")

	disabled := createTestUser(t, s, "mallory", "correct-horse", "user")
	// Enabled carries a database-level default of true, so flipping it on
	// the struct before insert would be lost. Update the row instead.
	if err := s.DB().Model(&models.User{}).Where("id = ?", disabled.ID).
		Update("enabled", false).Error; err != nil {
		t.Fatalf("failed to disable user: %v", err)
	}

	tests := []struct {
		name string
		req  LoginRequest
		want int
	}{
		{"wrong password", LoginRequest{Username: "alice", Password: "wrong"}, http.StatusUnauthorized},
		{"unknown user", LoginRequest{Username: "carol", Password: "correct-horse"}, http.StatusUnauthorized},
		{"disabled user", LoginRequest{Username: "mallory", Password: "correct-horse"}, http.StatusForbidden},
		{"empty username", LoginRequest{Password: "correct-horse"}, http.StatusBadRequest},
		{"empty password", LoginRequest{Username: "alice"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, handler.Login, "/api/v1/auth/login", tt.req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body)
			}
		})
	}
}

func TestAuthHandler_Me(t *testing.T) {
	s, jwtService, handler := setupAuthTest(t)
	user := createTestUser(t, s, "alice", "correct-horse", "user")

	token, err := jwtService.GenerateToken(user)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	protected := middleware.JWTAuth(jwtService)(http.HandlerFunc(handler.Me))

	r := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	r.Header.Set("Authorization", "Bearer "+token.Token)
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, r)

	if rec.Code != http.StatusOK {
		t.Fatalf("Me status = %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body)
	}

	var me UserResponse
	decodeEnvelope(t, rec, &me)
	if me.Username != "alice" {
		t.Errorf("Username = %q, want alice", me.Username)
	}

	// No token
	bare := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	bareRec := httptest.NewRecorder()
	protected.ServeHTTP(bareRec, bare)
	if bareRec.Code != http.StatusUnauthorized {
		t.Errorf("Me without token status = %d, want %d", bareRec.Code, http.StatusUnauthorized)
	}
}
