package apiclient

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/auth/login", r.URL.Path)

		var req LoginRequest
		err := json.NewDecoder(r.Body).Decode(&req)
		require.NoError(t, err)
		assert.Equal(t, "testuser", req.Username)
		assert.Equal(t, "password123", req.Password)

		writeData(w, http.StatusOK, TokenResponse{
			Token:     "token-123",
			ExpiresAt: time.Now().Add(time.Hour),
			User: User{
				Username: "testuser",
				Role:     "admin",
				Enabled:  true,
			},
		})
	}))
	defer server.Close()

	client := New(server.URL)
	resp, err := client.Login("testuser", "password123")

	require.NoError(t, err)
	assert.Equal(t, "token-123", resp.Token)
	assert.Equal(t, "testuser", resp.User.Username)
	assert.Equal(t, "admin", resp.User.Role)
	assert.True(t, resp.ExpiresAt.After(time.Now()))
}

func TestLogin_InvalidCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusUnauthorized, "Invalid username or password", nil)
	}))
	defer server.Close()

	client := New(server.URL)
	resp, err := client.Login("baduser", "badpassword")

	assert.Nil(t, resp)
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.True(t, apiErr.IsAuthError())
}

func TestGetCurrentUser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/auth/me", r.URL.Path)
		assert.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))

		writeData(w, http.StatusOK, User{
			ID:       "user-1",
			Username: "testuser",
			Role:     "user",
			Enabled:  true,
		})
	}))
	defer server.Close()

	client := New(server.URL).WithToken("token-123")
	user, err := client.GetCurrentUser()

	require.NoError(t, err)
	assert.Equal(t, "testuser", user.Username)
	assert.Equal(t, "user", user.Role)
}
