package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/marmos91/davmount/pkg/controlplane/models"
	"github.com/marmos91/davmount/pkg/controlplane/store"
	"github.com/marmos91/davmount/pkg/identity"
)

// testSetup creates an in-memory control plane store and an APIConfig bound
// to the given listen address.
func testSetup(t *testing.T, listen string) (store.Store, APIConfig) {
	t.Helper()

	cpStore, err := store.New(&store.Config{
		Type:   store.DatabaseTypeSQLite,
		SQLite: store.SQLiteConfig{Path: ":memory:"},
	})
	if err != nil {
		t.Fatalf("failed to create control plane store: %v", err)
	}
	t.Cleanup(func() { cpStore.Close() })

	cfg := APIConfig{
		Listen:       listen,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		IdleTimeout:  10 * time.Second,
		JWTSecret:    "test-secret-key-for-testing-only-32chars",
		TokenTTL:     time.Hour,
	}
	return cpStore, cfg
}

// startServer runs the server until the test ends and waits for it to come up.
func startServer(t *testing.T, server *Server) chan error {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start(ctx)
	}()

	// Give the listener time to bind
	time.Sleep(100 * time.Millisecond)
	return errChan
}

func TestAPIServer_Lifecycle(t *testing.T) {
	cpStore, cfg := testSetup(t, "127.0.0.1:18454")

	server, err := NewServer(cfg, nil, cpStore, "test")
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start(ctx)
	}()
	time.Sleep(100 * time.Millisecond)

	resp, err := http.Get("http://" + server.Addr() + "/health")
	if err != nil {
		t.Fatalf("failed to reach health endpoint: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("health status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	cancel()
	select {
	case err := <-errChan:
		if err != nil {
			t.Errorf("graceful shutdown returned %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down in time")
	}
}

func TestAPIServer_Defaults(t *testing.T) {
	cpStore, _ := testSetup(t, "")

	cfg := APIConfig{
		JWTSecret: "test-secret-key-for-testing-only-32chars",
	}
	server, err := NewServer(cfg, nil, cpStore, "test")
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	if server.Addr() != "127.0.0.1:8454" {
		t.Errorf("Addr() = %q, want default 127.0.0.1:8454", server.Addr())
	}
}

func TestAPIServer_RejectsShortSecret(t *testing.T) {
	cpStore, cfg := testSetup(t, "127.0.0.1:0")
	cfg.JWTSecret = "too-short"

	if _, err := NewServer(cfg, nil, cpStore, "test"); err == nil {
		t.Fatal("NewServer accepted a JWT secret shorter than 32 characters")
	}
}

func TestAPIServer_Readiness(t *testing.T) {
	cpStore, cfg := testSetup(t, "127.0.0.1:18455")

	server, err := NewServer(cfg, nil, cpStore, "test")
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	startServer(t, server)

	resp, err := http.Get("http://" + server.Addr() + "/health/ready")
	if err != nil {
		t.Fatalf("failed to reach readiness endpoint: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("readiness status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	// A closed store makes the daemon not ready
	if err := cpStore.Close(); err != nil {
		t.Fatalf("failed to close store: %v", err)
	}
	resp2, err := http.Get("http://" + server.Addr() + "/health/ready")
	if err != nil {
		t.Fatalf("failed to reach readiness endpoint: %v", err)
	}
	defer func() { _ = resp2.Body.Close() }()
	if resp2.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("readiness status = %d with closed store, want %d",
			resp2.StatusCode, http.StatusServiceUnavailable)
	}
}

func TestAPIServer_RootRedirectsToHealth(t *testing.T) {
	cpStore, cfg := testSetup(t, "127.0.0.1:18456")

	server, err := NewServer(cfg, nil, cpStore, "test")
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	startServer(t, server)

	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	resp, err := client.Get("http://" + server.Addr() + "/")
	if err != nil {
		t.Fatalf("failed to make request: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusTemporaryRedirect {
		t.Errorf("root status = %d, want %d", resp.StatusCode, http.StatusTemporaryRedirect)
	}
	if loc := resp.Header.Get("Location"); loc != "/health" {
		t.Errorf("Location = %q, want /health", loc)
	}
}

func TestAPIServer_AuthFlow(t *testing.T) {
	cpStore, cfg := testSetup(t, "127.0.0.1:18457")

	hash, err := identity.HashPassword("correct-horse")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	if _, err := cpStore.CreateUser(context.Background(), &models.User{
		Username:     "alice",
		PasswordHash: hash,
		Role:         "admin",
		Enabled:      true,
	}); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	server, err := NewServer(cfg, nil, cpStore, "test")
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	startServer(t, server)
	base := "http://" + server.Addr()

	// Protected endpoints refuse anonymous requests
	anon, err := http.Get(base + "/api/v1/mounts")
	if err != nil {
		t.Fatalf("failed to make request: %v", err)
	}
	_ = anon.Body.Close()
	if anon.StatusCode != http.StatusUnauthorized {
		t.Errorf("anonymous mounts status = %d, want %d", anon.StatusCode, http.StatusUnauthorized)
	}

	// Login
	body, _ := json.Marshal(map[string]string{
		"username": "alice",
		"password": "correct-horse",
	})
	loginResp, err := http.Post(base+"/api/v1/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("failed to log in: %v", err)
	}
	defer func() { _ = loginResp.Body.Close() }()
	if loginResp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d, want %d", loginResp.StatusCode, http.StatusOK)
	}

	var envelope struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.NewDecoder(loginResp.Body).Decode(&envelope); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}
	if envelope.Data.Token == "" {
		t.Fatal("login response has empty token")
	}

	// The token opens protected endpoints
	req, _ := http.NewRequest(http.MethodGet, base+"/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+envelope.Data.Token)
	meResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("failed to make request: %v", err)
	}
	defer func() { _ = meResp.Body.Close() }()
	if meResp.StatusCode != http.StatusOK {
		t.Errorf("me status = %d, want %d", meResp.StatusCode, http.StatusOK)
	}
}
