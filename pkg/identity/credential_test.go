package identity

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	password := "test-password-123"

	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	// Check hash format (bcrypt hashes start with $2a$ or $2b$)
	if !strings.HasPrefix(hash, "$2a$") && !strings.HasPrefix(hash, "$2b$") {
		t.Errorf("HashPassword() hash = %q, want bcrypt format", hash)
	}

	// Verify the password matches the hash
	if !VerifyPassword(password, hash) {
		t.Error("VerifyPassword() returned false for correct password")
	}
}

func TestHashPassword_DifferentHashes(t *testing.T) {
	password := "same-password"

	hash1, _ := HashPassword(password)
	hash2, _ := HashPassword(password)

	// Bcrypt should generate different hashes each time due to salt
	if hash1 == hash2 {
		t.Error("HashPassword() generated same hash twice, expected different due to salt")
	}

	// Both hashes should verify correctly
	if !VerifyPassword(password, hash1) {
		t.Error("VerifyPassword() failed for hash1")
	}
	if !VerifyPassword(password, hash2) {
		t.Error("VerifyPassword() failed for hash2")
	}
}

func TestHashPassword_RejectsInvalid(t *testing.T) {
	if _, err := HashPassword("short"); err != ErrPasswordTooShort {
		t.Errorf("HashPassword(short) error = %v, want ErrPasswordTooShort", err)
	}

	long := strings.Repeat("x", MaxPasswordLength+1)
	if _, err := HashPassword(long); err != ErrPasswordTooLong {
		t.Errorf("HashPassword(long) error = %v, want ErrPasswordTooLong", err)
	}
}

func TestHashPasswordWithCost(t *testing.T) {
	password := "cost-test-password"

	hash, err := HashPasswordWithCost(password, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPasswordWithCost() error = %v", err)
	}

	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		t.Fatalf("bcrypt.Cost() error = %v", err)
	}
	if cost != bcrypt.MinCost {
		t.Errorf("hash cost = %d, want %d", cost, bcrypt.MinCost)
	}

	if !VerifyPassword(password, hash) {
		t.Error("VerifyPassword() returned false for correct password")
	}
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("password123")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	tests := []struct {
		name     string
		password string
		hash     string
		want     bool
	}{
		{
			name:     "correct password",
			password: "password123",
			hash:     hash,
			want:     true,
		},
		{
			name:     "wrong password",
			password: "wrongpassword",
			hash:     hash,
			want:     false,
		},
		{
			name:     "empty password",
			password: "",
			hash:     hash,
			want:     false,
		},
		{
			name:     "invalid hash",
			password: "password123",
			hash:     "not-a-valid-hash",
			want:     false,
		},
		{
			name:     "empty hash",
			password: "password123",
			hash:     "",
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VerifyPassword(tt.password, tt.hash); got != tt.want {
				t.Errorf("VerifyPassword() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{
			name:     "valid password",
			password: "validpassword",
			wantErr:  nil,
		},
		{
			name:     "minimum length",
			password: strings.Repeat("a", MinPasswordLength),
			wantErr:  nil,
		},
		{
			name:     "maximum length",
			password: strings.Repeat("a", MaxPasswordLength),
			wantErr:  nil,
		},
		{
			name:     "too short",
			password: "short",
			wantErr:  ErrPasswordTooShort,
		},
		{
			name:     "empty",
			password: "",
			wantErr:  ErrPasswordTooShort,
		},
		{
			name:     "too long",
			password: strings.Repeat("a", MaxPasswordLength+1),
			wantErr:  ErrPasswordTooLong,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidatePassword(tt.password); err != tt.wantErr {
				t.Errorf("ValidatePassword() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNeedsRehash(t *testing.T) {
	// A hash at the default cost does not need rehashing
	hash, err := HashPassword("rehash-test-pw")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if NeedsRehash(hash) {
		t.Error("NeedsRehash() = true for hash at default cost")
	}

	// A hash below the default cost needs rehashing
	lowCost, err := HashPasswordWithCost("rehash-test-pw", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPasswordWithCost() error = %v", err)
	}
	if !NeedsRehash(lowCost) {
		t.Error("NeedsRehash() = false for hash below default cost")
	}

	// Garbage input needs rehashing
	if !NeedsRehash("not-a-hash") {
		t.Error("NeedsRehash() = false for invalid hash")
	}
}
