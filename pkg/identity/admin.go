package identity

import (
	"crypto/rand"
	"encoding/base64"
	"os"
)

const (
	// DefaultAdminUsername is the username used for the bootstrap
	// administrator account when the configuration does not name one.
	DefaultAdminUsername = "admin"

	// EnvAdminInitialPassword is the environment variable that can be used
	// to set the initial admin password. If not set, a random password is generated.
	EnvAdminInitialPassword = "DAVMOUNT_ADMIN_INITIAL_PASSWORD"
)

// GetOrGenerateAdminPassword returns the admin password from the environment
// variable if set, otherwise generates a cryptographically secure random password.
// The generated password is 24 characters of URL-safe base64.
// Returns an error if random password generation fails.
func GetOrGenerateAdminPassword() (string, error) {
	if pw := os.Getenv(EnvAdminInitialPassword); pw != "" {
		return pw, nil
	}
	return GenerateRandomPassword()
}

// GenerateRandomPassword generates a cryptographically secure random password.
// Returns a 24-character URL-safe base64 string (18 bytes of randomness).
// Returns an error if the system's random number generator fails.
func GenerateRandomPassword() (string, error) {
	b := make([]byte, 18)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
