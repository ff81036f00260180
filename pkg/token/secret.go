package token

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// SecretLength is the number of random bytes backing a one-time secret.
const SecretLength = 32

// GenerateSecret returns a URL-safe, high-entropy random string used for
// email-verification and password-reset secrets.
func GenerateSecret() (string, error) {
	b := make([]byte, SecretLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}
