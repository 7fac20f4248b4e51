package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// DefaultAccessTokenBytes is the entropy used for invoice access tokens.
const DefaultAccessTokenBytes = 32

// NewAccessToken returns a URL-safe random token with byteLen bytes of
// entropy. Used for capability links that must be unguessable.
func NewAccessToken(byteLen int) (string, error) {
	if byteLen <= 0 {
		return "", fmt.Errorf("token length must be positive")
	}
	buf := make([]byte, byteLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
