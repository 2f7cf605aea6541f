package keygen

import (
	"crypto/rand"
	"encoding/base64"
)

// StateToken generates a random URL-safe token for the OAuth state parameter
func StateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
