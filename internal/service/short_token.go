package service

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// NewShortToken returns a random URL-safe token of exactly length characters
func NewShortToken(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("invalid short token length %d", length)
	}

	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate short token: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(bytes)[:length], nil
}
