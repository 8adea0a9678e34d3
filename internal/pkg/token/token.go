package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// exchangeTokenBytes gives 256 bits of entropy.
const exchangeTokenBytes = 32

// NewExchangeToken generates the credential handed out after a reset code is
// verified. It is a 64-character hex string.
func NewExchangeToken() (string, error) {
	b := make([]byte, exchangeTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate exchange token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
