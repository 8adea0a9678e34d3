// Package otpcode generates and checks the six-digit reset codes.
package otpcode

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
)

const (
	minCode = 100000
	maxCode = 999999
)

var pattern = regexp.MustCompile(`^[0-9]{6}$`)

// Generate returns a code drawn uniformly from [100000, 999999].
func Generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(maxCode-minCode+1))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+minCode), nil
}

// Valid reports whether s has the shape of an issued code.
func Valid(s string) bool {
	return pattern.MatchString(s)
}
