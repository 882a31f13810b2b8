package delivery

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
)

var otpCodeRe = regexp.MustCompile(`^[0-9]{6}$`)

var oneMillion = big.NewInt(1000000)

// generateCode returns a cryptographically random 6-digit code,
// zero-padded, in [000000, 999999].
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, oneMillion)
	if err != nil {
		return "", fmt.Errorf("generating otp code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// isWellFormedCode reports whether the input looks like a delivery code
// at all. Malformed input is rejected before touching storage.
func isWellFormedCode(code string) bool {
	return otpCodeRe.MatchString(code)
}
