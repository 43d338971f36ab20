package security

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const resetCodeDigits = 6

// GenerateResetCode returns a zero-padded six digit numeric code.
func GenerateResetCode() (string, error) {
	max := big.NewInt(1_000_000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("generate reset code: %w", err)
	}
	return fmt.Sprintf("%0*d", resetCodeDigits, n.Int64()), nil
}
