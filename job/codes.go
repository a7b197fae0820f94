package job

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
)

var codeSpace = big.NewInt(10000)

// NewConfirmationCode draws a 4-digit code, zero-padded, from a uniformly
// random source over [0, 10000). Each job gets two independent codes at
// creation (pickup and delivery) and they are never regenerated.
func NewConfirmationCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpace)
	if err != nil {
		return "", fmt.Errorf("job: draw confirmation code: %w", err)
	}
	return fmt.Sprintf("%04d", n.Int64()), nil
}

// codeMatches compares a supplied code against the stored one in constant
// time. Codes are exact-match secrets; there is no normalization.
func codeMatches(supplied, stored string) bool {
	if len(supplied) != len(stored) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(supplied), []byte(stored)) == 1
}
