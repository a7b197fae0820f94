package job

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
)

var digestPattern = regexp.MustCompile(`^[a-f0-9]{64}$`)

// DigestAddress returns the hex-encoded SHA-256 digest of a delivery address.
// The digest is the only address form visible by default.
func DigestAddress(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}

// Digested reports whether s already looks like an address digest. Digesting
// must happen exactly once; callers use this to keep the operation idempotent.
func Digested(s string) bool {
	return digestPattern.MatchString(s)
}
