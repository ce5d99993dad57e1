package util

import (
	"crypto/rand"
	"encoding/hex"
)

// RandomHex returns n random bytes hex-encoded. Used for provider-opaque
// identifiers such as mock gateway capture IDs.
func RandomHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
