package util

import (
	"crypto/rand"
	"encoding/hex"
)

// RandomString returns n bytes of randomness, hex encoded (2n characters)
func RandomString(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}
