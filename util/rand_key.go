// Package util contains any functions used across the application that don't match
// any other package
package util

import (
	"crypto/rand"
	"encoding/hex"
)

// RandKey returns a random hex string of 2n characters, used for
// storage keys and request IDs
func RandKey(n int) string {
	b := make([]byte, n)
	rand.Read(b)

	return hex.EncodeToString(b)
}
