package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Base36Charset is the alphabet used for board ids and generated slugs.
const Base36Charset = "abcdefghijklmnopqrstuvwxyz0123456789"

// GenerateRandomString generates a cryptographically secure random string
// using the provided charset and length
func GenerateRandomString(length int, charset string) string {
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			panic(fmt.Sprintf("failed to generate random string: %v", err))
		}
		b[i] = charset[n.Int64()]
	}
	return string(b)
}
