// Package generate produces random strings for token values and user keys.
package generate

import (
	"crypto/rand"
	"fmt"
	"math/big"
	mathrand "math/rand"
	"time"
)

const (
	CharsetAlphaNumeric = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	// CharsetURLSafe is used for values that end up in query strings.
	CharsetURLSafe = CharsetAlphaNumeric + "-_"
)

func init() {
	mathrand.Seed(time.Now().UnixNano())
}

// CryptoRandom generates a cryptographically-safe random string of length n
// using characters from charset.
func CryptoRandom(n int, charset string) (string, error) {
	if n <= 0 {
		return "", nil
	}

	max := big.NewInt(int64(len(charset)))

	bytes := make([]byte, n)
	for i := range bytes {
		bigint, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("couldn't generate random string of len %d: %w", n, err)
		}

		bytes[i] = charset[bigint.Int64()]
	}

	return string(bytes), nil
}

// MathRandom generates a random string that does not need to be cryptographically secure.
func MathRandom(n int, charset string) string {
	if n <= 0 {
		return ""
	}

	bytes := make([]byte, n)
	for i := range bytes {
		//nolint:gosec // We purposely use mathrand to avoid draining the entropy pool
		bytes[i] = charset[mathrand.Int31n(int32(len(charset)))]
	}

	return string(bytes)
}
