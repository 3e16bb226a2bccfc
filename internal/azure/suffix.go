package azure

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const suffixCharset = "abcdefghijklmnopqrstuvwxyz0123456789"

// DefaultSuffixLength is the length of the random suffix appended to resource names.
const DefaultSuffixLength = 6

// RandomSuffix generates a random string of lowercase letters and digits.
// Uniqueness is not checked against existing resources.
func RandomSuffix(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("suffix length must be positive, got %d", length)
	}
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(suffixCharset))))
		if err != nil {
			return "", fmt.Errorf("crypto/rand failed: %w", err)
		}
		result[i] = suffixCharset[n.Int64()]
	}
	return string(result), nil
}

// ValidSuffix reports whether s is usable as a name suffix: 1-12 lowercase
// letters or digits. Storage account names cap the usable length.
func ValidSuffix(s string) bool {
	if len(s) == 0 || len(s) > 12 {
		return false
	}
	for _, c := range s {
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}
