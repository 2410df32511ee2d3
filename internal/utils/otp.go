package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
)

const otpCodeSpace = 1000000 // 000000..999999

// GenerateOneTimeCode returns a uniformly random 6-digit numeric code,
// zero-padded, drawn from a cryptographic source.
func GenerateOneTimeCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpCodeSpace))
	if err != nil {
		return "", fmt.Errorf("generate one-time code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// HashOneTimeCode digests an email plus code pair. The digest is
// deterministic so verification can look a record up by hash without
// ever storing the raw code.
func HashOneTimeCode(email, code string) string {
	sum := sha256.Sum256([]byte(email + ":" + code))
	return hex.EncodeToString(sum[:])
}

// HashToken digests an opaque session token for at-rest storage on the
// one-time code record.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
