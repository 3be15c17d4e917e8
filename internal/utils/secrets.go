package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
)

const passcodeCharset = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghjkmnpqrstuvwxyz23456789"

// GenerateSecret generates a cryptographically secure random secret
func GenerateSecret(bytes int) (string, error) {
	b := make([]byte, bytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// GenerateJWTSecrets generates the access and refresh signing secrets
// used for JWT_SECRET and JWT_REFRESH_SECRET
func GenerateJWTSecrets() (string, string, error) {
	accessSecret, err := GenerateSecret(32)
	if err != nil {
		return "", "", err
	}
	refreshSecret, err := GenerateSecret(32)
	if err != nil {
		return "", "", err
	}
	return accessSecret, refreshSecret, nil
}

// GeneratePasscode generates a random host passcode. The alphabet drops
// lookalike characters (0/O, 1/l/I) so the passcode survives being read
// aloud or typed from an email.
func GeneratePasscode(length int) (string, error) {
	if length < 8 {
		length = 8
	}

	buf := make([]byte, length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(passcodeCharset))))
		if err != nil {
			return "", fmt.Errorf("failed to generate passcode: %w", err)
		}
		buf[i] = passcodeCharset[n.Int64()]
	}

	return string(buf), nil
}
