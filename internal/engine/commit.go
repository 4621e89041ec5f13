package engine

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"
)

// HashServerSeed returns the public commitment for a server seed: the
// lowercase hex SHA-256 of its ASCII bytes.
func HashServerSeed(serverSeed string) (string, error) {
	if serverSeed == "" {
		return "", fmt.Errorf("%w: server seed is required", ErrInvalidSeedMaterial)
	}
	return commit(serverSeed), nil
}

// VerifyServerSeed reports whether serverSeed hashes to commitment. Hex case in
// commitment is ignored. A commitment that is not valid hex simply does not
// match.
func VerifyServerSeed(serverSeed, commitment string) (bool, error) {
	if serverSeed == "" {
		return false, fmt.Errorf("%w: server seed is required", ErrInvalidSeedMaterial)
	}
	want, err := hex.DecodeString(strings.TrimSpace(commitment))
	if err != nil || len(want) != sha256.Size {
		return false, nil
	}
	got := sha256.Sum256([]byte(serverSeed))
	return subtle.ConstantTimeCompare(got[:], want) == 1, nil
}

// GenerateServerSeed returns a fresh 64 character hex seed from crypto/rand.
func GenerateServerSeed() (string, error) {
	var b [32]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("generate server seed: %w", err)
	}
	return hex.EncodeToString(b[:]), nil
}

func commit(serverSeed string) string {
	sum := sha256.Sum256([]byte(serverSeed))
	return hex.EncodeToString(sum[:])
}
