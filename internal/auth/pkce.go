package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/desertthunder/statify/internal/shared"
)

const (
	MinVerifierLength     = 43
	MaxVerifierLength     = 128
	DefaultVerifierLength = 128
)

// verifierAlphabet is the unreserved subset used for verifiers; every byte is a single UTF-8 code unit.
const verifierAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// random is swapped in tests to exercise the read failure path.
var random io.Reader = rand.Reader

// GenerateVerifier returns a code verifier of exactly length characters drawn uniformly from [A-Za-z0-9].
//
// Bytes at or above the largest multiple of the alphabet size are rejected so that every character is equally likely.
func GenerateVerifier(length int) (string, error) {
	if length < MinVerifierLength || length > MaxVerifierLength {
		return "", fmt.Errorf("%w: got %d", shared.ErrInvalidVerifierLength, length)
	}

	const n = len(verifierAlphabet)
	const limit = 256 - (256 % n)

	out := make([]byte, 0, length)
	buf := make([]byte, length)
	for len(out) < length {
		if _, err := io.ReadFull(random, buf); err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, verifierAlphabet[int(b)%n])
			if len(out) == length {
				break
			}
		}
	}
	return string(out), nil
}

// DeriveChallenge computes the S256 code challenge: base64url (no padding) of SHA-256 over the verifier.
func DeriveChallenge(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
