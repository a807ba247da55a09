package token

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
)

const (
	// Prefix marks a personal access token.
	Prefix = "pat_"

	// DefaultTokenBytes is the number of random bytes in a generated token.
	// 32 bytes encode to 44 characters.
	DefaultTokenBytes = 32

	// MinTokenLength is the minimum accepted length including the prefix.
	MinTokenLength = len(Prefix) + 43
)

// Generate creates a random personal access token.
func Generate() (string, error) {
	b := make([]byte, DefaultTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return Prefix + base64.URLEncoding.EncodeToString(b), nil
}

// Hash returns the hex-encoded HMAC-SHA256 of token under secret.
func Hash(token, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(token))
	return hex.EncodeToString(h.Sum(nil))
}

// Validate reports whether provided hashes to storedHash, in constant time.
func Validate(provided, secret, storedHash string) bool {
	return hmac.Equal([]byte(Hash(provided, secret)), []byte(storedHash))
}

// ValidateFormat checks the prefix and minimum length of a token.
func ValidateFormat(token string) error {
	if !strings.HasPrefix(token, Prefix) {
		return fmt.Errorf("token must start with %q", Prefix)
	}
	if len(token) < MinTokenLength {
		return fmt.Errorf("token too short: got %d characters, need at least %d", len(token), MinTokenLength)
	}
	return nil
}

// Keyring holds the hashes of the tokens a server accepts.
// It is safe for concurrent use.
type Keyring struct {
	secret string

	mu     sync.RWMutex
	hashes []string
}

// NewKeyring creates an empty keyring hashing with secret.
func NewKeyring(secret string) *Keyring {
	return &Keyring{secret: secret}
}

// Add accepts token from now on. Only its hash is kept.
func (k *Keyring) Add(token string) {
	hash := Hash(token, k.secret)

	k.mu.Lock()
	k.hashes = append(k.hashes, hash)
	k.mu.Unlock()
}

// Len returns the number of accepted tokens.
func (k *Keyring) Len() int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.hashes)
}

// Verify reports whether provided is one of the accepted tokens.
// Every stored hash is compared so the time taken does not depend on which
// token matched.
func (k *Keyring) Verify(provided string) bool {
	k.mu.RLock()
	defer k.mu.RUnlock()

	match := false
	for _, hash := range k.hashes {
		if Validate(provided, k.secret, hash) {
			match = true
		}
	}
	return match
}
