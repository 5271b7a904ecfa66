package password

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha512"
	"fmt"
	"io"
)

const (
	// SaltSize matches the HMAC-SHA512 block size.
	SaltSize = 128
	// HashSize is the SHA-512 digest width.
	HashSize = sha512.Size
)

// Hasher produces and checks salted password hashes. It holds no mutable
// state and is safe for concurrent use.
type Hasher struct {
	random io.Reader
}

// NewHasher returns a Hasher reading salt from crypto/rand.
func NewHasher() *Hasher {
	return &Hasher{random: rand.Reader}
}

// NewHasherWithRandom lets tests supply the entropy source.
func NewHasherWithRandom(r io.Reader) *Hasher {
	return &Hasher{random: r}
}

// Hash returns the hash of password under a newly generated salt.
// It fails only when the entropy source does.
func (h *Hasher) Hash(password string) (hash, salt []byte, err error) {
	salt = make([]byte, SaltSize)
	if _, err := io.ReadFull(h.random, salt); err != nil {
		return nil, nil, fmt.Errorf("generating salt: %w", err)
	}
	return compute(password, salt), salt, nil
}

// Verify recomputes the hash of password under salt and compares it with
// hash byte for byte.
func (h *Hasher) Verify(password string, hash, salt []byte) bool {
	if len(hash) != HashSize || len(salt) == 0 {
		return false
	}
	return hmac.Equal(compute(password, salt), hash)
}

func compute(password string, salt []byte) []byte {
	m := hmac.New(sha512.New, salt)
	_, _ = m.Write([]byte(password))
	return m.Sum(nil)
}
