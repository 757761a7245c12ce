package security

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

var ErrSealedTokenInvalid = errors.New("sealed token cannot be opened")

// TokenSealer encrypts remote access tokens before they are written to the
// local session store.
type TokenSealer struct {
	key [32]byte
}

// NewTokenSealer derives the box key from the configured session secret.
func NewTokenSealer(secret string) (*TokenSealer, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("session secret must be at least 32 characters, got %d", len(secret))
	}
	return &TokenSealer{key: sha256.Sum256([]byte(secret))}, nil
}

// Seal returns nonce || box.
func (s *TokenSealer) Seal(token string) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return secretbox.Seal(nonce[:], []byte(token), &nonce, &s.key), nil
}

func (s *TokenSealer) Open(sealed []byte) (string, error) {
	if len(sealed) < nonceSize+secretbox.Overhead {
		return "", ErrSealedTokenInvalid
	}
	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])
	plain, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, &s.key)
	if !ok {
		return "", ErrSealedTokenInvalid
	}
	return string(plain), nil
}
