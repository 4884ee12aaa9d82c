// Package cryptox derives the password verifier used by register/login.
// The server only ever stores the salt and the verifier; the password and
// the derived key stay on the client.
package cryptox

import (
	"crypto/sha256"

	"github.com/dmitrijs2005/aichopaicho/internal/shared"
	"golang.org/x/crypto/argon2"
)

// SaltSize is the length of a freshly generated salt in bytes.
const SaltSize = 32

// NewSalt returns a random salt for a new account.
func NewSalt() []byte {
	return shared.GenerateRandByteArray(SaltSize)
}

// DeriveKey stretches password with salt using Argon2id.
func DeriveKey(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
}

// MakeVerifier hashes a derived key into the value sent to the server.
func MakeVerifier(key []byte) []byte {
	sum := sha256.Sum256(key)
	return sum[:]
}
