// Package cryptox implements one-way password hashing.
//
// New hashes are argon2id encoded in PHC string format:
//
//	$argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash>
//
// Bcrypt hashes ($2a$, $2b$, $2y$) are accepted by Verify so that accounts
// imported from the previous deployment can still log in.
package cryptox

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

const (
	saltLength = 16
	keyLength  = 32
)

var (
	// ErrEmptyPassword is returned when hashing an empty password.
	ErrEmptyPassword = errors.New("password cannot be empty")
	// ErrInvalidHash is returned when a stored digest cannot be parsed.
	ErrInvalidHash = errors.New("invalid password hash")
)

// Params is the argon2id work factor.
type Params struct {
	Iterations uint32
	MemoryKiB  uint32
	Threads    uint8
}

// DefaultParams matches the OWASP baseline for argon2id.
var DefaultParams = Params{Iterations: 1, MemoryKiB: 64 * 1024, Threads: 4}

// Argon2idHasher hashes with argon2id and verifies argon2id or bcrypt digests.
type Argon2idHasher struct {
	params Params
	rand   func([]byte) (int, error)
}

// NewArgon2idHasher returns a hasher using p. Zero fields fall back to DefaultParams.
func NewArgon2idHasher(p Params) *Argon2idHasher {
	if p.Iterations == 0 {
		p.Iterations = DefaultParams.Iterations
	}
	if p.MemoryKiB == 0 {
		p.MemoryKiB = DefaultParams.MemoryKiB
	}
	if p.Threads == 0 {
		p.Threads = DefaultParams.Threads
	}
	return &Argon2idHasher{params: p, rand: rand.Read}
}

// Hash returns a salted argon2id digest of password. A failure to read
// randomness is returned, never ignored.
func (h *Argon2idHasher) Hash(_ context.Context, password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	salt := make([]byte, saltLength)
	if _, err := h.rand(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, h.params.Iterations, h.params.MemoryKiB, h.params.Threads, keyLength)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.MemoryKiB,
		h.params.Iterations,
		h.params.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether password matches digest. A malformed digest yields
// ErrInvalidHash; a mismatch yields (false, nil).
func (h *Argon2idHasher) Verify(_ context.Context, password, digest string) (bool, error) {
	switch {
	case strings.HasPrefix(digest, "$argon2id$"):
		return verifyArgon2id(password, digest)
	case isBcrypt(digest):
		err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(password))
		if err == nil {
			return true, nil
		}
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", ErrInvalidHash, err)
	default:
		return false, ErrInvalidHash
	}
}

// NeedsRehash reports whether digest was produced by another algorithm or
// with different parameters.
func (h *Argon2idHasher) NeedsRehash(digest string) bool {
	want := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$", argon2.Version, h.params.MemoryKiB, h.params.Iterations, h.params.Threads)
	return !strings.HasPrefix(digest, want)
}

func isBcrypt(digest string) bool {
	return strings.HasPrefix(digest, "$2a$") || strings.HasPrefix(digest, "$2b$") || strings.HasPrefix(digest, "$2y$")
}

func verifyArgon2id(password, digest string) (bool, error) {
	parts := strings.Split(digest, "$")
	if len(parts) != 6 {
		return false, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false, ErrInvalidHash
	}

	var memory, iterations, threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &threads); err != nil {
		return false, ErrInvalidHash
	}
	if threads == 0 || threads > 255 || iterations == 0 || memory == 0 {
		return false, ErrInvalidHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, ErrInvalidHash
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(expected) == 0 || len(expected) > 1024 {
		return false, ErrInvalidHash
	}

	computed := argon2.IDKey([]byte(password), salt, iterations, memory, uint8(threads), uint32(len(expected)))

	return subtle.ConstantTimeCompare(computed, expected) == 1, nil
}
