// Package password provides password hashing and verification.
//
// It defines a Hasher interface with two implementations:
//   - BcryptHasher: bcrypt hashing
//   - Argon2Hasher: argon2id hashing, PHC string encoded
//
// Compare reports a mismatch as (false, nil). Every operational failure
// (bad input, malformed hash, entropy failure) is returned as *Error so the
// API layer can recognize it without inspecting the message.
//
// Usage:
//
//	hasher := password.NewHasher(password.Config{Algorithm: password.AlgorithmArgon2id})
//	hash, err := hasher.Hash("my-password")
//	ok, err := hasher.Compare("my-password", hash)
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Sentinel causes carried by *Error.
var (
	ErrTooShort      = errors.New("password is too short")
	ErrTooLong       = errors.New("password is too long")
	ErrMalformedHash = errors.New("malformed password hash")
)

// Error is returned for every hashing or verification failure.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return "password: " + e.Op + ": " + e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

// Hasher hashes passwords and compares them against stored hashes.
type Hasher interface {
	// Hash returns the encoded hash of password.
	Hash(password string) (string, error)

	// Compare reports whether password matches hash.
	Compare(password, hash string) (bool, error)
}

// --- Bcrypt Implementation ---

// BcryptHasher implements Hasher using bcrypt.
type BcryptHasher struct {
	cost      int
	minLength int
}

// BcryptOption configures the bcrypt hasher.
type BcryptOption func(*BcryptHasher)

// WithCost sets the bcrypt cost parameter (default: 12, range: 4-31).
func WithCost(cost int) BcryptOption {
	return func(h *BcryptHasher) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			h.cost = cost
		}
	}
}

// WithBcryptMinLength sets the minimum accepted password length.
func WithBcryptMinLength(n int) BcryptOption {
	return func(h *BcryptHasher) { h.minLength = n }
}

// NewBcryptHasher creates a bcrypt-based password hasher.
func NewBcryptHasher(opts ...BcryptOption) *BcryptHasher {
	h := &BcryptHasher{cost: 12, minLength: 8}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	if len(password) < h.minLength {
		return "", &Error{Op: "hash", Err: ErrTooShort}
	}
	// bcrypt only looks at the first 72 bytes
	if len(password) > 72 {
		return "", &Error{Op: "hash", Err: ErrTooLong}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", &Error{Op: "hash", Err: err}
	}
	return string(hash), nil
}

func (h *BcryptHasher) Compare(password, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, &Error{Op: "compare", Err: err}
	}
}

// --- Argon2id Implementation ---

// Argon2Hasher implements Hasher using argon2id.
type Argon2Hasher struct {
	time      uint32
	memory    uint32
	threads   uint8
	keyLen    uint32
	saltLen   int
	minLength int
}

// Argon2Option configures the argon2id hasher.
type Argon2Option func(*Argon2Hasher)

// WithArgon2Time sets the number of iterations (default: 1).
func WithArgon2Time(t uint32) Argon2Option {
	return func(h *Argon2Hasher) { h.time = t }
}

// WithArgon2Memory sets the memory usage in KiB (default: 64*1024 = 64MB).
func WithArgon2Memory(m uint32) Argon2Option {
	return func(h *Argon2Hasher) { h.memory = m }
}

// WithArgon2Threads sets the parallelism (default: 4).
func WithArgon2Threads(p uint8) Argon2Option {
	return func(h *Argon2Hasher) { h.threads = p }
}

// WithArgon2MinLength sets the minimum accepted password length.
func WithArgon2MinLength(n int) Argon2Option {
	return func(h *Argon2Hasher) { h.minLength = n }
}

// NewArgon2Hasher creates an argon2id-based password hasher.
func NewArgon2Hasher(opts ...Argon2Option) *Argon2Hasher {
	h := &Argon2Hasher{
		time:      1,
		memory:    64 * 1024,
		threads:   4,
		keyLen:    32,
		saltLen:   16,
		minLength: 8,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Argon2Hasher) Hash(password string) (string, error) {
	if len(password) < h.minLength {
		return "", &Error{Op: "hash", Err: ErrTooShort}
	}

	salt := make([]byte, h.saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", &Error{Op: "generate salt", Err: err}
	}

	hash := argon2.IDKey([]byte(password), salt, h.time, h.memory, h.threads, h.keyLen)

	// $argon2id$v=19$m=MEMORY,t=TIME,p=THREADS$SALT$HASH
	encoded := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.memory, h.time, h.threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	)
	return encoded, nil
}

func (h *Argon2Hasher) Compare(password, encodedHash string) (bool, error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false, &Error{Op: "compare", Err: ErrMalformedHash}
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return false, &Error{Op: "parse version", Err: err}
	}
	if version != argon2.Version {
		return false, &Error{Op: "compare", Err: fmt.Errorf("incompatible argon2 version %d", version)}
	}

	var memory, time uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return false, &Error{Op: "parse params", Err: err}
	}
	if time < 1 || threads < 1 || memory < 8*uint32(threads) {
		return false, &Error{Op: "compare", Err: ErrMalformedHash}
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, &Error{Op: "decode salt", Err: err}
	}

	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, &Error{Op: "decode hash", Err: err}
	}

	if len(salt) == 0 || len(expected) == 0 {
		return false, &Error{Op: "compare", Err: ErrMalformedHash}
	}

	hash := argon2.IDKey([]byte(password), salt, time, memory, threads, uint32(len(expected)))
	return subtle.ConstantTimeCompare(hash, expected) == 1, nil
}
