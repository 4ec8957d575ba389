// Password hashing utilities.
//
// Passwords are stored as bcrypt hashes only. bcrypt salts every hash and
// embeds the salt and cost in its output, so the users table needs a single
// password_hash column:
//
//	$2a$10$<22-char salt><31-char hash>
//	 ^   ^
//	 |   cost (10 rounds → 2^10 iterations)
//	 version
//
// Signin compares the submitted password against that string with
// bcrypt.CompareHashAndPassword. The hash is never reversed and the
// plaintext is never compared directly.
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used by the auth server.
const DefaultCost = 10

// maxPasswordBytes is bcrypt's input limit. Longer input is rejected rather
// than silently truncated.
const maxPasswordBytes = 72

// ErrPasswordMismatch is returned by Verify for a wrong password.
var ErrPasswordMismatch = errors.New("auth: invalid password")

// PasswordService provides bcrypt hashing and verification.
//
// It's a struct (not free functions) so that the cost can be injected:
// tests use the minimum cost 4.
type PasswordService struct {
	cost int

	// dummyHash is compared against when the user does not exist, so an
	// unknown username costs as much as a wrong password.
	dummyHash []byte
}

// NewPasswordService creates a PasswordService. A cost outside bcrypt's
// range falls back to DefaultCost.
func NewPasswordService(cost int) *PasswordService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return newPasswordServiceWithCost(cost)
}

// NewPasswordServiceForTest creates a PasswordService with the given cost
// without range fallback. Use bcrypt.MinCost (4) in tests in other packages.
func NewPasswordServiceForTest(cost int) *PasswordService {
	return newPasswordServiceWithCost(cost)
}

func newPasswordServiceWithCost(cost int) *PasswordService {
	dummy, err := bcrypt.GenerateFromPassword([]byte("snippetbox-dummy-password"), cost)
	if err != nil {
		// Only an invalid cost gets here.
		dummy = nil
	}
	return &PasswordService{cost: cost, dummyHash: dummy}
}

// Hash hashes the given plaintext password with bcrypt.
//
// Returns an error if the plaintext is too long (>72 bytes, the bcrypt limit).
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > maxPasswordBytes {
		return "", fmt.Errorf("auth: password must be %d bytes or fewer", maxPasswordBytes)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}

	return string(hashed), nil
}

// Verify checks whether a plaintext password matches a stored bcrypt hash.
//
// Returns nil if they match, ErrPasswordMismatch if they don't, and a
// wrapped error for a hash bcrypt cannot read.
func (p *PasswordService) Verify(hash, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrPasswordMismatch
		}
		return fmt.Errorf("auth: comparing password hash: %w", err)
	}
	return nil
}

// VerifyDummy burns the same time as Verify for a user that does not exist.
// It always reports a mismatch.
func (p *PasswordService) VerifyDummy(plaintext string) error {
	if p.dummyHash != nil {
		_ = bcrypt.CompareHashAndPassword(p.dummyHash, []byte(plaintext))
	}
	return ErrPasswordMismatch
}
