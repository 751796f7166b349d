package security

import (
	"errors"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes is where bcrypt stops reading input.
const MaxPasswordBytes = 72

var (
	ErrPasswordTooLong = errors.New("password must be at most 72 bytes")
	ErrWrongPassword   = errors.New("wrong password")
)

// HashPassword hashes a member's login password for the users table.
func HashPassword(plain string) (string, error) {
	if len(plain) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword returns ErrWrongPassword on a mismatch. Any other error means
// the stored hash is unusable.
func CheckPassword(hash, plain string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrWrongPassword
	}
	return err
}

var unknownUserHash = sync.OnceValue(func() []byte {
	h, _ := bcrypt.GenerateFromPassword([]byte("leolynk-unknown-user"), bcrypt.DefaultCost)
	return h
})

// CheckUnknownUser spends the same bcrypt work as CheckPassword, so a login for
// a username that does not exist takes as long as a wrong password.
func CheckUnknownUser(plain string) {
	_ = bcrypt.CompareHashAndPassword(unknownUserHash(), []byte(plain))
}
