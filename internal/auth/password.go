package auth

import (
	"crypto/subtle"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrPasswordMismatch is returned when a password does not match the stored credential.
var ErrPasswordMismatch = errors.New("password mismatch")

// ErrPasswordTooLong is returned when a password exceeds what bcrypt accepts.
var ErrPasswordTooLong = errors.New("password is too long")

// PasswordHasher turns plaintext passwords into stored credentials and back.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(stored, plain string) error
}

// NewPasswordHasher returns bcrypt when hashing is enabled, a plaintext comparer otherwise.
func NewPasswordHasher(hash bool, cost int) PasswordHasher {
	if !hash {
		return PlainHasher{}
	}
	return BcryptHasher{Cost: cost}
}

// BcryptHasher stores bcrypt hashes.
type BcryptHasher struct {
	Cost int
}

// Hash hashes a plaintext password with the configured cost.
func (b BcryptHasher) Hash(password string) (string, error) {
	cost := b.Cost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", ErrPasswordTooLong
	}
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Compare verifies a password against its hashed value.
func (b BcryptHasher) Compare(stored, plain string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(plain)); err != nil {
		return ErrPasswordMismatch
	}
	return nil
}

// PlainHasher keeps passwords as given and compares them exactly.
type PlainHasher struct{}

func (PlainHasher) Hash(password string) (string, error) {
	return password, nil
}

func (PlainHasher) Compare(stored, plain string) error {
	if subtle.ConstantTimeCompare([]byte(stored), []byte(plain)) != 1 {
		return ErrPasswordMismatch
	}
	return nil
}
