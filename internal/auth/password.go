package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrMismatchedPassword is returned when a password does not match its hash.
var ErrMismatchedPassword = errors.New("password does not match")

// HashPassword will generate a password hash
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password must not be empty")
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(h), err
}

// VerifyPassword checks a cleartext password against a stored hash
func VerifyPassword(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatchedPassword
		}
		return err
	}
	return nil
}
