package utils

import (
	"errors"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

func HashSecret(secret string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	return string(bytes), err
}

// HashSecretCost is HashSecret with an explicit cost, for seed fixtures.
func HashSecretCost(secret string, cost int) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	return string(bytes), err
}

func CheckSecret(hashedSecret, secret string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedSecret), []byte(secret))
	return err == nil
}

// ValidatePassword enforces the minimum strength for a new account password.
func ValidatePassword(password string) error {
	var hasLetter, hasNumber bool
	for _, char := range password {
		switch {
		case unicode.IsLetter(char):
			hasLetter = true
		case unicode.IsNumber(char):
			hasNumber = true
		}
	}

	if len(password) < 8 || !hasLetter || !hasNumber {
		return errors.New("password must be at least 8 characters and contain a letter and a number")
	}
	return nil
}
