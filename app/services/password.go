package services

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const MinPasswordLength = 6

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func PasswordMatches(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func validateNewPassword(password, confirm string) error {
	if len(password) < MinPasswordLength {
		return NewValidationError("password", "must be at least %d characters", MinPasswordLength)
	}
	if password != confirm {
		return NewValidationError("confirm_password", "passwords do not match")
	}
	return nil
}
