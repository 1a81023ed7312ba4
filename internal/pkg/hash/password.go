package hash

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt only looks at the first 72 bytes and x/crypto rejects anything longer.
const maxPasswordBytes = 72

func Hash(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword(truncate(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

func Compare(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), truncate(password))
}

// truncate cuts at 72 bytes without splitting a multi-byte rune.
func truncate(password string) []byte {
	data := []byte(password)
	if len(data) <= maxPasswordBytes {
		return data
	}
	data = data[:maxPasswordBytes]
	for len(data) > 0 && !utf8.Valid(data) {
		data = data[:len(data)-1]
	}
	return data
}
