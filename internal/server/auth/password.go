package auth

import (
	"fmt"
	"unicode/utf8"

	"github.com/dmitrijs2005/cryptoestate/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is counted in characters, not bytes.
const MinPasswordLength = 8

// HashPassword returns a salted bcrypt hash of password.
func HashPassword(password string) (string, error) {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return "", fmt.Errorf("%w: password must be at least %d characters", common.ErrorInvalidInput, MinPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		// bcrypt rejects passwords longer than 72 bytes
		return "", fmt.Errorf("%w: %v", common.ErrorInvalidInput, err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches hash. A malformed hash
// never matches.
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
