// Package auth issues and verifies session tokens and password hashes.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/cryptoestate/internal/common"
	"github.com/dmitrijs2005/cryptoestate/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
)

// Subject is what a token is issued for.
type Subject struct {
	Email      string
	Capability models.Capability
}

// Claims are the signed contents of a session token. The subject email
// travels in the registered "sub" claim.
type Claims struct {
	jwt.RegisteredClaims
	Capability models.Capability `json:"cap"`
}

// Email returns the subject email.
func (c *Claims) Email() string { return c.Subject }

var now = time.Now

func GenerateToken(subject Subject, secretKey []byte, validityDuration time.Duration) (string, error) {
	issued := now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject.Email,
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(validityDuration)),
		},
		Capability: subject.Capability,
	})

	return token.SignedString(secretKey)
}

// ParseToken verifies signature and expiry. Expired tokens yield
// common.ErrTokenExpired; every other failure yields common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return secretKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid || claims.Subject == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
