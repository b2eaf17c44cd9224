// Package auth mints and checks the HS256 access tokens of the development
// auth service.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/nyayguru/internal/shared"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims описывает утверждения токена: стандартные (sub, jti, exp) плюс
// идентификатор пользователя и признак администратора.
type Claims struct {
	jwt.RegisteredClaims
	UserID  string `json:"id"`
	IsAdmin bool   `json:"is_admin"`
}

// Subject is who a token is issued to.
type Subject struct {
	UserID  string
	Email   string
	IsAdmin bool
}

func GenerateToken(s Subject, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.Email,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		UserID:  s.UserID,
		IsAdmin: s.IsAdmin,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken verifies the signature and expiry of tokenString.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, shared.ErrorTokenExpired
		}
		return nil, shared.ErrorInvalidToken
	}

	if !token.Valid || claims.UserID == "" || claims.ID == "" {
		return nil, shared.ErrorInvalidToken
	}

	return claims, nil
}

// AssertionClaims are the fields read from a third-party ID token.
type AssertionClaims struct {
	Email string
	Name  string
}

// ParseAssertion reads an ID token without verifying it. Development only:
// any well-formed JWT with an email claim is accepted.
func ParseAssertion(tokenString string) (*AssertionClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, shared.ErrorInvalidToken
	}

	email, _ := claims["email"].(string)
	if email == "" {
		return nil, shared.ErrorInvalidToken
	}
	name, _ := claims["name"].(string)

	return &AssertionClaims{Email: email, Name: name}, nil
}
