package utils

import (
	"errors"
	"time"

	"github.com/dgrijalva/jwt-go"
)

var ErrTokenInvalid = errors.New("token invalid")

// CreateToken signs an HS256 token for username valid for expire.
func CreateToken(username, secret string, expire time.Duration) (string, error) {
	at := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": username,
		"exp":      time.Now().Add(expire).Unix(),
	})
	return at.SignedString([]byte(secret))
}

// ParseToken verifies token and returns its username.
func ParseToken(token, secret string) (string, error) {
	claim, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := claim.Claims.(jwt.MapClaims)
	if !ok || !claim.Valid {
		return "", ErrTokenInvalid
	}
	username, ok := claims["username"].(string)
	if !ok || username == "" {
		return "", ErrTokenInvalid
	}
	return username, nil
}
