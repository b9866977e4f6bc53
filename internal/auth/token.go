// internal/auth/token.go
//
// JWT session tokens (HS256) carrying the user ID and username.
// Sign issues a token with the configured TTL; Parse rejects other signing
// methods, bad signatures and expired tokens with ErrInvalidToken.

package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims is the identity carried in a token.
type Claims struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Tokens signs and verifies HS256 JWTs.
type Tokens struct {
	Secret []byte
	TTL    time.Duration
}

// Sign creates a token for id/username and returns its expiry.
func (t Tokens) Sign(id, username string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(t.TTL)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":       id,
		"username": username,
		"exp":      exp.Unix(),
		"iat":      now.Unix(),
	})
	ss, err := tok.SignedString(t.Secret)
	return ss, exp, err
}

// Parse verifies tokenStr and extracts its claims.
func (t Tokens) Parse(tokenStr string) (Claims, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
		return t.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}
	id, _ := claims["id"].(string)
	username, _ := claims["username"].(string)
	if id == "" || username == "" {
		return Claims{}, ErrInvalidToken
	}
	return Claims{ID: id, Username: username}, nil
}
