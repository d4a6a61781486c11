// Package auth implements session tokens and request identity resolution.
//
// A session is an HS256 JWT carrying the user id in the subject claim with
// a 24 hour expiry. Nothing is stored server-side; validity is entirely a
// matter of signature and expiry at verification time.
package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is how long an issued session token stays valid.
const DefaultTokenTTL = 24 * time.Hour

var (
	// ErrTokenMalformed is returned when a token cannot be parsed, was
	// signed with the wrong key or method, or carries a bad subject.
	ErrTokenMalformed = errors.New("malformed token")

	// ErrTokenExpired is returned when a token's expiry has passed.
	ErrTokenExpired = errors.New("token expired")
)

// TokenCodec issues and verifies signed session tokens.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenCodec constructs a codec around the server signing secret.
func NewTokenCodec(secret string) *TokenCodec {
	return &TokenCodec{
		secret: []byte(secret),
		ttl:    DefaultTokenTTL,
		now:    time.Now,
	}
}

// Issue produces a signed token embedding the user id and an absolute
// expiry ttl past now.
func (c *TokenCodec) Issue(userID int64) (string, error) {
	now := c.now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Verify checks signature and expiry and returns the embedded user id.
// It fails with ErrTokenExpired past the embedded expiry and with
// ErrTokenMalformed for every other defect.
func (c *TokenCodec) Verify(tokenString string) (int64, error) {
	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(
		tokenString,
		&claims,
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return c.secret, nil
		},
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrTokenExpired
		}
		return 0, ErrTokenMalformed
	}
	if !token.Valid {
		return 0, ErrTokenMalformed
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID < 1 {
		return 0, ErrTokenMalformed
	}
	return userID, nil
}
