package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	codec := NewTokenCodec("super-secret")

	token, err := codec.Issue(42)
	require.NoError(t, err)

	userID, err := codec.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
}

func TestVerifyExpired(t *testing.T) {
	codec := NewTokenCodec("super-secret")

	token, err := codec.Issue(7)
	require.NoError(t, err)

	// Just under the expiry is still fine.
	codec.now = func() time.Time { return time.Now().Add(DefaultTokenTTL - time.Minute) }
	_, err = codec.Verify(token)
	require.NoError(t, err)

	codec.now = func() time.Time { return time.Now().Add(DefaultTokenTTL + time.Minute) }
	_, err = codec.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyTamperedSignature(t *testing.T) {
	codec := NewTokenCodec("super-secret")

	token, err := codec.Issue(7)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := strings.Join([]string{parts[0], parts[1], string(sig)}, ".")

	_, err = codec.Verify(tampered)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestVerifyWrongSecret(t *testing.T) {
	token, err := NewTokenCodec("first-secret").Issue(7)
	require.NoError(t, err)

	_, err = NewTokenCodec("second-secret").Verify(token)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestVerifyGarbage(t *testing.T) {
	codec := NewTokenCodec("super-secret")

	_, err := codec.Verify("definitely-not-a-token")
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestVerifyBadSubject(t *testing.T) {
	secret := []byte("super-secret")
	claims := jwt.RegisteredClaims{
		Subject:   "not-a-number",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)

	_, err = NewTokenCodec("super-secret").Verify(token)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestVerifyRejectsNonHMACMethod(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Subject:   "7",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokenCodec("super-secret").Verify(token)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}
