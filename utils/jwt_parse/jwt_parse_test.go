package jwt_parse

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestParseJWTToken(t *testing.T) {
	exp := time.Now().Add(time.Hour).Unix()

	t.Run("Subject", func(t *testing.T) {
		tok := sign(t, jwt.MapClaims{"sub": "u-1", "email": "g@example.com", "exp": exp}, "s3cret")
		id, err := ParseJWTToken(tok, []byte("s3cret"))
		require.NoError(t, err)
		assert.Equal(t, "u-1", id.UserID)
		assert.Equal(t, "g@example.com", id.Email)
	})

	t.Run("UserIDClaimWins", func(t *testing.T) {
		tok := sign(t, jwt.MapClaims{"sub": "u-1", "user_id": "u-2", "exp": exp}, "s3cret")
		id, err := ParseJWTToken(tok, []byte("s3cret"))
		require.NoError(t, err)
		assert.Equal(t, "u-2", id.UserID)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		tok := sign(t, jwt.MapClaims{"sub": "u-1", "exp": exp}, "other")
		_, err := ParseJWTToken(tok, []byte("s3cret"))
		assert.True(t, errors.Is(err, ErrInvalidToken))
	})

	t.Run("Expired", func(t *testing.T) {
		tok := sign(t, jwt.MapClaims{"sub": "u-1", "exp": time.Now().Add(-time.Minute).Unix()}, "s3cret")
		_, err := ParseJWTToken(tok, []byte("s3cret"))
		assert.True(t, errors.Is(err, ErrInvalidToken))
	})

	t.Run("NoSubject", func(t *testing.T) {
		tok := sign(t, jwt.MapClaims{"exp": exp}, "s3cret")
		_, err := ParseJWTToken(tok, []byte("s3cret"))
		assert.True(t, errors.Is(err, ErrNoSubject))
	})
}

func TestBearerToken(t *testing.T) {
	tok, err := BearerToken("Bearer abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	tok, err = BearerToken("bearer abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	_, err = BearerToken("")
	assert.Equal(t, ErrNoToken, err)

	_, err = BearerToken("Token abc")
	assert.Equal(t, ErrInvalidFormat, err)
}
