package jwt_parse

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNoToken       = errors.New("no authorization token")
	ErrInvalidFormat = errors.New("invalid authorization format")
	ErrInvalidToken  = errors.New("invalid token")
	ErrNoSubject     = errors.New("no user identifier found in token")
)

// Identity is what the booking service needs from an access token.
type Identity struct {
	UserID string
	Email  string
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header value.
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrNoToken
	}
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:]), nil
	}
	return "", ErrInvalidFormat
}

// ParseJWTToken validates an HS256 token and returns the caller identity. The user id is
// read from "user_id", falling back to "sub".
func ParseJWTToken(tokenString string, secret []byte) (*Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	id := &Identity{}
	if userID, ok := claims["user_id"].(string); ok && userID != "" {
		id.UserID = userID
	} else if sub, err := claims.GetSubject(); err == nil && sub != "" {
		id.UserID = sub
	} else {
		return nil, ErrNoSubject
	}
	if email, ok := claims["email"].(string); ok {
		id.Email = email
	}
	return id, nil
}
