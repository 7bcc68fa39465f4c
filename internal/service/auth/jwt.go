package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/callsys/callboard/internal/repository/board"
)

const (
	usernameKey = "username"
	roleKey     = "role"
)

// IssueToken signs a session token for identity and returns it with its expiry.
func (s service) IssueToken(identity Identity) (string, time.Time, error) {
	expiresAt := time.Now().Add(s.sessionTTL)
	claims := jwt.MapClaims{
		usernameKey: identity.Username,
		roleKey:     string(identity.Role),
		"exp":       jwt.NewNumericDate(expiresAt),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

func (s service) ParseToken(tokenString string) (Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, jwt.MapClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return Identity{}, ErrInvalidToken
	}

	if !token.Valid {
		return Identity{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrInvalidToken
	}

	username, ok := claims[usernameKey].(string)
	if !ok || username == "" {
		return Identity{}, ErrInvalidToken
	}

	role, ok := claims[roleKey].(string)
	if !ok {
		return Identity{}, ErrInvalidToken
	}

	return Identity{
		Username: username,
		Role:     board.Role(role),
	}, nil
}
