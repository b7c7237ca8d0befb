// Package auth covers token issuance, verification and the admission
// gate in front of the realtime channel. The same HS256 verification
// rule backs both the HTTP middleware and websocket admission.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/golang-jwt/jwt/v5"

	"github.com/beautyvilla/server/internal/model"
)

type ContextKey string

const IdentityKey ContextKey = "identity"

var (
	// ErrMissingToken means no credential was supplied at all.
	ErrMissingToken = errors.New("internal/auth: missing credential token")

	// ErrInvalidToken means the credential failed verification: bad
	// signature, expired, or malformed.
	ErrInvalidToken = errors.New("internal/auth: invalid credential token")
)

// Identity is the authenticated participant attached to a request or a
// channel after admission.
type Identity struct {
	ID   int64
	Role model.Role
}

type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func HashPassword(password string) (string, error) {
	hashed, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		return "", fmt.Errorf("internal/auth: pw hash failed: %w", err)
	}

	return hashed, nil
}

func CheckPasswordHash(password, hash string) (bool, error) {
	isMatch, err := argon2id.ComparePasswordAndHash(password, hash)
	if err != nil {
		return false, fmt.Errorf("internal/auth: pw and hash comparison failed: %w", err)
	}

	return isMatch, nil
}

// MakeJWT mints a token carrying the participant id as subject and the
// role as a custom claim.
func MakeJWT(identity Identity, tokenSecret string, expiresIn time.Duration) (string, error) {
	now := time.Now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: string(identity.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(identity.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
		},
	})

	return token.SignedString([]byte(tokenSecret))
}

// Admit validates a connection attempt's credential and resolves the
// participant behind it. It has no side effects; on failure the caller
// must refuse the channel, never downgrade to anonymous.
func Admit(tokenString, tokenSecret string) (Identity, error) {
	if tokenString == "" {
		return Identity{}, ErrMissingToken
	}

	parsed := &claims{}
	token, err := jwt.ParseWithClaims(
		tokenString,
		parsed,
		func(t *jwt.Token) (any, error) { return []byte(tokenSecret), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return Identity{}, ErrInvalidToken
	}

	id, err := strconv.ParseInt(parsed.Subject, 10, 64)
	if err != nil {
		return Identity{}, ErrInvalidToken
	}

	role := model.Role(parsed.Role)
	if !role.Valid() {
		return Identity{}, ErrInvalidToken
	}

	return Identity{ID: id, Role: role}, nil
}

// IdentityFromContext returns the identity stored by the auth
// middleware.
func IdentityFromContext(ctx context.Context) (Identity, error) {
	identity, ok := ctx.Value(IdentityKey).(Identity)
	if !ok {
		return Identity{}, errors.New("internal/auth: no identity in context")
	}

	return identity, nil
}
