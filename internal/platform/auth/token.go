package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/clinicdesk/frontdesk/internal/platform/apperr"
)

// DefaultTokenTTL applies when Issue is called with a non-positive ttl.
const DefaultTokenTTL = 15 * time.Minute

var (
	// ErrInvalidToken covers malformed, wrongly signed and expired tokens.
	ErrInvalidToken = &apperr.Error{Kind: apperr.KindAuth, Message: "Could not validate credentials"}
	// ErrUnknownIdentity means the token is valid but its subject no longer
	// resolves to an account.
	ErrUnknownIdentity = &apperr.Error{Kind: apperr.KindAuth, Message: "Could not validate credentials"}
)

// TokenIssuer signs and validates HS256 bearer tokens whose subject is the
// account username.
type TokenIssuer struct {
	key []byte
	now func() time.Time
}

func NewTokenIssuer(signingKey []byte) *TokenIssuer {
	return &TokenIssuer{key: signingKey, now: time.Now}
}

// WithClock returns a copy of the issuer that reads time from now.
func (i *TokenIssuer) WithClock(now func() time.Time) *TokenIssuer {
	return &TokenIssuer{key: i.key, now: now}
}

func (i *TokenIssuer) Issue(subject string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	now := i.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate returns the token subject or ErrInvalidToken.
func (i *TokenIssuer) Validate(tokenStr string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return i.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// IsAuthError reports whether err is one of the token sentinels.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrInvalidToken) || errors.Is(err, ErrUnknownIdentity)
}
