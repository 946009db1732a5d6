package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/clinicdesk/frontdesk/internal/platform/apperr"
)

type contextKey string

const identityKey contextKey = "identity"

// Identity is the active account a request acts as.
type Identity struct {
	UserID   int64
	Username string
	Name     string
	IsAdmin  bool
}

// IdentityResolver maps a token subject to an active account. It returns
// ErrUnknownIdentity when the subject does not exist and an Inactive error
// when the account is disabled.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, username string) (*Identity, error)
}

// BearerMiddleware validates "Authorization: Bearer <token>" and stores the
// resolved Identity on the request context. Requests for which skipper
// returns true pass through untouched.
func BearerMiddleware(issuer *TokenIssuer, resolver IdentityResolver, skipper func(echo.Context) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if skipper != nil && skipper(c) {
				return next(c)
			}

			tokenStr, ok := bearerToken(c.Request().Header.Get("Authorization"))
			if !ok {
				return unauthorized(c)
			}

			subject, err := issuer.Validate(tokenStr)
			if err != nil {
				return unauthorized(c)
			}

			ident, err := resolver.ResolveIdentity(c.Request().Context(), subject)
			if err != nil {
				if errors.Is(err, ErrUnknownIdentity) {
					return unauthorized(c)
				}
				return apperr.ToHTTP(err)
			}

			c.Set("user_id", ident.UserID)
			c.SetRequest(c.Request().WithContext(WithIdentity(c.Request().Context(), ident)))
			return next(c)
		}
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	tok := strings.TrimSpace(parts[1])
	return tok, tok != ""
}

func unauthorized(c echo.Context) error {
	c.Response().Header().Set("WWW-Authenticate", "Bearer")
	return echo.NewHTTPError(http.StatusUnauthorized, ErrInvalidToken.Message)
}

func WithIdentity(ctx context.Context, ident *Identity) context.Context {
	return context.WithValue(ctx, identityKey, ident)
}

// IdentityFromContext returns the authenticated identity, or nil.
func IdentityFromContext(ctx context.Context) *Identity {
	ident, _ := ctx.Value(identityKey).(*Identity)
	return ident
}

// UserIDFromContext returns the authenticated account id, or 0.
func UserIDFromContext(ctx context.Context) int64 {
	if ident := IdentityFromContext(ctx); ident != nil {
		return ident.UserID
	}
	return 0
}
