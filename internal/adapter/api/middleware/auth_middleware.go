package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"storefront/internal/infrastructure/firebase"
	"storefront/pkg/errors"
	"storefront/pkg/response"
)

// Context keys set by the auth middleware.
const (
	ContextUID   = "uid"
	ContextEmail = "email"
	ContextAdmin = "admin"
)

// TokenVerifier resolves a bearer token to an identity.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*firebase.Identity, error)
}

type AuthMiddleware struct {
	verifier TokenVerifier
}

func NewAuthMiddleware(verifier TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
	}
}

func bearerToken(c echo.Context) (string, bool) {
	parts := strings.Fields(c.Request().Header.Get("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func (m *AuthMiddleware) identify(c echo.Context) (*firebase.Identity, error) {
	if c.Request().Header.Get("Authorization") == "" {
		return nil, errors.Unauthorized("Authorization header is required", nil)
	}
	token, ok := bearerToken(c)
	if !ok {
		return nil, errors.Unauthorized("Invalid authorization format", nil)
	}
	identity, err := m.verifier.VerifyToken(c.Request().Context(), token)
	if err != nil {
		return nil, errors.Unauthorized("Invalid or expired token", err)
	}
	return identity, nil
}

func setIdentity(c echo.Context, identity *firebase.Identity) {
	c.Set(ContextUID, identity.UID)
	c.Set(ContextEmail, identity.Email)
	c.Set(ContextAdmin, identity.Admin)
}

// Authenticate rejects requests without a valid ID token.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		identity, err := m.identify(c)
		if err != nil {
			return response.Error(c, err)
		}
		setIdentity(c, identity)
		return next(c)
	}
}

// OptionalAuth sets the identity when a valid token is present and otherwise
// lets the request through anonymously.
func (m *AuthMiddleware) OptionalAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if identity, err := m.identify(c); err == nil {
			setIdentity(c, identity)
		}
		return next(c)
	}
}

// AdminOnly must run after Authenticate.
func (m *AuthMiddleware) AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if admin, _ := c.Get(ContextAdmin).(bool); !admin {
			return response.Error(c, errors.Forbidden("Admin access required", nil))
		}
		return next(c)
	}
}

// UserID returns the authenticated user id, or "" for anonymous requests.
func UserID(c echo.Context) string {
	uid, _ := c.Get(ContextUID).(string)
	return uid
}

func Email(c echo.Context) string {
	email, _ := c.Get(ContextEmail).(string)
	return email
}

func IsAdmin(c echo.Context) bool {
	admin, _ := c.Get(ContextAdmin).(bool)
	return admin
}
