package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"sharespace/internal/pkg/jwt"
)

const (
	CtxUserIDKey   = "user_id"
	CtxUsernameKey = "username"
	CtxRoleKey     = "role"
)

type AuthMiddleware struct {
	jwt jwt.Service
}

func NewAuthMiddleware(jwtSvc jwt.Service) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwtSvc}
}

func (m *AuthMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		token, ok := bearerTokenFromHeader(c.Get("Authorization"))
		if !ok {
			return NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
		}

		claims, err := m.jwt.ValidateToken(token)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return NewAppError(fiber.StatusUnauthorized, "Token expired", nil, err)
			}
			return NewAppError(fiber.StatusUnauthorized, "Invalid token", nil, err)
		}

		if claims.TokenType != jwt.TokenTypeAccess || m.jwt.IsRefreshToken(claims) {
			return NewAppError(fiber.StatusUnauthorized, "Invalid token", nil, nil)
		}

		setPrincipal(c, claims)
		return c.Next()
	}
}

// OptionalMiddleware resolves the caller when a valid access token is
// present but lets anonymous requests through. The listing feed uses
// it: personalization is a bonus, never a gate.
func (m *AuthMiddleware) OptionalMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		token, ok := bearerTokenFromHeader(c.Get("Authorization"))
		if !ok {
			return c.Next()
		}

		claims, err := m.jwt.ValidateToken(token)
		if err != nil || claims.TokenType != jwt.TokenTypeAccess {
			return c.Next()
		}

		setPrincipal(c, claims)
		return c.Next()
	}
}

func setPrincipal(c fiber.Ctx, claims jwt.Claims) {
	c.Locals(CtxUserIDKey, claims.UserID)
	c.Locals(CtxUsernameKey, claims.Username)
	c.Locals(CtxRoleKey, claims.Role)
}

// UserIDFromCtx returns the authenticated caller, or uuid.Nil for
// anonymous requests.
func UserIDFromCtx(c fiber.Ctx) uuid.UUID {
	id, _ := c.Locals(CtxUserIDKey).(uuid.UUID)
	return id
}

func RoleFromCtx(c fiber.Ctx) string {
	role, _ := c.Locals(CtxRoleKey).(string)
	return role
}

func bearerTokenFromHeader(authHeader string) (string, bool) {
	authHeader = strings.TrimSpace(authHeader)
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}

	return token, true
}
