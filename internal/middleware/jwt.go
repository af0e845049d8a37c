package middleware // middleware provides shared request processing for handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/kit-rental/internal/utils"
)

// Context keys set by JWTAuth.
const (
	ctxUserEmail = "user_email"
	ctxRole      = "role"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and stores the subject (the user's email) and role claims in the
// request context.  The secret must match the one used when issuing
// tokens.  Handlers read the values back with UserEmail and Role.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			claims, err := utils.ParseAccessToken(secret, strings.TrimPrefix(auth, "Bearer "))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			c.Set(ctxUserEmail, claims.Email)
			c.Set(ctxRole, claims.Role)
			return next(c)
		}
	}
}

// UserEmail returns the authenticated user's email, or "" outside JWTAuth.
func UserEmail(c echo.Context) string {
	s, _ := c.Get(ctxUserEmail).(string)
	return s
}

// Role returns the authenticated user's role, or "".
func Role(c echo.Context) string {
	s, _ := c.Get(ctxRole).(string)
	return s
}

// identity is the caller key used for rate limiting: the user's email when
// authenticated, else "anon".
func identity(c echo.Context) string {
	if s := UserEmail(c); s != "" {
		return s
	}
	return "anon"
}
