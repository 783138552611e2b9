package middleware // package middleware contains reusable HTTP middleware functions

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/game-rental/internal/service"
	"github.com/iliyamo/game-rental/internal/utils"
)

// TokenParser validates a raw bearer token. *utils.TokenService satisfies it.
type TokenParser interface {
	Parse(raw string) (*utils.Claims, error)
}

// JWTAuth returns an Echo middleware that requires a valid Bearer access
// token and stores its subject and role in the context under "username"
// and "role".
func JWTAuth(tokens TokenParser) echo.MiddlewareFunc {
	return bearer(tokens, true)
}

// OptionalJWT authenticates the caller when an Authorization header is
// present and lets anonymous requests through. A header carrying a bad
// token is still rejected.
func OptionalJWT(tokens TokenParser) echo.MiddlewareFunc {
	return bearer(tokens, false)
}

func bearer(tokens TokenParser, required bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			if auth == "" && !required {
				return next(c)
			}
			if !strings.HasPrefix(auth, "Bearer ") {
				return unauthorized(c, "missing bearer token")
			}
			claims, err := tokens.Parse(strings.TrimSpace(strings.TrimPrefix(auth, "Bearer ")))
			if err != nil {
				return unauthorized(c, "invalid token")
			}
			c.Set(ctxUsername, claims.Subject)
			c.Set(ctxRole, claims.Role)
			return next(c)
		}
	}
}

func unauthorized(c echo.Context, msg string) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{
		"error":   service.KindUserUnauthorized,
		"message": msg,
	})
}
