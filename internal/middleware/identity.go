package middleware

// identity.go holds the context keys set by JWTAuth and the helpers that
// read them back. Handlers and the rate limiter identify callers by
// username; requests without a token are "anon".

import "github.com/labstack/echo/v4"

const (
	ctxUsername = "username"
	ctxRole     = "role"
)

// Username returns the authenticated caller's username.
func Username(c echo.Context) (string, bool) {
	u, ok := c.Get(ctxUsername).(string)
	return u, ok && u != ""
}

// identity is Username with a fallback for anonymous callers.
func identity(c echo.Context) string {
	if u, ok := Username(c); ok {
		return u
	}
	return "anon"
}
