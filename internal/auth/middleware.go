package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// userIDKey is the echo context key the middleware stores the caller under.
const userIDKey = "auth.userID"

// Middleware rejects requests without a valid bearer token and records the
// calling user on the request context.
func Middleware(verifier *Verifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := FromHeader(c.Request().Header.Get("Authorization"))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing or malformed token"})
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid or expired token"})
			}

			c.Set(userIDKey, claims.UserID)
			return next(c)
		}
	}
}

// UserID returns the authenticated caller set by Middleware, or "" on
// unauthenticated routes.
func UserID(c echo.Context) string {
	id, _ := c.Get(userIDKey).(string)
	return id
}
