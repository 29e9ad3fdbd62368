package middleware

import (
	"errors"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// AdminRole is the only role the pool knows; the admin gate is a shared
// secret, not a user model.
const AdminRole = "admin"

// Claims extends jwt.RegisteredClaims with the role granted at signin.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Admin returns an Echo middleware that validates the Authorization header
// token using the provided signing key and requires the admin role.
func Admin(key []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := c.Request().Header.Get("Authorization")
			if token == "" {
				return echo.NewHTTPError(http.StatusBadRequest, "missing authorization header")
			}

			claims := &Claims{}
			tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
				return key, nil
			})
			if err != nil {
				if errors.Is(err, jwt.ErrSignatureInvalid) {
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid token signature")
				}
				return echo.NewHTTPError(http.StatusBadRequest, err.Error())
			}
			if !tkn.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}
			if claims.Role != AdminRole {
				return echo.NewHTTPError(http.StatusForbidden, "admin access required")
			}

			c.Set("role", claims.Role)
			return next(c)
		}
	}
}
