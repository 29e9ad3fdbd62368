package handlers

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	mw "github.com/padraicbc/betapi/middleware"
)

type signinRequest struct {
	Key string `json:"key"`
}

// AdminSignin validates the shared admin secret against its stored bcrypt
// hash and returns a JWT valid for 30 days. Players never authenticate; this
// gate only protects the admin operations (scrape, results, reset, users).
func (h *Handler) AdminSignin(c echo.Context) error {
	var req signinRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := bcrypt.CompareHashAndPassword([]byte(h.AdminKeyHash), []byte(req.Key)); err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	claims := &mw.Claims{
		Role: mw.AdminRole,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().AddDate(0, 0, 30)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(h.JWTKey)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]string{"token": tokenString})
}
