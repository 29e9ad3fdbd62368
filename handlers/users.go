package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

type createUserRequest struct {
	Name string `json:"name"`
}

// Users returns all registered players.
func (h *Handler) Users(c echo.Context) error {
	users, err := h.store.Users(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, users)
}

// CreateUser registers a new player.
func (h *Handler) CreateUser(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}

	user, err := h.store.AddUser(c.Request().Context(), req.Name)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, user)
}

// DeleteUser removes a player and their bets and banker selection.
func (h *Handler) DeleteUser(c echo.Context) error {
	userID := c.Param("id")
	if err := h.store.DeleteUser(c.Request().Context(), userID); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "user " + userID + " deleted",
	})
}
