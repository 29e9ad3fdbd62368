package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type betRequest struct {
	UserID      string `json:"userId"`
	RaceID      string `json:"raceId"`
	HorseNumber int    `json:"horseNumber"`
}

type bankerRequest struct {
	UserID string `json:"userId"`
	RaceID string `json:"raceId"`
}

// Bets returns the current day's bets, optionally for a single user.
func (h *Handler) Bets(c echo.Context) error {
	ctx := c.Request().Context()

	if userID := c.QueryParam("userId"); userID != "" {
		bets, err := h.store.BetsFor(ctx, userID)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, bets)
	}

	bets, err := h.store.AllBets(ctx)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, bets)
}

// PlaceBet records a user's horse pick for a race.
func (h *Handler) PlaceBet(c echo.Context) error {
	var req betRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.UserID == "" || req.RaceID == "" || req.HorseNumber == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "userId, raceId and horseNumber are required")
	}

	if err := h.store.PlaceBet(c.Request().Context(), req.UserID, req.RaceID, req.HorseNumber); err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "bet placed on horse in race " + req.RaceID,
	})
}

// Bankers returns the current day's banker selections (userId -> raceId), or
// a single user's nominated race.
func (h *Handler) Bankers(c echo.Context) error {
	ctx := c.Request().Context()

	if userID := c.QueryParam("userId"); userID != "" {
		raceID, err := h.store.BankerFor(ctx, userID)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, map[string]string{"userId": userID, "raceId": raceID})
	}

	bankers, err := h.store.AllBankers(ctx)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, bankers)
}

// SetBanker nominates a race as the user's banker for the day.
func (h *Handler) SetBanker(c echo.Context) error {
	var req bankerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.UserID == "" || req.RaceID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "userId and raceId are required")
	}

	if err := h.store.SetBanker(c.Request().Context(), req.UserID, req.RaceID); err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "banker set to race " + req.RaceID,
	})
}
