package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/padraicbc/betapi/models"
)

// RaceDayIndex lists all known race days without their payloads.
func (h *Handler) RaceDayIndex(c echo.Context) error {
	idx, err := h.store.Index(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, idx)
}

// CurrentRaceDay returns the full current race day, or null when none is open.
func (h *Handler) CurrentRaceDay(c echo.Context) error {
	day, err := h.store.Current(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"data": day})
}

// RaceDayByDate returns the full payload for one race day, current or
// historical.
func (h *Handler) RaceDayByDate(c echo.Context) error {
	day, err := h.store.ByDate(c.Request().Context(), c.Param("date"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, day)
}

// DeleteRaceDay removes a historical race day and its index entry.
func (h *Handler) DeleteRaceDay(c echo.Context) error {
	date := c.Param("date")
	if err := h.store.DeleteRaceDay(c.Request().Context(), date); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "race day " + date + " deleted",
	})
}

// HistoricalRaceDays lists only the finalized days, for the day picker.
func (h *Handler) HistoricalRaceDays(c echo.Context) error {
	idx, err := h.store.Index(c.Request().Context())
	if err != nil {
		return httpError(err)
	}

	historical := make([]models.IndexEntry, 0, len(idx.Days))
	for _, d := range idx.Days {
		if d.Status == models.DayHistorical {
			historical = append(historical, d)
		}
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success":            true,
		"historicalRaceDays": historical,
	})
}

// Leaderboard returns cumulative standings across all race days.
func (h *Handler) Leaderboard(c echo.Context) error {
	entries, err := h.board.Overall(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "leaderboard": entries})
}

// CurrentLeaderboard returns standings for the current day only.
func (h *Handler) CurrentLeaderboard(c echo.Context) error {
	entries, err := h.board.CurrentDay(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "scores": entries})
}
