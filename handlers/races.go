package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/padraicbc/betapi/models"
)

type resultRequest struct {
	Winner *int `json:"winner"`
}

type scrapeResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Races   int    `json:"races"`
}

// Races returns the current race day's races.
func (h *Handler) Races(c echo.Context) error {
	day, err := h.store.Current(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	if day == nil {
		return c.JSON(http.StatusOK, []models.Race{})
	}
	return c.JSON(http.StatusOK, day.Races)
}

// Scrape pulls today's card from the racecard feed and creates (or replaces)
// the current race day. An empty card is reported as such, not as a failure.
func (h *Handler) Scrape(c echo.Context) error {
	ctx := c.Request().Context()
	date := c.QueryParam("date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	replace := c.QueryParam("replace") == "true"

	if h.fetcher == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "no racecard feed configured")
	}

	races, err := h.fetcher.Fetch(ctx, date)
	if err != nil {
		h.log.Warn("scrape: feed failed", zap.String("date", date), zap.Error(err))
		races = nil
	}
	if len(races) == 0 {
		return c.JSON(http.StatusOK, scrapeResponse{
			Success: true,
			Message: "no races available for " + date,
		})
	}

	day, err := h.store.CreateRaceDay(ctx, date, races, replace)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, scrapeResponse{
		Success: true,
		Message: "race day " + day.Date + " created",
		Races:   len(day.Races),
	})
}

// Result records the winner for one race in the current day.
func (h *Handler) Result(c echo.Context) error {
	raceID := c.Param("raceID")

	var req resultRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Winner == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "winner is required")
	}

	if err := h.store.SetWinner(c.Request().Context(), raceID, *req.Winner); err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "winner recorded for race " + raceID,
	})
}

// Reset rolls the current race day over into history and opens the betting
// namespace for the next day.
func (h *Handler) Reset(c echo.Context) error {
	nextDate := c.QueryParam("nextDate")

	res, err := h.store.Rollover(c.Request().Context(), nextDate)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"date":    res.Date,
		"scores":  res.Scores,
	})
}
