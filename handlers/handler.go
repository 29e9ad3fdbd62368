package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/padraicbc/betapi/leaderboard"
	"github.com/padraicbc/betapi/models"
	"github.com/padraicbc/betapi/racing"
	"github.com/padraicbc/betapi/scraper"
)

// Handler holds shared dependencies used by all route handlers.
type Handler struct {
	store        *racing.Store
	board        *leaderboard.Board
	fetcher      scraper.Fetcher
	log          *zap.Logger
	JWTKey       []byte
	AdminKeyHash string
}

// New creates a Handler wired to the store, leaderboard, racecard fetcher and
// admin gate secrets.
func New(store *racing.Store, board *leaderboard.Board, fetcher scraper.Fetcher,
	log *zap.Logger, jwtKey []byte, adminKeyHash string) *Handler {
	return &Handler{
		store:        store,
		board:        board,
		fetcher:      fetcher,
		log:          log,
		JWTKey:       jwtKey,
		AdminKeyHash: adminKeyHash,
	}
}

// httpError maps a domain error onto an HTTP status, keeping the structured
// message intact for the UI. Non-domain errors become opaque 500s.
func httpError(err error) *echo.HTTPError {
	switch models.KindOf(err) {
	case models.KindNotFound:
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case models.KindConflict, models.KindAlreadyRolledOver:
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case models.KindValidation, models.KindBettingClosed, models.KindNoBet:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case models.KindStorage:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
