package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"

	"github.com/padraicbc/betapi/config"
	"github.com/padraicbc/betapi/handlers"
	"github.com/padraicbc/betapi/leaderboard"
	applog "github.com/padraicbc/betapi/logger"
	mw "github.com/padraicbc/betapi/middleware"
	"github.com/padraicbc/betapi/racing"
	"github.com/padraicbc/betapi/scraper"
	"github.com/padraicbc/betapi/storage"
)

func main() {
	cfg := config.Load()
	logger, err := applog.New(cfg.Debug)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	gw, err := storage.Setup(cfg, logger)
	if err != nil {
		logger.Fatal("storage setup failed", zap.Error(err))
	}

	store := racing.NewStore(gw, logger)
	if err := store.Init(context.Background()); err != nil {
		logger.Fatal("store init failed", zap.Error(err))
	}
	board := leaderboard.New(store)

	var fetcher scraper.Fetcher
	if cfg.FeedURL != "" {
		fetcher = scraper.NewFeedClient(cfg.FeedURL, cfg.FeedSource)
	}

	h := handlers.New(store, board, fetcher, logger, cfg.JWTKey(), cfg.AdminKeyHash)

	e := echo.New()
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod: true,
		LogURI:    true,
		LogStatus: true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.Int("status", v.Status),
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			switch {
			case v.Status >= 500:
				logger.Error("http request", fields...)
			case v.Status >= 400:
				logger.Warn("http request", fields...)
			default:
				logger.Info("http request", fields...)
			}
			return nil
		},
	}))
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"*", "Authorization"},
		AllowCredentials: true,
	}))

	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "OK",
			"message": "horse racing betting API is running",
		})
	})

	// Public - players read and bet without authenticating.
	api := e.Group("/api")
	api.GET("/races", h.Races)
	api.GET("/bets", h.Bets)
	api.POST("/bets", h.PlaceBet)
	api.GET("/bankers", h.Bankers)
	api.POST("/bankers", h.SetBanker)
	api.GET("/users", h.Users)
	api.GET("/race-days/index", h.RaceDayIndex)
	api.GET("/race-days/current", h.CurrentRaceDay)
	api.GET("/race-days/historical", h.HistoricalRaceDays)
	api.GET("/race-days/leaderboard", h.Leaderboard)
	api.GET("/race-days/leaderboard/current", h.CurrentLeaderboard)
	api.GET("/race-days/:date", h.RaceDayByDate)
	api.POST("/admin/signin", h.AdminSignin)

	// Admin - mutations behind the shared-secret JWT gate.
	admin := api.Group("", mw.Admin(cfg.JWTKey()))
	admin.POST("/races/scrape", h.Scrape)
	admin.POST("/races/:raceID/result", h.Result)
	admin.POST("/reset", h.Reset)
	admin.DELETE("/race-days/:date", h.DeleteRaceDay)
	admin.POST("/users", h.CreateUser)
	admin.DELETE("/users/:id", h.DeleteUser)

	if cfg.Debug {
		logger.Info("starting server", zap.String("mode", "debug"), zap.String("addr", cfg.Port))
		if err := e.Start(cfg.Port); err != nil {
			logger.Fatal("server exited", zap.Error(err))
		}
		return
	}

	autoTLS := &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		Cache:      autocert.DirCache(".cache"),
		HostPolicy: autocert.HostWhitelist(cfg.TLSDomains...),
	}

	s := &http.Server{
		Addr:         ":443",
		Handler:      e,
		TLSConfig:    autoTLS.TLSConfig(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	if err := s.ListenAndServeTLS("", ""); err != http.ErrServerClosed {
		logger.Error("tls server exited", zap.Error(err))
		os.Exit(1)
	}
}
