// Package scraper consumes the racecard collaborator. The core treats it as a
// black-box producer of races: an empty result means "no races available
// today", never an error worth retrying.
package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/padraicbc/betapi/models"
)

// Fetcher produces the races for a given date.
type Fetcher interface {
	Fetch(ctx context.Context, date string) ([]models.Race, error)
}

// FeedClient reads a JSON racecard feed over HTTP. The upstream scraper
// process publishes cards in the shape below; race ids are derived here so
// the feed doesn't have to know our id scheme.
type FeedClient struct {
	url    string
	source string
	hc     *http.Client
}

// NewFeedClient builds a client for the feed at feedURL. source tags the race
// ids ("smspariaz_3_2025-03-08").
func NewFeedClient(feedURL, source string) *FeedClient {
	return &FeedClient{
		url:    feedURL,
		source: source,
		hc:     &http.Client{Timeout: 15 * time.Second},
	}
}

type feedHorse struct {
	Number int     `json:"number"`
	Name   string  `json:"name"`
	Odds   float64 `json:"odds"`
}

type feedRace struct {
	RaceNumber int         `json:"raceNumber"`
	Name       string      `json:"name"`
	Time       string      `json:"time"`
	Horses     []feedHorse `json:"horses"`
}

// Fetch returns the card for date. A 404 or an empty card is not an error.
func (c *FeedClient) Fetch(ctx context.Context, date string) ([]models.Race, error) {
	u := fmt.Sprintf("%s?date=%s", c.url, url.QueryEscape(date))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("racecard feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("racecard feed: unexpected status %d", resp.StatusCode)
	}

	var card []feedRace
	if err := json.NewDecoder(resp.Body).Decode(&card); err != nil {
		return nil, fmt.Errorf("racecard feed: decode: %w", err)
	}

	races := make([]models.Race, 0, len(card))
	for _, fr := range card {
		race := models.Race{
			ID:     models.RaceID(c.source, fr.RaceNumber, date),
			Name:   fr.Name,
			Time:   fr.Time,
			Status: models.RaceUpcoming,
		}
		if race.Name == "" {
			race.Name = fmt.Sprintf("Race %d", fr.RaceNumber)
		}
		for _, fh := range fr.Horses {
			race.Horses = append(race.Horses, models.Horse{
				Number: fh.Number,
				Name:   fh.Name,
				Odds:   fh.Odds,
				Points: models.PointsForOdds(fh.Odds),
			})
		}
		races = append(races, race)
	}
	return races, nil
}
