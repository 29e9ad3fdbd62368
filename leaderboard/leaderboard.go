// Package leaderboard combines live current-day scores with stored historical
// totals into ranked standings.
package leaderboard

import (
	"context"
	"sort"

	"github.com/padraicbc/betapi/models"
	"github.com/padraicbc/betapi/racing"
	"github.com/padraicbc/betapi/scoring"
)

// Entry is one ranked leaderboard row.
type Entry struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Score  int    `json:"score"`
	Rank   int    `json:"rank"`
}

// Board answers ranking queries over the race-day store.
type Board struct {
	store *racing.Store
}

// New creates a Board over the given store.
func New(store *racing.Store) *Board {
	return &Board{store: store}
}

// Overall returns cumulative standings: each user's materialized historical
// total plus their live score on the current day, if one exists. Equal scores
// order ascending by user id.
func (b *Board) Overall(ctx context.Context) ([]Entry, error) {
	users, err := b.store.Users(ctx)
	if err != nil {
		return nil, err
	}
	day, err := b.store.Current(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(users))
	for _, u := range users {
		score := u.TotalScore
		if day != nil {
			score += scoring.Score(day, u.ID)
		}
		entries = append(entries, Entry{UserID: u.ID, Name: u.Name, Score: score})
	}

	rank(entries)
	return entries, nil
}

// CurrentDay returns standings for the current day only, without historical
// totals. No current day means an empty board.
func (b *Board) CurrentDay(ctx context.Context) ([]Entry, error) {
	day, err := b.store.Current(ctx)
	if err != nil {
		return nil, err
	}
	if day == nil {
		return []Entry{}, nil
	}

	users, err := b.store.Users(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(users))
	for _, u := range users {
		entries = append(entries, Entry{UserID: u.ID, Name: u.Name, Score: scoring.Score(day, u.ID)})
	}

	rank(entries)
	return entries, nil
}

// HistoricalIndex is a thin pass-through to the race-day index, used to
// populate day pickers.
func (b *Board) HistoricalIndex(ctx context.Context) ([]models.IndexEntry, error) {
	idx, err := b.store.Index(ctx)
	if err != nil {
		return nil, err
	}
	return idx.Days, nil
}

func rank(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].UserID < entries[j].UserID
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
}
