// Package scoring turns a race day's races, bets and banker picks into
// per-user point totals. Everything here is pure: scores are reproducible
// from stored race-day data alone.
package scoring

import (
	"sort"

	"github.com/padraicbc/betapi/models"
)

// Score computes userID's total for the day. Each correctly picked winner
// pays the winning horse's odds-derived points; a winning banker race doubles
// the entire day's total, not just that race.
func Score(day *models.RaceDay, userID string) int {
	base := 0
	for i := range day.Races {
		race := &day.Races[i]
		if race.Winner == nil {
			continue
		}
		bet, ok := day.Bets.Find(userID, race.ID)
		if !ok || bet.Horse != *race.Winner {
			continue
		}
		if horse, ok := race.HorseByNumber(*race.Winner); ok {
			base += horse.Points
		}
	}

	if bankerWon(day, userID) {
		return base * 2
	}
	return base
}

// bankerWon reports whether the user's nominated banker race resolved in
// their favour: the race has a winner and it matches the user's bet there.
func bankerWon(day *models.RaceDay, userID string) bool {
	raceID, ok := day.Bankers[userID]
	if !ok {
		return false
	}
	race, ok := day.RaceByID(raceID)
	if !ok || race.Winner == nil {
		return false
	}
	bet, ok := day.Bets.Find(userID, raceID)
	return ok && bet.Horse == *race.Winner
}

// DailyScores computes ranked score records for every user on the day,
// ordered by score descending with ties broken by ascending user id.
func DailyScores(day *models.RaceDay, users []models.User) []models.DailyScoreRecord {
	records := make([]models.DailyScoreRecord, 0, len(users))
	for _, u := range users {
		records = append(records, models.DailyScoreRecord{
			UserID:     u.ID,
			Name:       u.Name,
			DailyScore: Score(day, u.ID),
		})
	}

	sort.SliceStable(records, func(i, j int) bool {
		if records[i].DailyScore != records[j].DailyScore {
			return records[i].DailyScore > records[j].DailyScore
		}
		return records[i].UserID < records[j].UserID
	})
	for i := range records {
		records[i].Rank = i + 1
	}
	return records
}
