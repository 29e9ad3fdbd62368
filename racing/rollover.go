package racing

import (
	"context"

	"go.uber.org/zap"

	"github.com/padraicbc/betapi/models"
	"github.com/padraicbc/betapi/scoring"
)

// RolloverResult reports what a rollover closed.
type RolloverResult struct {
	Date   string                    `json:"date"`
	Scores []models.DailyScoreRecord `json:"scores"`
}

// Rollover finalizes the current race day: daily scores are computed and
// stored in the day's payload, user totals are recomputed from the full
// historical record, the day flips to historical, and the current betting
// namespace is cleared. nextDate, when non-empty, opens a fresh empty current
// day; otherwise no day is current until the next scrape.
//
// The operation is idempotent per day. A second invocation finds no current
// day and is rejected before anything is written, and totals are recomputed
// from historical records rather than incremented, so a retried or repeated
// rollover can never double-credit a score.
func (s *Store) Rollover(ctx context.Context, nextDate string) (*RolloverResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.Index(ctx)
	if err != nil {
		return nil, err
	}

	entry, ok := idx.Current()
	if !ok {
		if len(idx.Days) > 0 && idx.Days[0].Status == models.DayHistorical {
			return nil, models.AlreadyRolledOverf("race day %s already rolled over", idx.Days[0].Date)
		}
		return nil, models.Conflictf("no current race day to roll over")
	}
	date := entry.Date
	if nextDate == date {
		return nil, models.Validationf("next race day cannot reuse date %s", date)
	}
	if e, ok := idx.ByDate(nextDate); ok && e.Status == models.DayHistorical {
		return nil, models.Conflictf("race day %s is already historical", nextDate)
	}

	day, err := s.loadCurrent(ctx, date)
	if err != nil {
		return nil, err
	}
	users, err := s.Users(ctx)
	if err != nil {
		return nil, err
	}

	records := scoring.DailyScores(day, users)

	// Recompute every user's total from all historical days plus the day
	// being closed. Never increment: a retried rollover must converge on
	// the same totals.
	totals, err := s.historicalTotals(ctx, idx, date)
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		totals[r.UserID] += r.DailyScore
	}

	var udoc usersDoc
	if err := s.loadDoc(ctx, keyUsers, &udoc); err != nil && !models.IsKind(err, models.KindNotFound) {
		return nil, err
	}
	for i := range udoc.Users {
		udoc.Users[i].TotalScore = totals[udoc.Users[i].ID]
	}
	expect := udoc.Version
	udoc.Version++
	if err := s.saveDoc(ctx, keyUsers, expect, &udoc); err != nil {
		return nil, err
	}

	// Totals are durable; persisting the historical payload and flipping
	// the index are the irrevocable steps.
	day.Status = models.DayHistorical
	day.UserScores = records

	prevVersion := 0
	var stored models.RaceDay
	if err := s.loadDoc(ctx, dayKey(date), &stored); err == nil {
		prevVersion = stored.Version
	}
	day.Version = prevVersion + 1
	if err := s.saveDoc(ctx, dayKey(date), prevVersion, day); err != nil {
		return nil, err
	}

	entry.Status = models.DayHistorical
	entry.TotalRaces = len(day.Races)
	entry.CompletedRaces = day.CompletedRaces()

	if nextDate != "" {
		s.upsertIndexEntry(idx, models.IndexEntry{Date: nextDate, Status: models.DayCurrent})
	}
	if err := s.saveIndex(ctx, idx); err != nil {
		return nil, err
	}

	// Clear the betting namespace for whatever day comes next.
	var prevRaces racesDoc
	racesVersion := 0
	if err := s.loadDoc(ctx, keyCurrentRaces, &prevRaces); err == nil {
		racesVersion = prevRaces.Version
	}
	if err := s.saveDoc(ctx, keyCurrentRaces, racesVersion,
		&racesDoc{Date: nextDate, Races: []models.Race{}, Version: racesVersion + 1}); err != nil {
		return nil, err
	}
	if err := s.resetCurrentBetting(ctx); err != nil {
		return nil, err
	}

	s.log.Info("racing: race day rolled over",
		zap.String("date", date), zap.Int("users", len(records)), zap.String("nextDate", nextDate))

	return &RolloverResult{Date: date, Scores: records}, nil
}

// historicalTotals sums stored daily score records across all historical days
// except skipDate (the day being closed, whose fresh records are added by the
// caller).
func (s *Store) historicalTotals(ctx context.Context, idx *models.RaceDayIndex, skipDate string) (map[string]int, error) {
	totals := map[string]int{}
	for _, e := range idx.Days {
		if e.Status != models.DayHistorical || e.Date == skipDate {
			continue
		}
		var day models.RaceDay
		if err := s.loadDoc(ctx, dayKey(e.Date), &day); err != nil {
			if models.IsKind(err, models.KindNotFound) {
				// Index entry without a payload; nothing to credit.
				continue
			}
			return nil, err
		}
		for _, r := range day.UserScores {
			totals[r.UserID] += r.DailyScore
		}
	}
	return totals, nil
}
