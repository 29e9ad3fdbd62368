package models

// RaceDay status values. Exactly one day is current at any time; historical
// days are immutable apart from score recomputation.
const (
	DayCurrent    = "current"
	DayHistorical = "historical"
)

// DailyScoreRecord is the materialized per-user score stored inside a closed
// race day, so historical leaderboard reads never re-derive from raw bets.
type DailyScoreRecord struct {
	UserID     string `json:"userId"`
	Name       string `json:"name"`
	DailyScore int    `json:"dailyScore"`
	Rank       int    `json:"rank"`
}

// RaceDay bundles one calendar date's races, bets and banker picks.
// Bankers maps userId -> raceId, at most one entry per user.
type RaceDay struct {
	Date       string             `json:"date"`
	Races      []Race             `json:"races"`
	Bets       BetList            `json:"bets"`
	Bankers    map[string]string  `json:"bankers"`
	Status     string             `json:"status"`
	UserScores []DailyScoreRecord `json:"userScores,omitempty"`
	Version    int                `json:"version"`
}

// RaceByID returns the race with the given id, if present.
func (d *RaceDay) RaceByID(raceID string) (*Race, bool) {
	for i := range d.Races {
		if d.Races[i].ID == raceID {
			return &d.Races[i], true
		}
	}
	return nil, false
}

// CompletedRaces counts races with a recorded winner.
func (d *RaceDay) CompletedRaces() int {
	n := 0
	for i := range d.Races {
		if d.Races[i].Winner != nil {
			n++
		}
	}
	return n
}

// IndexEntry is the lightweight per-day record kept in the race-day index so
// listings never load full payloads.
type IndexEntry struct {
	Date           string `json:"date"`
	Status         string `json:"status"`
	TotalRaces     int    `json:"totalRaces"`
	CompletedRaces int    `json:"completedRaces"`
}

// RaceDayIndex enumerates all known race days, newest first.
type RaceDayIndex struct {
	Days    []IndexEntry `json:"raceDays"`
	Version int          `json:"version"`
}

// Current returns the index entry marked current, if any.
func (idx *RaceDayIndex) Current() (*IndexEntry, bool) {
	for i := range idx.Days {
		if idx.Days[i].Status == DayCurrent {
			return &idx.Days[i], true
		}
	}
	return nil, false
}

// ByDate returns the entry for date, if present.
func (idx *RaceDayIndex) ByDate(date string) (*IndexEntry, bool) {
	for i := range idx.Days {
		if idx.Days[i].Date == date {
			return &idx.Days[i], true
		}
	}
	return nil, false
}
