package models

import "fmt"

// Race status values. InProgress is advisory; a race is Completed once its
// winner is recorded.
const (
	RaceUpcoming   = "upcoming"
	RaceInProgress = "in_progress"
	RaceCompleted  = "completed"
)

// Race is a single race on a race day. ID is globally unique in the form
// {source}_{raceNumber}_{date}. Winner is a horse number, nil until known.
type Race struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Time   string  `json:"time"`
	Horses []Horse `json:"horses"`
	Winner *int    `json:"winner"`
	Status string  `json:"status"`
}

// RaceID builds the canonical race identifier.
func RaceID(source string, raceNumber int, date string) string {
	return fmt.Sprintf("%s_%d_%s", source, raceNumber, date)
}

// HorseByNumber returns the horse with the given card number, if present.
func (r *Race) HorseByNumber(number int) (*Horse, bool) {
	for i := range r.Horses {
		if r.Horses[i].Number == number {
			return &r.Horses[i], true
		}
	}
	return nil, false
}

// Completed reports whether the race result is in.
func (r *Race) Completed() bool {
	return r.Status == RaceCompleted || r.Winner != nil
}

// SetWinner records the result and flips the race to completed. The horse
// number must reference an existing runner.
func (r *Race) SetWinner(number int) error {
	if _, ok := r.HorseByNumber(number); !ok {
		return NotFoundf("horse #%d not found in race %s", number, r.ID)
	}
	r.Winner = &number
	r.Status = RaceCompleted
	return nil
}
