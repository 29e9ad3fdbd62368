package models

import (
	"encoding/json"
	"sort"
)

// Bet is one user's horse pick for one race. A user holds at most one bet per
// race; placing again overwrites.
type Bet struct {
	UserID string `json:"userId"`
	RaceID string `json:"raceId"`
	Horse  int    `json:"horse"`
}

// BetList is the normalized flat bet collection. Older documents stored bets
// as a nested map of userId -> raceId -> horse number; UnmarshalJSON accepts
// both shapes so legacy race days stay readable.
type BetList []Bet

func (bl *BetList) UnmarshalJSON(data []byte) error {
	var flat []Bet
	if err := json.Unmarshal(data, &flat); err == nil {
		*bl = flat
		return nil
	}

	var legacy map[string]map[string]int
	if err := json.Unmarshal(data, &legacy); err != nil {
		return err
	}

	out := make(BetList, 0, len(legacy))
	for userID, picks := range legacy {
		for raceID, horse := range picks {
			out = append(out, Bet{UserID: userID, RaceID: raceID, Horse: horse})
		}
	}
	// Map iteration order is random; keep legacy conversions deterministic.
	sort.Slice(out, func(i, j int) bool {
		if out[i].UserID != out[j].UserID {
			return out[i].UserID < out[j].UserID
		}
		return out[i].RaceID < out[j].RaceID
	})
	*bl = out
	return nil
}

// Find returns the bet for (userID, raceID), if any.
func (bl BetList) Find(userID, raceID string) (Bet, bool) {
	for _, b := range bl {
		if b.UserID == userID && b.RaceID == raceID {
			return b, true
		}
	}
	return Bet{}, false
}

// ForUser returns all bets placed by userID.
func (bl BetList) ForUser(userID string) []Bet {
	var out []Bet
	for _, b := range bl {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out
}

// Put inserts or overwrites the bet for (bet.UserID, bet.RaceID).
func (bl BetList) Put(bet Bet) BetList {
	for i, b := range bl {
		if b.UserID == bet.UserID && b.RaceID == bet.RaceID {
			bl[i] = bet
			return bl
		}
	}
	return append(bl, bet)
}

// WithoutUser returns the list with all of userID's bets removed.
func (bl BetList) WithoutUser(userID string) BetList {
	out := make(BetList, 0, len(bl))
	for _, b := range bl {
		if b.UserID != userID {
			out = append(out, b)
		}
	}
	return out
}
