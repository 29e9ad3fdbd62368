package models

// Horse is a runner within a race. Points is derived from Odds and must be
// recomputed whenever odds are set.
type Horse struct {
	Number int     `json:"number"`
	Name   string  `json:"name"`
	Odds   float64 `json:"odds"`
	Points int     `json:"points"`
}

// PointsForOdds maps win odds onto the tiered point scale: long shots pay 3,
// mid-priced runners 2, favourites 1.
func PointsForOdds(odds float64) int {
	switch {
	case odds > 10.0:
		return 3
	case odds > 5.0:
		return 2
	default:
		return 1
	}
}

// SetOdds updates the odds and recomputes the derived points.
func (h *Horse) SetOdds(odds float64) {
	h.Odds = odds
	h.Points = PointsForOdds(odds)
}
