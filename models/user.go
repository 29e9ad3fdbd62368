package models

// User is a pool player. TotalScore is the materialized sum of the user's
// historical daily scores; only rollover writes it.
type User struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	TotalScore int    `json:"totalScore"`
}
