package models

// User is a durable player record. The id is the externally issued
// player identifier; TotalScore accumulates per-game scores at finish.
type User struct {
	ID         string `json:"id"`
	TotalScore int    `json:"totalScore"`
}
