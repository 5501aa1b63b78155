package model

import "time"

// Lottery is a giveaway run by the platform. Winners are drawn by the API.
type Lottery struct {
	LotteryID    int64      `json:"lottery_id"`
	Title        string     `json:"title"`
	Prize        string     `json:"prize"`
	Status       string     `json:"status"` // draft, open, drawn, cancelled
	Participants int64      `json:"participants"`
	WinnerCount  int        `json:"winner_count"`
	Winners      []string   `json:"winners,omitempty"`
	EndsAt       time.Time  `json:"ends_at"`
	DrawnAt      *time.Time `json:"drawn_at,omitempty"`
}
