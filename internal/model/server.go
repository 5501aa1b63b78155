package model

import "time"

// Server is a game server listing submitted for approval.
type Server struct {
	ServerID    int64      `json:"server_id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Game        string     `json:"game"`
	Website     string     `json:"website,omitempty"`
	Discord     string     `json:"discord,omitempty"`
	OwnerID     int64      `json:"owner_id"`
	Status      string     `json:"status"` // pending, approved, rejected
	Votes       int64      `json:"votes"`
	Tags        []string   `json:"tags,omitempty"`
	OpeningDate *time.Time `json:"opening_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
