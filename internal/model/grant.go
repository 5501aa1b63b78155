package model

import "time"

// AccessGrant records a passed PIN challenge for one gated section.
type AccessGrant struct {
	Granted   bool      `json:"granted"`
	ExpiresAt time.Time `json:"expires_at"`
	Attempts  int       `json:"attempts"`
}

// Valid reports whether the grant still unlocks its section at now.
func (g AccessGrant) Valid(now time.Time) bool {
	return g.Granted && now.Before(g.ExpiresAt)
}
