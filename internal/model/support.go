package model

import "time"

// Report is a user report against content or another user.
type Report struct {
	ReportID   int64      `json:"report_id"`
	ReporterID int64      `json:"reporter_id"`
	TargetType string     `json:"target_type"` // user, server, post, streamer_post
	TargetID   int64      `json:"target_id"`
	Reason     string     `json:"reason"`
	Status     string     `json:"status"` // open, resolved, dismissed
	CreatedAt  time.Time  `json:"created_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

// Ticket is a support ticket.
type Ticket struct {
	TicketID  int64     `json:"ticket_id"`
	UserID    int64     `json:"user_id"`
	Subject   string    `json:"subject"`
	Category  string    `json:"category"`
	Priority  string    `json:"priority"` // low, normal, high
	Status    string    `json:"status"`   // open, answered, closed
	Messages  int       `json:"messages"`
	UpdatedAt time.Time `json:"updated_at"`
	CreatedAt time.Time `json:"created_at"`
}
