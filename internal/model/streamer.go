package model

import "time"

// Streamer is a streamer profile linked to a platform account.
type Streamer struct {
	StreamerID int64     `json:"streamer_id"`
	UserID     int64     `json:"user_id"`
	Name       string    `json:"name"`
	Platform   string    `json:"platform"` // twitch, kick, youtube
	ChannelURL string    `json:"channel_url"`
	Status     string    `json:"status"` // pending, approved, rejected, banned
	Followers  int64     `json:"followers"`
	IsLive     bool      `json:"is_live"`
	CreatedAt  time.Time `json:"created_at"`
}

// StreamerPost is a post published by a streamer, subject to moderation.
type StreamerPost struct {
	PostID     int64     `json:"post_id"`
	StreamerID int64     `json:"streamer_id"`
	Streamer   string    `json:"streamer"`
	Content    string    `json:"content"`
	MediaURL   string    `json:"media_url,omitempty"`
	Status     string    `json:"status"` // pending, approved, rejected
	Reports    int64     `json:"reports"`
	CreatedAt  time.Time `json:"created_at"`
}
