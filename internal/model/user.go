package model

import "time"

// User is a platform account as listed by /admin/users.
type User struct {
	UserID      int64      `json:"user_id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	Status      string     `json:"status"` // active, banned
	AvatarURL   string     `json:"avatar_url,omitempty"`
	BannedUntil *time.Time `json:"banned_until,omitempty"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Profile is the signed-in user cached in per-browser storage.
type Profile struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}
