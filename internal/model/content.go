package model

import "time"

// Forum is a discussion board category.
type Forum struct {
	ForumID     int64     `json:"forum_id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	TopicCount  int64     `json:"topic_count"`
	IsLocked    bool      `json:"is_locked"`
	CreatedAt   time.Time `json:"created_at"`
}

// ForumPost is a single post inside a forum topic.
type ForumPost struct {
	PostID    int64     `json:"post_id"`
	ForumID   int64     `json:"forum_id"`
	AuthorID  int64     `json:"author_id"`
	Author    string    `json:"author"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// Tag labels servers and posts.
type Tag struct {
	TagID     int64     `json:"tag_id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Color     string    `json:"color,omitempty"`
	UsedBy    int64     `json:"used_by"`
	CreatedAt time.Time `json:"created_at"`
}

// Advertisement is a banner slot booking.
type Advertisement struct {
	AdID        int64     `json:"ad_id"`
	Title       string    `json:"title"`
	ImageURL    string    `json:"image_url"`
	TargetURL   string    `json:"target_url"`
	Placement   string    `json:"placement"`
	IsActive    bool      `json:"is_active"`
	Impressions int64     `json:"impressions"`
	Clicks      int64     `json:"clicks"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
}
