package service

import "time"

// Bodies accepted by resource actions. Field names follow the REST API.

type UserUpdateForm struct {
	Username string `json:"username,omitempty" validate:"omitempty,min=3,max=32"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Role     string `json:"role,omitempty" validate:"omitempty,oneof=user moderator admin superadmin"`
}

type BanForm struct {
	Reason string `json:"reason" validate:"required,max=500"`
	// Days of 0 bans permanently.
	Days int `json:"days" validate:"gte=0,lte=3650"`
}

type RejectForm struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

type ServerForm struct {
	Name        string     `json:"name" validate:"required,max=120"`
	Game        string     `json:"game" validate:"required,max=60"`
	Website     string     `json:"website,omitempty" validate:"omitempty,url"`
	Discord     string     `json:"discord,omitempty" validate:"omitempty,url"`
	Tags        []string   `json:"tags,omitempty" validate:"max=10,dive,max=40"`
	OpeningDate *time.Time `json:"opening_date,omitempty"`
}

type ForumForm struct {
	Title       string `json:"title" validate:"required,max=120"`
	Description string `json:"description,omitempty" validate:"max=500"`
	IsLocked    bool   `json:"is_locked"`
}

type TagForm struct {
	Name  string `json:"name" validate:"required,max=40"`
	Color string `json:"color,omitempty" validate:"omitempty,hexcolor"`
}

type AdvertisementForm struct {
	Title     string    `json:"title" validate:"required,max=120"`
	ImageURL  string    `json:"image_url" validate:"required,url"`
	TargetURL string    `json:"target_url" validate:"required,url"`
	Placement string    `json:"placement" validate:"required,oneof=header sidebar footer home"`
	StartsAt  time.Time `json:"starts_at" validate:"required"`
	EndsAt    time.Time `json:"ends_at" validate:"required,gtfield=StartsAt"`
}

type LotteryForm struct {
	Title       string    `json:"title" validate:"required,max=120"`
	Prize       string    `json:"prize" validate:"required,max=200"`
	WinnerCount int       `json:"winner_count" validate:"required,gte=1,lte=100"`
	EndsAt      time.Time `json:"ends_at" validate:"required"`
}

type ResolveForm struct {
	Note string `json:"note,omitempty" validate:"max=1000"`
}

type ReplyForm struct {
	Message string `json:"message" validate:"required,max=5000"`
}

// SectionForm is the body of a protected section update.
type SectionForm struct {
	Values map[string]any `json:"values" validate:"required"`
}
