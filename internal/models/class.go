package models

import "time"

type ClassType struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Description     *string   `json:"description,omitempty"`
	DurationMinutes int       `json:"duration_minutes"`
	DefaultCapacity int       `json:"default_capacity"`
	Difficulty      string    `json:"difficulty"`
	PriceCents      int64     `json:"price_cents"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type Instructor struct {
	ID        int64     `json:"id"`
	UserID    *int64    `json:"user_id,omitempty"`
	FullName  string    `json:"full_name"`
	Bio       *string   `json:"bio,omitempty"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
