package models

import "time"

type ClassSession struct {
	ID           int64     `json:"id"`
	ClassTypeID  int64     `json:"class_type_id"`
	InstructorID int64     `json:"instructor_id"`
	StartsAt     time.Time `json:"starts_at"`
	EndsAt       time.Time `json:"ends_at"`
	Capacity     int       `json:"capacity"`
	Location     *string   `json:"location,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Availability is what the schedule endpoints report for a session.
// RemainingSpots is clamped at zero even if the booked count somehow
// exceeds capacity upstream.
type Availability struct {
	Capacity        int  `json:"capacity"`
	BookedCount     int  `json:"booked_count"`
	RemainingSpots  int  `json:"remaining_spots"`
	IsFull          bool `json:"is_full"`
	CanJoinWaitlist bool `json:"can_join_waitlist"`
}

type SessionDetail struct {
	ClassSession
	ClassTypeName  string        `json:"class_type_name"`
	InstructorName string        `json:"instructor_name"`
	Availability   *Availability `json:"availability,omitempty"`
}
