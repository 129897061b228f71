package domain

import (
	"time"
)

// ContactAttempt is an immutable log entry recording one real-world
// contact attempt and its outcome. Rows are append-only: they are the
// ground truth for every pattern aggregation and are never mutated or
// deleted.
type ContactAttempt struct {
	ID              string    `json:"id" db:"id" gorm:"column:id;primaryKey"`
	ContactID       string    `json:"contact_id" db:"contact_id" gorm:"column:contact_id;index"`
	AttemptedAt     time.Time `json:"attempted_at" db:"attempted_at" gorm:"column:attempted_at;index"`
	Outcome         Outcome   `json:"outcome" db:"outcome" gorm:"column:outcome"`
	DurationSeconds int       `json:"duration_seconds" db:"duration_seconds" gorm:"column:duration_seconds"`
	// Weekday and HourOfDay are derived from AttemptedAt at write time so
	// pattern aggregation never needs per-row timestamp math.
	Weekday       int       `json:"weekday" db:"weekday" gorm:"column:weekday"`
	HourOfDay     int       `json:"hour_of_day" db:"hour_of_day" gorm:"column:hour_of_day"`
	AttemptNumber int       `json:"attempt_number,omitempty" db:"attempt_number" gorm:"column:attempt_number"`
	Notes         string    `json:"notes,omitempty" db:"notes" gorm:"column:notes"`
	CreatedAt     time.Time `json:"created_at" db:"created_at" gorm:"column:created_at"`
}

func (ContactAttempt) TableName() string {
	return "contact_attempts"
}
