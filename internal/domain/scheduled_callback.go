package domain

import (
	"time"
)

// CallbackStatus represents the lifecycle state of a scheduled callback.
// The only legal transition is scheduled -> completed, exactly once.
type CallbackStatus string

const (
	CallbackStatusScheduled CallbackStatus = "scheduled"
	CallbackStatusCompleted CallbackStatus = "completed"
)

// ConfidenceLevel buckets a predicted score into a coarse confidence band.
type ConfidenceLevel string

const (
	ConfidenceVeryLow ConfidenceLevel = "very_low"
	ConfidenceLow     ConfidenceLevel = "low"
	ConfidenceMedium  ConfidenceLevel = "medium"
	ConfidenceHigh    ConfidenceLevel = "high"
)

// ConfidenceForScore maps a predicted score onto its confidence band.
// It is a pure function of the score: >=80 high, >=60 medium, >=40 low,
// otherwise very_low.
func ConfidenceForScore(score float64) ConfidenceLevel {
	switch {
	case score >= 80:
		return ConfidenceHigh
	case score >= 60:
		return ConfidenceMedium
	case score >= 40:
		return ConfidenceLow
	default:
		return ConfidenceVeryLow
	}
}

// ScheduledCallback is a persisted prediction recommending a future point
// in time to retry a contact. Rows are created by the callback scheduler
// with status=scheduled and are mutated exactly once, when the real-world
// outcome of the slot becomes known. They are never deleted; completed
// rows are the audit trail for prediction accuracy.
type ScheduledCallback struct {
	ID             string          `json:"id" db:"id" gorm:"column:id;primaryKey"`
	ContactID      string          `json:"contact_id" db:"contact_id" gorm:"column:contact_id;index"`
	ScheduledTime  time.Time       `json:"scheduled_time" db:"scheduled_time" gorm:"column:scheduled_time;index"`
	PredictedScore float64         `json:"predicted_score" db:"predicted_score" gorm:"column:predicted_score"`
	Confidence     ConfidenceLevel `json:"confidence" db:"confidence" gorm:"column:confidence"`
	Status         CallbackStatus  `json:"status" db:"status" gorm:"column:status;index"`
	DayRank        int             `json:"day_rank" db:"day_rank" gorm:"column:day_rank"`

	// Set only on completion.
	ActualOutcome      Outcome    `json:"actual_outcome,omitempty" db:"actual_outcome" gorm:"column:actual_outcome"`
	ActualScore        *float64   `json:"actual_score,omitempty" db:"actual_score" gorm:"column:actual_score"`
	PredictionAccuracy *float64   `json:"prediction_accuracy,omitempty" db:"prediction_accuracy" gorm:"column:prediction_accuracy"`
	CompletedAt        *time.Time `json:"completed_at,omitempty" db:"completed_at" gorm:"column:completed_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at" gorm:"column:updated_at"`
}

func (ScheduledCallback) TableName() string {
	return "scheduled_callbacks"
}

// CallbackCompletion carries the fields written during the single
// scheduled -> completed transition.
type CallbackCompletion struct {
	ActualOutcome      Outcome
	ActualScore        float64
	PredictionAccuracy float64
	CompletedAt        time.Time
}
