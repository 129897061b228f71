package domain

import (
	"time"
)

// Contact represents a lead pulled from the external CRM. The scheduling
// core only reads contacts; the CRM remains the system of record.
type Contact struct {
	ID             string    `json:"id" db:"id" gorm:"column:id;primaryKey"`
	ExternalID     string    `json:"external_id" db:"external_id" gorm:"column:external_id;unique"`
	Name           string    `json:"name" db:"name" gorm:"column:name"`
	PhoneNumber    string    `json:"phone_number" db:"phone_number" gorm:"column:phone_number"`
	PhoneLineType  string    `json:"phone_line_type,omitempty" db:"phone_line_type" gorm:"column:phone_line_type"`
	ProjectType    string    `json:"project_type" db:"project_type" gorm:"column:project_type"`
	Classification string    `json:"classification" db:"classification" gorm:"column:classification"`
	Notes          string    `json:"notes,omitempty" db:"notes" gorm:"column:notes"`
	Metadata       JSONB     `json:"metadata,omitempty" db:"metadata" gorm:"column:metadata;type:jsonb"`
	CreatedAt      time.Time `json:"created_at" db:"created_at" gorm:"column:created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at" gorm:"column:updated_at"`
}

func (Contact) TableName() string {
	return "contacts"
}
