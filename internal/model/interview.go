package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	InterviewStatusPending    = "pending"
	InterviewStatusInProgress = "in_progress"
	InterviewStatusCompleted  = "completed"
	InterviewStatusFailed     = "failed"
)

// InterviewCreditCost is the ledger debit for one completed mock interview.
const InterviewCreditCost = 10

type Interview struct {
	ID           uint             `gorm:"primarykey" json:"id"`
	UserID       uint             `json:"user_id" gorm:"not null;index"`
	CountryID    uint             `json:"country_id" gorm:"not null"`
	Country      Country          `json:"country,omitempty" gorm:"foreignKey:CountryID"`
	VisaTypeID   uint             `json:"visa_type_id" gorm:"not null"`
	VisaType     VisaType         `json:"visa_type,omitempty" gorm:"foreignKey:VisaTypeID"`
	Name         *string          `json:"name,omitempty"`
	Status       string           `json:"status" gorm:"not null;default:'pending';index"`
	VapiCallID   *string          `json:"vapi_call_id,omitempty" gorm:"index"`
	EndedReason  *string          `json:"ended_reason,omitempty"`
	Transcript   *string          `json:"transcript,omitempty" gorm:"type:text"`
	Messages     datatypes.JSON   `json:"messages,omitempty"`
	RecordingURL *string          `json:"recording_url,omitempty"`
	Duration     *float64         `json:"duration,omitempty"`
	IsPublic     bool             `json:"is_public" gorm:"not null;default:false"`
	EndedAt      *time.Time       `json:"ended_at,omitempty"`
	Report       *InterviewReport `json:"report,omitempty" gorm:"foreignKey:InterviewID"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
	DeletedAt    gorm.DeletedAt   `gorm:"index" json:"-"`
}

// Terminal reports whether the interview reached an absorbing state.
func (i *Interview) Terminal() bool {
	return i.Status == InterviewStatusCompleted || i.Status == InterviewStatusFailed
}
