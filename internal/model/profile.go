package model

import (
	"time"

	"gorm.io/gorm"
)

// StarterCredits is granted to every new profile.
const StarterCredits = 20

// Profile carries the user's spendable credit balance. The balance is only
// mutated through the ledger service; it never goes negative.
type Profile struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	UserID    uint           `json:"user_id" gorm:"not null;uniqueIndex"`
	Email     *string        `json:"email,omitempty"`
	FullName  *string        `json:"full_name,omitempty"`
	AvatarURL *string        `json:"avatar_url,omitempty"`
	Credits   int            `json:"credits" gorm:"not null;default:0"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// CreditGrant is the audit row for a manual credit addition by an admin.
type CreditGrant struct {
	ID        uint       `gorm:"primarykey" json:"id"`
	UserID    uint       `json:"user_id" gorm:"not null;index"`
	GrantedBy uint       `json:"granted_by" gorm:"not null"`
	Credits   int        `json:"credits" gorm:"not null"`
	Reason    *string    `json:"reason,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
