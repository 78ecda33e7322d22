package model

import (
	"time"

	"gorm.io/gorm"
)

type Country struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	Name      string         `json:"name" gorm:"not null;uniqueIndex"`
	Code      string         `json:"code" gorm:"not null"`
	FlagEmoji *string        `json:"flag_emoji,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// VisaType optionally carries its own voice-vendor credentials, which take
// precedence over the globally configured ones.
type VisaType struct {
	ID              uint           `gorm:"primarykey" json:"id"`
	CountryID       uint           `json:"country_id" gorm:"not null;index"`
	Country         Country        `json:"country,omitempty" gorm:"foreignKey:CountryID"`
	Name            string         `json:"name" gorm:"not null"`
	Description     *string        `json:"description,omitempty"`
	VapiAssistantID *string        `json:"-" gorm:"column:vapi_assistant_id"`
	VapiPublicKey   *string        `json:"-" gorm:"column:vapi_public_key"`
	VapiPrivateKey  *string        `json:"-" gorm:"column:vapi_private_key"`
	CreatedAt       time.Time      `json:"created_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}
