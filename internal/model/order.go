package model

import (
	"time"

	"gorm.io/gorm"
)

const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusFailed    = "failed"
	OrderStatusCancelled = "cancelled"
)

// Order is a credit-pack purchase. TranID is caller generated and globally
// unique; an order reaches exactly one terminal status, exactly once.
type Order struct {
	ID         uint           `gorm:"primarykey" json:"id"`
	UserID     uint           `json:"user_id" gorm:"not null;index"`
	TranID     string         `json:"tran_id" gorm:"not null;uniqueIndex"`
	PlanName   string         `json:"plan_name" gorm:"not null"`
	Amount     int            `json:"amount" gorm:"not null"`
	Currency   string         `json:"currency" gorm:"not null;default:'BDT'"`
	Credits    int            `json:"credits" gorm:"not null"`
	Status     string         `json:"status" gorm:"not null;default:'pending';index"`
	SessionKey *string        `json:"session_key,omitempty"`
	ValID      *string        `json:"val_id,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}
