package model

import (
	"time"

	"gorm.io/gorm"
)

const (
	DiscountTypePercentage = "percentage"
	DiscountTypeFixed      = "fixed"
)

type Coupon struct {
	ID              uint           `gorm:"primarykey" json:"id"`
	Code            string         `json:"code" gorm:"not null;uniqueIndex"`
	DiscountType    string         `json:"discount_type" gorm:"not null;default:'percentage'"`
	DiscountAmount  int            `json:"discount_amount" gorm:"not null"`
	ExpirationDate  *time.Time     `json:"expiration_date,omitempty"`
	IsActive        *bool          `json:"is_active" gorm:"not null;default:true"`
	PerUserLimit    int            `json:"per_user_limit" gorm:"not null;default:1"`
	TimesUsed       int            `json:"times_used" gorm:"not null;default:0"`
	TotalUsageLimit *int           `json:"total_usage_limit,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// CouponUsage records one redemption; the per-user cap is enforced by
// counting these rows.
type CouponUsage struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CouponID  uint      `json:"coupon_id" gorm:"not null;index"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	OrderID   *uint     `json:"order_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
