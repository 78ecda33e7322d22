package model

import "time"

// ReferralBonusCredits is awarded to the referrer per converted signup.
const ReferralBonusCredits = 10

// MaxAwardedReferrals caps how many signups can earn a referrer credits.
const MaxAwardedReferrals = 3

// ReferralCode is a user's shareable invite code, at most one per user.
type ReferralCode struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex"`
	Code      string    `json:"code" gorm:"not null;uniqueIndex"`
	CreatedAt time.Time `json:"created_at"`
}

// Referral links a referred signup to its referrer. A user can be referred
// at most once; IP and device fingerprint are kept for abuse review.
type Referral struct {
	ID                uint      `gorm:"primarykey" json:"id"`
	ReferrerID        uint      `json:"referrer_id" gorm:"not null;index"`
	ReferredUserID    uint      `json:"referred_user_id" gorm:"not null;uniqueIndex"`
	CreditsAwarded    bool      `json:"credits_awarded" gorm:"not null;default:false"`
	IPAddress         *string   `json:"ip_address,omitempty"`
	DeviceFingerprint *string   `json:"device_fingerprint,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}
