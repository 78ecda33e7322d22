package dto

import "time"

// CreateCouponRequest defines a new discount code.
type CreateCouponRequest struct {
	Code            string     `json:"code" binding:"required"`
	DiscountType    string     `json:"discount_type" binding:"required,oneof=percentage fixed"`
	DiscountAmount  int        `json:"discount_amount" binding:"required,gt=0"`
	ExpirationDate  *time.Time `json:"expiration_date"`
	PerUserLimit    int        `json:"per_user_limit"`
	TotalUsageLimit *int       `json:"total_usage_limit"`
	IsActive        *bool      `json:"is_active"`
}

// UpdateCouponRequest modifies an existing coupon; nil fields are left
// untouched.
type UpdateCouponRequest struct {
	DiscountType    *string    `json:"discount_type" binding:"omitempty,oneof=percentage fixed"`
	DiscountAmount  *int       `json:"discount_amount" binding:"omitempty,gt=0"`
	ExpirationDate  *time.Time `json:"expiration_date"`
	PerUserLimit    *int       `json:"per_user_limit"`
	TotalUsageLimit *int       `json:"total_usage_limit"`
	IsActive        *bool      `json:"is_active"`
}

// CreateCountryRequest adds a destination country to the catalog.
type CreateCountryRequest struct {
	Name      string  `json:"name" binding:"required"`
	Code      string  `json:"code" binding:"required"`
	FlagEmoji *string `json:"flag_emoji"`
}

// CreateVisaTypeRequest adds a visa category, optionally with its own
// voice-vendor credentials.
type CreateVisaTypeRequest struct {
	CountryID       uint    `json:"country_id" binding:"required"`
	Name            string  `json:"name" binding:"required"`
	Description     *string `json:"description"`
	VapiAssistantID *string `json:"vapi_assistant_id"`
	VapiPublicKey   *string `json:"vapi_public_key"`
	VapiPrivateKey  *string `json:"vapi_private_key"`
}

// UpdateVisaTypeRequest modifies a visa category; nil fields are left
// untouched.
type UpdateVisaTypeRequest struct {
	Name            *string `json:"name"`
	Description     *string `json:"description"`
	VapiAssistantID *string `json:"vapi_assistant_id"`
	VapiPublicKey   *string `json:"vapi_public_key"`
	VapiPrivateKey  *string `json:"vapi_private_key"`
}

// GrantCreditsRequest adjusts a user's balance on an admin's behalf.
type GrantCreditsRequest struct {
	UserID  uint    `json:"user_id" binding:"required"`
	Credits int     `json:"credits" binding:"required"`
	Reason  *string `json:"reason"`
}

// GrantCreditsResponse reports the user's balance after the grant.
type GrantCreditsResponse struct {
	UserID  uint `json:"user_id"`
	Balance int  `json:"balance"`
}
