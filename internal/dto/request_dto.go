package dto

// CreateInterviewRequest admits a new mock interview session.
type CreateInterviewRequest struct {
	CountryID  uint    `json:"country_id" binding:"required"`
	VisaTypeID uint    `json:"visa_type_id" binding:"required"`
	Name       *string `json:"name"`
}

// AttachCallRequest links the browser's voice call to an interview.
type AttachCallRequest struct {
	CallID string `json:"call_id" binding:"required"`
}

// InitiatePaymentRequest starts a hosted checkout for a credit pack.
type InitiatePaymentRequest struct {
	Plan       string `json:"plan" binding:"required"`
	Currency   string `json:"currency"`
	CouponCode string `json:"coupon_code"`
}

// ValidateCouponRequest checks a code before checkout.
type ValidateCouponRequest struct {
	Code     string `json:"code" binding:"required"`
	Plan     string `json:"plan" binding:"required"`
	Currency string `json:"currency"`
}

// ClaimReferralRequest redeems an invite code for a newly signed-up user.
type ClaimReferralRequest struct {
	Code              string  `json:"code" binding:"required"`
	DeviceFingerprint *string `json:"device_fingerprint"`
}
