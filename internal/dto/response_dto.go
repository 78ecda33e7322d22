package dto

import "time"

// ErrorResponse is the uniform error body for every endpoint.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ProfileResponse is the caller's own profile and balance.
type ProfileResponse struct {
	UserID    uint      `json:"user_id"`
	Email     *string   `json:"email,omitempty"`
	FullName  *string   `json:"full_name,omitempty"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	Credits   int       `json:"credits"`
	CreatedAt time.Time `json:"created_at"`
}

// PlanResponse is one purchasable credit pack.
type PlanResponse struct {
	Name    string `json:"name"`
	BDT     int    `json:"price_bdt"`
	USD     int    `json:"price_usd"`
	Credits int    `json:"credits"`
}

// CheckoutResponse hands the frontend off to the hosted payment page.
type CheckoutResponse struct {
	GatewayURL string `json:"gateway_url"`
	TranID     string `json:"tran_id"`
	Amount     int    `json:"amount"`
	Currency   string `json:"currency"`
}

// CouponPreviewResponse shows the discounted price before checkout.
type CouponPreviewResponse struct {
	Valid          bool   `json:"valid"`
	Code           string `json:"code"`
	DiscountType   string `json:"discount_type"`
	DiscountAmount int    `json:"discount_amount"`
	OriginalPrice  int    `json:"original_price"`
	FinalPrice     int    `json:"final_price"`
	Currency       string `json:"currency"`
}

// CountryResponse is one destination country in the catalog.
type CountryResponse struct {
	ID        uint    `json:"id"`
	Name      string  `json:"name"`
	Code      string  `json:"code"`
	FlagEmoji *string `json:"flag_emoji,omitempty"`
}

// VisaTypeResponse is one visa category under a country.
type VisaTypeResponse struct {
	ID          uint    `json:"id"`
	CountryID   uint    `json:"country_id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// InterviewResponse is one interview with its catalog context and, once
// analysis lands, its report.
type InterviewResponse struct {
	ID           uint             `json:"id"`
	CountryID    uint             `json:"country_id"`
	Country      CountryResponse  `json:"country"`
	VisaTypeID   uint             `json:"visa_type_id"`
	VisaType     VisaTypeResponse `json:"visa_type"`
	Name         *string          `json:"name,omitempty"`
	Status       string           `json:"status"`
	Transcript   *string          `json:"transcript,omitempty"`
	RecordingURL *string          `json:"recording_url,omitempty"`
	Duration     *float64         `json:"duration,omitempty"`
	EndedAt      *time.Time       `json:"ended_at,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	Report       *ReportResponse  `json:"report,omitempty"`
}

// StartSessionResponse is what the browser needs to open the voice call.
type StartSessionResponse struct {
	InterviewID uint   `json:"interview_id"`
	PublicKey   string `json:"public_key"`
	AssistantID string `json:"assistant_id"`
}

// ReportResponse is the synthesized interview analysis. Fields are null
// until their analysis task completes; AnalysisComplete flips once the
// overall score is computed.
type ReportResponse struct {
	InterviewID            uint        `json:"interview_id"`
	AnalysisComplete       bool        `json:"analysis_complete"`
	OverallScore           *int        `json:"overall_score,omitempty"`
	Summary                *string     `json:"summary,omitempty"`
	EnglishScore           *int        `json:"english_score,omitempty"`
	ConfidenceScore        *int        `json:"confidence_score,omitempty"`
	FinancialClarityScore  *int        `json:"financial_clarity_score,omitempty"`
	ImmigrationIntentScore *int        `json:"immigration_intent_score,omitempty"`
	PronunciationScore     *int        `json:"pronunciation_score,omitempty"`
	VocabularyScore        *int        `json:"vocabulary_score,omitempty"`
	ResponseRelevanceScore *int        `json:"response_relevance_score,omitempty"`
	GrammarMistakes        interface{} `json:"grammar_mistakes,omitempty"`
	RedFlags               interface{} `json:"red_flags,omitempty"`
	ImprovementPlan        interface{} `json:"improvement_plan,omitempty"`
	DetailedFeedback       interface{} `json:"detailed_feedback,omitempty"`
}

// MediaResponse is the vendor-side recording and transcript for a call.
type MediaResponse struct {
	RecordingURL string      `json:"recording_url,omitempty"`
	Transcript   string      `json:"transcript,omitempty"`
	Messages     interface{} `json:"messages,omitempty"`
	Duration     *float64    `json:"duration,omitempty"`
	EndedReason  string      `json:"ended_reason,omitempty"`
}

// ReferralCodeResponse is the caller's shareable invite code.
type ReferralCodeResponse struct {
	Code string `json:"code"`
}

// OrderResponse is one purchase record.
type OrderResponse struct {
	ID        uint      `json:"id"`
	TranID    string    `json:"tran_id"`
	PlanName  string    `json:"plan_name"`
	Amount    int       `json:"amount"`
	Currency  string    `json:"currency"`
	Credits   int       `json:"credits"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
