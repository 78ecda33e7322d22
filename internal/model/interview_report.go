package model

import (
	"time"

	"gorm.io/datatypes"
)

// InterviewReport is the 1:1 analysis result for a completed interview.
// Created as a blank placeholder when synthesis starts; the four analysis
// tasks each fill a disjoint subset of columns, so every field is nullable.
type InterviewReport struct {
	ID          uint `gorm:"primarykey" json:"id"`
	InterviewID uint `json:"interview_id" gorm:"not null;uniqueIndex"`

	OverallScore           *int    `json:"overall_score,omitempty"`
	Summary                *string `json:"summary,omitempty" gorm:"type:text"`
	EnglishScore           *int    `json:"english_score,omitempty"`
	ConfidenceScore        *int    `json:"confidence_score,omitempty"`
	FinancialClarityScore  *int    `json:"financial_clarity_score,omitempty"`
	ImmigrationIntentScore *int    `json:"immigration_intent_score,omitempty"`
	PronunciationScore     *int    `json:"pronunciation_score,omitempty"`
	VocabularyScore        *int    `json:"vocabulary_score,omitempty"`
	ResponseRelevanceScore *int    `json:"response_relevance_score,omitempty"`

	GrammarMistakes  datatypes.JSON `json:"grammar_mistakes,omitempty"`
	RedFlags         datatypes.JSON `json:"red_flags,omitempty"`
	ImprovementPlan  datatypes.JSON `json:"improvement_plan,omitempty"`
	DetailedFeedback datatypes.JSON `json:"detailed_feedback,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SubScores lists the seven category scores in a fixed order; nil entries
// are categories whose analysis task did not complete.
func (r *InterviewReport) SubScores() []*int {
	return []*int{
		r.EnglishScore,
		r.ConfidenceScore,
		r.FinancialClarityScore,
		r.ImmigrationIntentScore,
		r.PronunciationScore,
		r.VocabularyScore,
		r.ResponseRelevanceScore,
	}
}
