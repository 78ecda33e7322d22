package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/farhansajid/visamock/internal/model"
	"github.com/farhansajid/visamock/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeLLM struct {
	fail map[string]bool
}

func (f *fakeLLM) AnalyzeJSON(ctx context.Context, systemPrompt, userPrompt string) (json.RawMessage, error) {
	switch systemPrompt {
	case summarySystemPrompt:
		if f.fail["summary"] {
			return nil, errors.New("model overloaded")
		}
		return json.RawMessage(`{"title": "US B1/B2 Tourism Practice", "summary": "Solid answers overall.", "overall_score": 72}`), nil
	case languageSystemPrompt:
		if f.fail["language"] {
			return nil, errors.New("model overloaded")
		}
		return json.RawMessage(`{"english_score": 80, "pronunciation_score": 70, "vocabulary_score": 75,
			"grammar_mistakes": [{"original": "I has a job", "corrected": "I have a job", "explanation": "subject-verb agreement"}]}`), nil
	case contentSystemPrompt:
		if f.fail["content"] {
			return nil, errors.New("model overloaded")
		}
		return json.RawMessage(`{"confidence_score": 60, "financial_clarity_score": 90,
			"immigration_intent_score": 85, "response_relevance_score": 80, "red_flags": ["vague sponsor details"]}`), nil
	case coachingSystemPrompt:
		if f.fail["coaching"] {
			return nil, errors.New("model overloaded")
		}
		return json.RawMessage(`{"improvement_plan": ["Practice answering about finances"],
			"detailed_feedback": [{"question": "Why do you want to visit?", "answer": "Tourism.",
				"suggested_answer": "I am visiting my sister in Dallas for two weeks.", "feedback": "Expand with specifics.", "score": 55}]}`), nil
	}
	return nil, errors.New("unexpected prompt")
}

func newAnalysisService(t *testing.T, llm LLMService) (AnalysisService, *gorm.DB, *ReportNotifier) {
	db := newTestDB(t)
	notifier := NewReportNotifier()
	svc := NewAnalysisService(
		repository.NewInterviewRepository(db),
		repository.NewReportRepository(db),
		llm,
		notifier,
	)
	return svc, db, notifier
}

func seedCompletedInterview(t *testing.T, db *gorm.DB) *model.Interview {
	t.Helper()
	countryID, visaTypeID := seedCatalog(t, db)
	interview := &model.Interview{
		UserID:     1,
		CountryID:  countryID,
		VisaTypeID: visaTypeID,
		Status:     model.InterviewStatusCompleted,
		Transcript: strPtr("Officer: Why do you want to visit?\nApplicant: Tourism."),
	}
	require.NoError(t, db.Create(interview).Error)
	return interview
}

func TestAnalyzeInterview_FillsFullReport(t *testing.T) {
	svc, db, notifier := newAnalysisService(t, &fakeLLM{})
	interview := seedCompletedInterview(t, db)

	ready, cancel := notifier.Subscribe(interview.ID)
	defer cancel()

	svc.AnalyzeInterview(context.Background(), interview.ID)

	select {
	case <-ready:
	default:
		t.Fatal("notifier was not published")
	}

	var report model.InterviewReport
	require.NoError(t, db.Where("interview_id = ?", interview.ID).First(&report).Error)

	require.NotNil(t, report.Summary)
	assert.Equal(t, "Solid answers overall.", *report.Summary)
	require.NotNil(t, report.EnglishScore)
	assert.Equal(t, 80, *report.EnglishScore)
	require.NotNil(t, report.ConfidenceScore)
	assert.Equal(t, 60, *report.ConfidenceScore)

	// round((80+70+75+60+90+85+80)/7) = 77
	require.NotNil(t, report.OverallScore)
	assert.Equal(t, 77, *report.OverallScore)

	assert.True(t, strings.Contains(string(report.GrammarMistakes), "subject-verb agreement"))
	assert.True(t, strings.Contains(string(report.RedFlags), "vague sponsor details"))
	assert.True(t, strings.Contains(string(report.ImprovementPlan), "Practice answering about finances"))
	assert.True(t, strings.Contains(string(report.DetailedFeedback), "suggested_answer"))
	assert.True(t, strings.Contains(string(report.DetailedFeedback), `"score":55`))

	var updated model.Interview
	require.NoError(t, db.First(&updated, interview.ID).Error)
	require.NotNil(t, updated.Name)
	assert.Equal(t, "US B1/B2 Tourism Practice", *updated.Name)
}

func TestAnalyzeInterview_PartialFailureStillScores(t *testing.T) {
	svc, db, _ := newAnalysisService(t, &fakeLLM{fail: map[string]bool{"language": true}})
	interview := seedCompletedInterview(t, db)

	svc.AnalyzeInterview(context.Background(), interview.ID)

	var report model.InterviewReport
	require.NoError(t, db.Where("interview_id = ?", interview.ID).First(&report).Error)

	assert.Nil(t, report.EnglishScore)
	assert.Nil(t, report.PronunciationScore)
	require.NotNil(t, report.ConfidenceScore)

	// round((60+90+85+80)/4) = 79 from the content scores alone.
	require.NotNil(t, report.OverallScore)
	assert.Equal(t, 79, *report.OverallScore)
}

func TestAnalyzeInterview_EstimateSurvivesWhenScoreTasksFail(t *testing.T) {
	svc, db, _ := newAnalysisService(t, &fakeLLM{fail: map[string]bool{
		"language": true, "content": true, "coaching": true,
	}})
	interview := seedCompletedInterview(t, db)

	svc.AnalyzeInterview(context.Background(), interview.ID)

	// With no sub-scores to average, the summary task's estimate is the
	// headline number the viewer gets.
	var report model.InterviewReport
	require.NoError(t, db.Where("interview_id = ?", interview.ID).First(&report).Error)
	require.NotNil(t, report.OverallScore)
	assert.Equal(t, 72, *report.OverallScore)
}

func TestAnalyzeInterview_AllTasksFailedLeavesNoOverall(t *testing.T) {
	llmErr := &erroringLLM{}
	svc, db, notifier := newAnalysisService(t, llmErr)
	interview := seedCompletedInterview(t, db)

	ready, cancel := notifier.Subscribe(interview.ID)
	defer cancel()

	svc.AnalyzeInterview(context.Background(), interview.ID)

	select {
	case <-ready:
	default:
		t.Fatal("notifier must publish even when every task fails")
	}

	var report model.InterviewReport
	require.NoError(t, db.Where("interview_id = ?", interview.ID).First(&report).Error)
	assert.Nil(t, report.OverallScore)
}

type erroringLLM struct{}

func (erroringLLM) AnalyzeJSON(ctx context.Context, systemPrompt, userPrompt string) (json.RawMessage, error) {
	return nil, errors.New("model unavailable")
}

func TestAnalyzeInterview_NoTranscriptSkips(t *testing.T) {
	svc, db, _ := newAnalysisService(t, &fakeLLM{})
	countryID, visaTypeID := seedCatalog(t, db)
	interview := &model.Interview{
		UserID: 1, CountryID: countryID, VisaTypeID: visaTypeID,
		Status: model.InterviewStatusCompleted,
	}
	require.NoError(t, db.Create(interview).Error)

	svc.AnalyzeInterview(context.Background(), interview.ID)

	var count int64
	require.NoError(t, db.Model(&model.InterviewReport{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestAnalyzeInterview_FailedInterviewSkips(t *testing.T) {
	svc, db, _ := newAnalysisService(t, &fakeLLM{})
	interview := seedCompletedInterview(t, db)
	require.NoError(t, db.Model(interview).Update("status", model.InterviewStatusFailed).Error)

	svc.AnalyzeInterview(context.Background(), interview.ID)

	var count int64
	require.NoError(t, db.Model(&model.InterviewReport{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestAnalyzeInterview_ShortTranscriptSkips(t *testing.T) {
	svc, db, _ := newAnalysisService(t, &fakeLLM{})
	interview := seedCompletedInterview(t, db)
	require.NoError(t, db.Model(interview).Update("transcript", "Hi.").Error)

	svc.AnalyzeInterview(context.Background(), interview.ID)

	var count int64
	require.NoError(t, db.Model(&model.InterviewReport{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestTranscriptText_FallsBackToMessages(t *testing.T) {
	messages, err := json.Marshal([]VapiMessage{
		{Role: "bot", Content: "Why do you want to visit?"},
		{Role: "user", Message: "Tourism."},
	})
	require.NoError(t, err)

	interview := &model.Interview{Messages: messages}
	text := transcriptText(interview)
	assert.Contains(t, text, "bot: Why do you want to visit?")
	assert.Contains(t, text, "user: Tourism.")
}

func TestAutoCutPromptNote(t *testing.T) {
	interview := &model.Interview{EndedReason: strPtr("exceeded-max-duration")}
	prompt := buildUserPrompt(interview, "Officer: hello")
	assert.Contains(t, prompt, "NEGATIVE factor")
	assert.Contains(t, prompt, "poor time management")
	assert.NotContains(t, prompt, "Do not penalize")

	interview.EndedReason = strPtr("customer-ended-call")
	prompt = buildUserPrompt(interview, "Officer: hello")
	assert.NotContains(t, prompt, "cut off automatically")
}
