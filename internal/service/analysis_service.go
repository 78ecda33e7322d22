package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/farhansajid/visamock/internal/model"
	"github.com/farhansajid/visamock/internal/repository"
	"github.com/rs/zerolog/log"
)

// minTranscriptChars is the floor below which a transcript carries too
// little signal to score.
const minTranscriptChars = 20

// AnalysisService turns a finished interview transcript into a structured
// report. Four independent analysis tasks run in parallel and each writes
// its own disjoint set of report columns, so one task failing never blocks
// or clobbers the others.
type AnalysisService interface {
	AnalyzeInterview(ctx context.Context, interviewID uint)
}

type analysisService struct {
	interviewRepo repository.InterviewRepository
	reportRepo    repository.ReportRepository
	llm           LLMService
	notifier      *ReportNotifier
}

func NewAnalysisService(
	interviewRepo repository.InterviewRepository,
	reportRepo repository.ReportRepository,
	llm LLMService,
	notifier *ReportNotifier,
) AnalysisService {
	return &analysisService{
		interviewRepo: interviewRepo,
		reportRepo:    reportRepo,
		llm:           llm,
		notifier:      notifier,
	}
}

type summaryResult struct {
	Title        string `json:"title"`
	Summary      string `json:"summary"`
	OverallScore int    `json:"overall_score"`
}

type languageResult struct {
	EnglishScore       int `json:"english_score"`
	PronunciationScore int `json:"pronunciation_score"`
	VocabularyScore    int `json:"vocabulary_score"`
	GrammarMistakes    []struct {
		Original    string `json:"original"`
		Corrected   string `json:"corrected"`
		Explanation string `json:"explanation"`
	} `json:"grammar_mistakes"`
}

type contentResult struct {
	ConfidenceScore        int      `json:"confidence_score"`
	FinancialClarityScore  int      `json:"financial_clarity_score"`
	ImmigrationIntentScore int      `json:"immigration_intent_score"`
	ResponseRelevanceScore int      `json:"response_relevance_score"`
	RedFlags               []string `json:"red_flags"`
}

type coachingResult struct {
	ImprovementPlan  []string `json:"improvement_plan"`
	DetailedFeedback []struct {
		Question        string `json:"question"`
		Answer          string `json:"answer"`
		SuggestedAnswer string `json:"suggested_answer"`
		Feedback        string `json:"feedback"`
		Score           int    `json:"score"`
	} `json:"detailed_feedback"`
}

type analysisTask struct {
	name   string
	system string
	run    func(raw json.RawMessage) (map[string]interface{}, error)
}

type taskResult struct {
	name string
	err  error
}

// AnalyzeInterview runs the full synthesis pipeline. The placeholder row
// goes in first so viewers can distinguish "being analyzed" from "no
// report"; the notifier fires once at the end regardless of how many tasks
// succeeded.
func (s *analysisService) AnalyzeInterview(ctx context.Context, interviewID uint) {
	interview, err := s.interviewRepo.FindByID(interviewID)
	if err != nil {
		log.Error().Err(err).Uint("interviewID", interviewID).Msg("Analysis aborted: interview not found")
		return
	}

	if interview.Status == model.InterviewStatusFailed {
		log.Warn().Uint("interviewID", interviewID).Msg("Analysis skipped: interview failed")
		return
	}

	transcript := transcriptText(interview)
	if len(transcript) < minTranscriptChars {
		log.Warn().Uint("interviewID", interviewID).Msg("Analysis skipped: transcript too short to score")
		return
	}

	if err := s.reportRepo.UpsertPlaceholder(interviewID); err != nil {
		log.Error().Err(err).Uint("interviewID", interviewID).Msg("Failed to create report placeholder")
		return
	}

	userPrompt := buildUserPrompt(interview, transcript)
	tasks := s.buildTasks(interviewID)

	results := make(chan taskResult, len(tasks))
	for _, task := range tasks {
		go func(t analysisTask) {
			results <- taskResult{name: t.name, err: s.runTask(ctx, interviewID, t, userPrompt)}
		}(task)
	}

	failed := 0
	for range tasks {
		res := <-results
		if res.err != nil {
			failed++
			log.Error().Err(res.err).Uint("interviewID", interviewID).Str("task", res.name).Msg("Analysis task failed")
		}
	}

	s.recomputeOverall(interviewID)
	s.notifier.Publish(interviewID)

	log.Info().
		Uint("interviewID", interviewID).
		Int("tasks", len(tasks)).
		Int("failed", failed).
		Msg("Interview analysis finished")
}

func (s *analysisService) runTask(ctx context.Context, interviewID uint, task analysisTask, userPrompt string) error {
	raw, err := s.llm.AnalyzeJSON(ctx, task.system, userPrompt)
	if err != nil {
		return err
	}
	fields, err := task.run(raw)
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		return nil
	}
	return s.reportRepo.UpdateFields(interviewID, fields)
}

func (s *analysisService) buildTasks(interviewID uint) []analysisTask {
	return []analysisTask{
		{
			name:   "summary",
			system: summarySystemPrompt,
			run: func(raw json.RawMessage) (map[string]interface{}, error) {
				var res summaryResult
				if err := json.Unmarshal(raw, &res); err != nil {
					return nil, fmt.Errorf("summary task: %w", err)
				}
				if res.Title != "" {
					if err := s.interviewRepo.SetName(interviewID, res.Title); err != nil {
						log.Error().Err(err).Uint("interviewID", interviewID).Msg("Failed to set interview title")
					}
				}
				// The estimate survives only when no sub-scores land;
				// otherwise the recompute pass overwrites it.
				return map[string]interface{}{
					"summary":       res.Summary,
					"overall_score": clampScore(res.OverallScore),
				}, nil
			},
		},
		{
			name:   "language",
			system: languageSystemPrompt,
			run: func(raw json.RawMessage) (map[string]interface{}, error) {
				var res languageResult
				if err := json.Unmarshal(raw, &res); err != nil {
					return nil, fmt.Errorf("language task: %w", err)
				}
				mistakes, err := json.Marshal(res.GrammarMistakes)
				if err != nil {
					return nil, err
				}
				return map[string]interface{}{
					"english_score":       clampScore(res.EnglishScore),
					"pronunciation_score": clampScore(res.PronunciationScore),
					"vocabulary_score":    clampScore(res.VocabularyScore),
					"grammar_mistakes":    mistakes,
				}, nil
			},
		},
		{
			name:   "content",
			system: contentSystemPrompt,
			run: func(raw json.RawMessage) (map[string]interface{}, error) {
				var res contentResult
				if err := json.Unmarshal(raw, &res); err != nil {
					return nil, fmt.Errorf("content task: %w", err)
				}
				redFlags, err := json.Marshal(res.RedFlags)
				if err != nil {
					return nil, err
				}
				return map[string]interface{}{
					"confidence_score":         clampScore(res.ConfidenceScore),
					"financial_clarity_score":  clampScore(res.FinancialClarityScore),
					"immigration_intent_score": clampScore(res.ImmigrationIntentScore),
					"response_relevance_score": clampScore(res.ResponseRelevanceScore),
					"red_flags":                redFlags,
				}, nil
			},
		},
		{
			name:   "coaching",
			system: coachingSystemPrompt,
			run: func(raw json.RawMessage) (map[string]interface{}, error) {
				var res coachingResult
				if err := json.Unmarshal(raw, &res); err != nil {
					return nil, fmt.Errorf("coaching task: %w", err)
				}
				plan, err := json.Marshal(res.ImprovementPlan)
				if err != nil {
					return nil, err
				}
				feedback, err := json.Marshal(res.DetailedFeedback)
				if err != nil {
					return nil, err
				}
				return map[string]interface{}{
					"improvement_plan":  plan,
					"detailed_feedback": feedback,
				}, nil
			},
		},
	}
}

// recomputeOverall averages whichever category scores the tasks managed to
// produce, so a partially failed run still yields a consistent headline
// number.
func (s *analysisService) recomputeOverall(interviewID uint) {
	report, err := s.reportRepo.FindByInterviewID(interviewID)
	if err != nil {
		log.Error().Err(err).Uint("interviewID", interviewID).Msg("Failed to reload report for overall score")
		return
	}

	sum, count := 0, 0
	for _, score := range report.SubScores() {
		if score != nil {
			sum += *score
			count++
		}
	}
	if count == 0 {
		return
	}

	overall := int(math.Round(float64(sum) / float64(count)))
	if err := s.reportRepo.UpdateFields(interviewID, map[string]interface{}{"overall_score": overall}); err != nil {
		log.Error().Err(err).Uint("interviewID", interviewID).Msg("Failed to store overall score")
	}
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// transcriptText prefers the vendor's flat transcript and falls back to
// reassembling it from the structured message turns.
func transcriptText(interview *model.Interview) string {
	if interview.Transcript != nil && strings.TrimSpace(*interview.Transcript) != "" {
		return *interview.Transcript
	}
	if len(interview.Messages) == 0 {
		return ""
	}
	var messages []VapiMessage
	if err := json.Unmarshal(interview.Messages, &messages); err != nil {
		return ""
	}
	var b strings.Builder
	for _, m := range messages {
		text := m.Text()
		if text == "" {
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n", m.Role, text)
	}
	return strings.TrimSpace(b.String())
}

// autoCut reports whether the session was cut off by a duration limit
// rather than ending naturally. Every analysis prompt flags this as poor
// time management so the tasks penalize it consistently.
func autoCut(endedReason string) bool {
	return strings.Contains(endedReason, "max-duration") ||
		endedReason == "customer-ended-call-too-short"
}

func buildUserPrompt(interview *model.Interview, transcript string) string {
	var b strings.Builder
	b.WriteString("Mock visa interview transcript")
	if interview.Country.Name != "" {
		fmt.Fprintf(&b, " (%s", interview.Country.Name)
		if interview.VisaType.Name != "" {
			fmt.Fprintf(&b, ", %s visa", interview.VisaType.Name)
		}
		b.WriteString(")")
	}
	b.WriteString(":\n\n")
	b.WriteString(transcript)
	if interview.EndedReason != nil && autoCut(*interview.EndedReason) {
		b.WriteString("\n\nNote: the session was cut off automatically because the applicant reached the maximum allowed duration. This should be considered a NEGATIVE factor in your assessment: it indicates poor time management, as the applicant failed to deliver concise answers within the allotted time.")
	}
	return b.String()
}

const summarySystemPrompt = `You are a visa interview coach reviewing a mock interview transcript.
Write a short title for this session, a concise performance summary, and your overall 0-100 estimate of the applicant's performance.
Respond with ONLY a JSON object in this exact shape:
{"title": "<5-8 word session title>", "summary": "<2-4 sentence performance summary addressed to the applicant>", "overall_score": 0}`

const languageSystemPrompt = `You are an English language assessor reviewing a mock visa interview transcript.
Score the applicant's spoken English. All scores are integers from 0 to 100.
Respond with ONLY a JSON object in this exact shape:
{"english_score": 0, "pronunciation_score": 0, "vocabulary_score": 0, "grammar_mistakes": [{"original": "<what the applicant said>", "corrected": "<corrected version>", "explanation": "<what is wrong>"}]}
List at most 5 grammar mistakes. Use an empty array when there are none.`

const contentSystemPrompt = `You are a visa consular officer reviewing a mock interview transcript.
Assess the substance of the applicant's answers. All scores are integers from 0 to 100.
Respond with ONLY a JSON object in this exact shape:
{"confidence_score": 0, "financial_clarity_score": 0, "immigration_intent_score": 0, "response_relevance_score": 0, "red_flags": ["<answers a real officer would probe further>"]}
immigration_intent_score is high when the applicant convincingly demonstrates ties to their home country. Use an empty array for red_flags when there are none.`

const coachingSystemPrompt = `You are a visa interview coach preparing feedback from a mock interview transcript.
Respond with ONLY a JSON object in this exact shape:
{"improvement_plan": ["<concrete practice step>"], "detailed_feedback": [{"question": "<interviewer question>", "answer": "<applicant answer, may be paraphrased>", "suggested_answer": "<a stronger answer the applicant could have given>", "feedback": "<specific advice for this answer>", "score": 0}]}
Score each exchange from 0 to 100. Give 3-5 improvement steps and feedback on the most important question-answer exchanges, at most 6.`
