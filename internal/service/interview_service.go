package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/farhansajid/visamock/config"
	"github.com/farhansajid/visamock/internal/apperror"
	"github.com/farhansajid/visamock/internal/model"
	"github.com/farhansajid/visamock/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const (
	finalizeMaxAttempts = 3
	finalizeRetryDelay  = 5 * time.Second
)

// failureReasons are vendor end reasons that void the session regardless of
// what the artifact contains.
var failureReasons = map[string]bool{
	"pipeline-error-openai-llm-failed": true,
	"assistant-not-found":              true,
	"pipeline-error":                   true,
}

// StartSession is what the browser needs to open the voice session.
type StartSession struct {
	InterviewID uint   `json:"interview_id"`
	PublicKey   string `json:"public_key"`
	AssistantID string `json:"assistant_id"`
}

// InterviewService owns the interview lifecycle from creation through
// finalization. Credits are debited exactly once, and only for interviews
// that finish as completed.
type InterviewService interface {
	Create(userID, countryID, visaTypeID uint, name *string) (*model.Interview, error)
	Start(id, userID uint) (*StartSession, error)
	AttachCall(id, userID uint, callID string) error
	Finalize(ctx context.Context, id, userID uint) (*model.Interview, error)
	Analyze(id, userID uint) error
	Media(ctx context.Context, id, userID uint) (*CallMedia, error)
	List(userID uint) ([]model.Interview, error)
	Get(id, userID uint) (*model.Interview, error)
}

// CallMedia is the vendor-side media for a finished call.
type CallMedia struct {
	RecordingURL string        `json:"recording_url,omitempty"`
	Transcript   string        `json:"transcript,omitempty"`
	Messages     []VapiMessage `json:"messages,omitempty"`
	Duration     *float64      `json:"duration,omitempty"`
	EndedReason  string        `json:"ended_reason,omitempty"`
}

type interviewService struct {
	interviewRepo repository.InterviewRepository
	catalogRepo   repository.CatalogRepository
	ledger        LedgerService
	vapi          VapiClient
	analysis      AnalysisService
	cfg           *config.Config
	retryDelay    time.Duration
}

func NewInterviewService(
	interviewRepo repository.InterviewRepository,
	catalogRepo repository.CatalogRepository,
	ledger LedgerService,
	vapi VapiClient,
	analysis AnalysisService,
	cfg *config.Config,
) InterviewService {
	return &interviewService{
		interviewRepo: interviewRepo,
		catalogRepo:   catalogRepo,
		ledger:        ledger,
		vapi:          vapi,
		analysis:      analysis,
		cfg:           cfg,
		retryDelay:    finalizeRetryDelay,
	}
}

// Create admits a new interview when the user can afford one. The balance
// is only checked here; the debit happens at finalization, so a session the
// vendor loses costs nothing.
func (s *interviewService) Create(userID, countryID, visaTypeID uint, name *string) (*model.Interview, error) {
	balance, err := s.ledger.Balance(userID)
	if err != nil {
		return nil, err
	}
	if balance < model.InterviewCreditCost {
		return nil, apperror.ErrInsufficientCredits
	}

	if _, err := s.catalogRepo.FindCountry(countryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFoundf("country %d not found", countryID)
		}
		return nil, err
	}
	visaType, err := s.catalogRepo.FindVisaType(visaTypeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFoundf("visa type %d not found", visaTypeID)
		}
		return nil, err
	}
	if visaType.CountryID != countryID {
		return nil, apperror.Validationf("visa type %d does not belong to country %d", visaTypeID, countryID)
	}

	interview := &model.Interview{
		UserID:     userID,
		CountryID:  countryID,
		VisaTypeID: visaTypeID,
		Name:       name,
		Status:     model.InterviewStatusPending,
	}
	if err := s.interviewRepo.Create(interview); err != nil {
		return nil, err
	}

	log.Info().Uint("interviewID", interview.ID).Uint("userID", userID).Msg("Interview created")
	return interview, nil
}

// Start transitions the interview to in_progress and hands back the voice
// credentials. Visa-type credentials override the global ones.
func (s *interviewService) Start(id, userID uint) (*StartSession, error) {
	interview, err := s.owned(id, userID)
	if err != nil {
		return nil, err
	}

	visaType, err := s.catalogRepo.FindVisaType(interview.VisaTypeID)
	if err != nil {
		return nil, err
	}

	publicKey := s.cfg.Vapi.PublicKey
	assistantID := s.cfg.Vapi.AssistantID
	if visaType.VapiPublicKey != nil && *visaType.VapiPublicKey != "" {
		publicKey = *visaType.VapiPublicKey
	}
	if visaType.VapiAssistantID != nil && *visaType.VapiAssistantID != "" {
		assistantID = *visaType.VapiAssistantID
	}
	if publicKey == "" || assistantID == "" {
		return nil, apperror.ErrVendorNotConfigured
	}

	started, err := s.interviewRepo.Start(id)
	if err != nil {
		return nil, err
	}
	if !started {
		return nil, apperror.Validationf("interview %d is not pending", id)
	}

	return &StartSession{
		InterviewID: id,
		PublicKey:   publicKey,
		AssistantID: assistantID,
	}, nil
}

func (s *interviewService) AttachCall(id, userID uint, callID string) error {
	if callID == "" {
		return apperror.Validationf("call_id is required")
	}
	interview, err := s.owned(id, userID)
	if err != nil {
		return err
	}
	if interview.Terminal() {
		return apperror.Validationf("interview %d already finished", id)
	}
	return s.interviewRepo.SetCallID(id, callID)
}

// Finalize fetches the terminal call record from the vendor, persists its
// artifact, settles the interview status, and debits credits when the
// session completed. Re-entry is safe: the status transition is
// single-winner and only the winner debits or starts analysis.
func (s *interviewService) Finalize(ctx context.Context, id, userID uint) (*model.Interview, error) {
	interview, err := s.owned(id, userID)
	if err != nil {
		return nil, err
	}
	if interview.Terminal() {
		return s.interviewRepo.FindByIDWithDetails(id)
	}
	if interview.VapiCallID == nil || *interview.VapiCallID == "" {
		return nil, apperror.Validationf("interview %d has no call attached", id)
	}

	privateKey, err := s.resolvePrivateKey(interview.VisaTypeID)
	if err != nil {
		return nil, err
	}

	call, err := s.fetchCallArtifact(ctx, *interview.VapiCallID, privateKey)
	if err != nil {
		return nil, err
	}

	status := classifyCall(call)
	s.persistArtifact(id, call)

	won, err := s.interviewRepo.Finish(id, status, time.Now())
	if err != nil {
		return nil, err
	}
	if won && status == model.InterviewStatusCompleted {
		if _, err := s.ledger.Adjust(userID, -model.InterviewCreditCost, LedgerReasonInterviewDebit); err != nil {
			log.Error().Err(err).Uint("interviewID", id).Msg("Interview completed but debit failed")
		}
		go s.analysis.AnalyzeInterview(context.Background(), id)
	}

	log.Info().
		Uint("interviewID", id).
		Str("status", status).
		Str("endedReason", call.EndedReason).
		Bool("settled", won).
		Msg("Interview finalized")

	return s.interviewRepo.FindByIDWithDetails(id)
}

// fetchCallArtifact polls the vendor until the call record carries a
// transcript or messages, up to finalizeMaxAttempts times. Post-processing
// lags the browser's end event, so an ended call can briefly report an
// empty artifact.
func (s *interviewService) fetchCallArtifact(ctx context.Context, callID, privateKey string) (*VapiCall, error) {
	var call *VapiCall
	var err error
	for attempt := 1; attempt <= finalizeMaxAttempts; attempt++ {
		call, err = s.vapi.GetCall(ctx, callID, privateKey)
		if err == nil && call.HasContent() {
			return call, nil
		}
		if attempt < finalizeMaxAttempts {
			log.Info().Str("callID", callID).Int("attempt", attempt).Msg("Call artifact not ready, retrying")
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(s.retryDelay):
			}
		}
	}
	if err != nil {
		return nil, err
	}
	return call, nil
}

// classifyCall decides the terminal status. A session completes only when
// the vendor ended it cleanly, for a benign reason, with usable content.
func classifyCall(call *VapiCall) string {
	if call.Status != "ended" {
		return model.InterviewStatusFailed
	}
	if failureReasons[call.EndedReason] {
		return model.InterviewStatusFailed
	}
	if !call.HasContent() {
		return model.InterviewStatusFailed
	}
	return model.InterviewStatusCompleted
}

func (s *interviewService) persistArtifact(id uint, call *VapiCall) {
	fields := map[string]interface{}{}
	if call.Artifact.Transcript != "" {
		fields["transcript"] = call.Artifact.Transcript
	}
	if len(call.Artifact.Messages) > 0 {
		if raw, err := json.Marshal(call.Artifact.Messages); err == nil {
			fields["messages"] = raw
		}
	}
	if call.Artifact.RecordingURL != "" {
		fields["recording_url"] = call.Artifact.RecordingURL
	}
	if call.Duration != nil {
		fields["duration"] = *call.Duration
	}
	if call.EndedReason != "" {
		fields["ended_reason"] = call.EndedReason
	}
	if len(fields) == 0 {
		return
	}
	if err := s.interviewRepo.UpdateFields(id, fields); err != nil {
		log.Error().Err(err).Uint("interviewID", id).Msg("Failed to persist call artifact")
	}
}

func (s *interviewService) resolvePrivateKey(visaTypeID uint) (string, error) {
	visaType, err := s.catalogRepo.FindVisaType(visaTypeID)
	if err != nil {
		return "", err
	}
	if visaType.VapiPrivateKey != nil && *visaType.VapiPrivateKey != "" {
		return *visaType.VapiPrivateKey, nil
	}
	if s.cfg.Vapi.PrivateKey == "" {
		return "", apperror.ErrVendorNotConfigured
	}
	return s.cfg.Vapi.PrivateKey, nil
}

// Analyze re-runs report synthesis for a completed interview. The
// placeholder upsert inside the pipeline makes regeneration idempotent.
func (s *interviewService) Analyze(id, userID uint) error {
	interview, err := s.owned(id, userID)
	if err != nil {
		return err
	}
	if interview.Status != model.InterviewStatusCompleted {
		return apperror.Validationf("interview %d is not completed", id)
	}
	if len(transcriptText(interview)) < minTranscriptChars {
		return apperror.ErrInsufficientTranscript
	}
	go s.analysis.AnalyzeInterview(context.Background(), id)
	return nil
}

// Media fetches the vendor-side recording and transcript. The recording
// URL lags the call end while the vendor processes audio, so one bounded
// re-fetch waits for it.
func (s *interviewService) Media(ctx context.Context, id, userID uint) (*CallMedia, error) {
	interview, err := s.owned(id, userID)
	if err != nil {
		return nil, err
	}
	if interview.VapiCallID == nil || *interview.VapiCallID == "" {
		return nil, apperror.Validationf("interview %d has no call attached", id)
	}

	privateKey, err := s.resolvePrivateKey(interview.VisaTypeID)
	if err != nil {
		return nil, err
	}

	var call *VapiCall
	for attempt := 1; attempt <= 2; attempt++ {
		call, err = s.vapi.GetCall(ctx, *interview.VapiCallID, privateKey)
		if err != nil {
			return nil, err
		}
		if call.Artifact.RecordingURL != "" || attempt == 2 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.retryDelay):
		}
	}

	return &CallMedia{
		RecordingURL: call.Artifact.RecordingURL,
		Transcript:   call.Artifact.Transcript,
		Messages:     call.Artifact.Messages,
		Duration:     call.Duration,
		EndedReason:  call.EndedReason,
	}, nil
}

func (s *interviewService) List(userID uint) ([]model.Interview, error) {
	return s.interviewRepo.FindAllByUser(userID)
}

func (s *interviewService) Get(id, userID uint) (*model.Interview, error) {
	interview, err := s.interviewRepo.FindByIDWithDetails(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFoundf("interview %d not found", id)
		}
		return nil, err
	}
	if interview.UserID != userID && !interview.IsPublic {
		return nil, apperror.ErrForbidden
	}
	return interview, nil
}

func (s *interviewService) owned(id, userID uint) (*model.Interview, error) {
	interview, err := s.interviewRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFoundf("interview %d not found", id)
		}
		return nil, err
	}
	if interview.UserID != userID {
		return nil, apperror.ErrForbidden
	}
	return interview, nil
}
