package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/farhansajid/visamock/config"
	"github.com/farhansajid/visamock/internal/apperror"
	"github.com/farhansajid/visamock/internal/model"
	"github.com/farhansajid/visamock/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeVapi struct {
	call  *VapiCall
	err   error
	calls int
}

func (f *fakeVapi) GetCall(ctx context.Context, callID, privateKey string) (*VapiCall, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.call, nil
}

type noopAnalysis struct{}

func (noopAnalysis) AnalyzeInterview(ctx context.Context, interviewID uint) {}

func newInterviewService(t *testing.T, vapi VapiClient) (*interviewService, *gorm.DB) {
	db := newTestDB(t)
	cfg := &config.Config{}
	cfg.Vapi.PublicKey = "pub-global"
	cfg.Vapi.AssistantID = "asst-global"
	cfg.Vapi.PrivateKey = "priv-global"

	svc := &interviewService{
		interviewRepo: repository.NewInterviewRepository(db),
		catalogRepo:   repository.NewCatalogRepository(db),
		ledger:        NewLedgerService(repository.NewProfileRepository(db)),
		vapi:          vapi,
		analysis:      noopAnalysis{},
		cfg:           cfg,
		retryDelay:    time.Millisecond,
	}
	return svc, db
}

func endedCall(reason string) *VapiCall {
	duration := 240.5
	return &VapiCall{
		Status:      "ended",
		EndedReason: reason,
		Duration:    &duration,
		Artifact: VapiArtifact{
			Transcript:   "Officer: Why do you want to visit?\nApplicant: Tourism.",
			Messages:     []VapiMessage{{Role: "bot", Content: "Why do you want to visit?"}},
			RecordingURL: "https://recordings.example/1.wav",
		},
	}
}

func credits(t *testing.T, db *gorm.DB, userID uint) int {
	t.Helper()
	var profile model.Profile
	require.NoError(t, db.Where("user_id = ?", userID).First(&profile).Error)
	return profile.Credits
}

func TestCreateInterview_InsufficientCredits(t *testing.T) {
	svc, db := newInterviewService(t, &fakeVapi{})
	seedProfile(t, db, 1, 5)
	countryID, visaTypeID := seedCatalog(t, db)

	_, err := svc.Create(1, countryID, visaTypeID, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrInsufficientCredits))
}

func TestCreateInterview_NoUpfrontDebit(t *testing.T) {
	svc, db := newInterviewService(t, &fakeVapi{})
	seedProfile(t, db, 1, 20)
	countryID, visaTypeID := seedCatalog(t, db)

	interview, err := svc.Create(1, countryID, visaTypeID, nil)
	require.NoError(t, err)
	assert.Equal(t, model.InterviewStatusPending, interview.Status)
	assert.Equal(t, 20, credits(t, db, 1), "creation must not debit")
}

func TestCreateInterview_VisaTypeCountryMismatch(t *testing.T) {
	svc, db := newInterviewService(t, &fakeVapi{})
	seedProfile(t, db, 1, 20)
	countryID, _ := seedCatalog(t, db)
	other := model.Country{Name: "Canada", Code: "CA"}
	require.NoError(t, db.Create(&other).Error)
	visaType := model.VisaType{CountryID: other.ID, Name: "Study Permit"}
	require.NoError(t, db.Create(&visaType).Error)

	_, err := svc.Create(1, countryID, visaType.ID, nil)
	require.Error(t, err)
}

func TestStartInterview_UsesVisaTypeCredentials(t *testing.T) {
	svc, db := newInterviewService(t, &fakeVapi{})
	seedProfile(t, db, 1, 20)
	countryID, _ := seedCatalog(t, db)
	visaType := model.VisaType{
		CountryID:       countryID,
		Name:            "F1",
		VapiPublicKey:   strPtr("pub-f1"),
		VapiAssistantID: strPtr("asst-f1"),
	}
	require.NoError(t, db.Create(&visaType).Error)

	interview, err := svc.Create(1, countryID, visaType.ID, nil)
	require.NoError(t, err)

	session, err := svc.Start(interview.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, "pub-f1", session.PublicKey)
	assert.Equal(t, "asst-f1", session.AssistantID)

	// Already in progress; a second start loses.
	_, err = svc.Start(interview.ID, 1)
	require.Error(t, err)
}

func TestStartInterview_FallsBackToGlobalCredentials(t *testing.T) {
	svc, db := newInterviewService(t, &fakeVapi{})
	seedProfile(t, db, 1, 20)
	countryID, visaTypeID := seedCatalog(t, db)

	interview, err := svc.Create(1, countryID, visaTypeID, nil)
	require.NoError(t, err)

	session, err := svc.Start(interview.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, "pub-global", session.PublicKey)
	assert.Equal(t, "asst-global", session.AssistantID)
}

func TestStartInterview_ForbiddenForOtherUser(t *testing.T) {
	svc, db := newInterviewService(t, &fakeVapi{})
	seedProfile(t, db, 1, 20)
	countryID, visaTypeID := seedCatalog(t, db)

	interview, err := svc.Create(1, countryID, visaTypeID, nil)
	require.NoError(t, err)

	_, err = svc.Start(interview.ID, 2)
	assert.True(t, errors.Is(err, apperror.ErrForbidden))
}

func startedInterview(t *testing.T, svc *interviewService, db *gorm.DB, userID uint) *model.Interview {
	t.Helper()
	countryID, visaTypeID := seedCatalog(t, db)
	interview, err := svc.Create(userID, countryID, visaTypeID, nil)
	require.NoError(t, err)
	_, err = svc.Start(interview.ID, userID)
	require.NoError(t, err)
	require.NoError(t, svc.AttachCall(interview.ID, userID, "call-1"))
	return interview
}

func TestFinalize_CompletedDebitsOnce(t *testing.T) {
	vapi := &fakeVapi{call: endedCall("customer-ended-call")}
	svc, db := newInterviewService(t, vapi)
	seedProfile(t, db, 1, 20)
	interview := startedInterview(t, svc, db, 1)

	finalized, err := svc.Finalize(context.Background(), interview.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, model.InterviewStatusCompleted, finalized.Status)
	assert.Equal(t, 10, credits(t, db, 1))
	require.NotNil(t, finalized.Transcript)
	require.NotNil(t, finalized.RecordingURL)
	require.NotNil(t, finalized.EndedAt)

	// Re-entry returns the settled interview without another debit or fetch.
	fetches := vapi.calls
	again, err := svc.Finalize(context.Background(), interview.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, model.InterviewStatusCompleted, again.Status)
	assert.Equal(t, 10, credits(t, db, 1))
	assert.Equal(t, fetches, vapi.calls)
}

func TestFinalize_VendorFailureCostsNothing(t *testing.T) {
	vapi := &fakeVapi{call: endedCall("pipeline-error-openai-llm-failed")}
	svc, db := newInterviewService(t, vapi)
	seedProfile(t, db, 1, 20)
	interview := startedInterview(t, svc, db, 1)

	finalized, err := svc.Finalize(context.Background(), interview.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, model.InterviewStatusFailed, finalized.Status)
	assert.Equal(t, 20, credits(t, db, 1), "a failed session must not debit")
}

func TestFinalize_EmptyArtifactFails(t *testing.T) {
	call := endedCall("customer-ended-call")
	call.Artifact = VapiArtifact{}
	svc, db := newInterviewService(t, &fakeVapi{call: call})
	seedProfile(t, db, 1, 20)
	interview := startedInterview(t, svc, db, 1)

	finalized, err := svc.Finalize(context.Background(), interview.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, model.InterviewStatusFailed, finalized.Status)
	assert.Equal(t, 20, credits(t, db, 1))
}

func TestFinalize_WaitsForArtifactProcessing(t *testing.T) {
	processing := endedCall("customer-ended-call")
	processing.Artifact = VapiArtifact{}
	vapi := &sequencedVapi{seq: []*VapiCall{processing, endedCall("customer-ended-call")}}
	svc, db := newInterviewService(t, vapi)
	seedProfile(t, db, 1, 20)
	interview := startedInterview(t, svc, db, 1)

	// The vendor reports ended before post-processing fills the artifact;
	// the second fetch must rescue the session.
	finalized, err := svc.Finalize(context.Background(), interview.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, model.InterviewStatusCompleted, finalized.Status)
	assert.Equal(t, 2, vapi.calls)
	assert.Equal(t, 10, credits(t, db, 1))
}

func TestFinalize_NeverEndedFailsAfterRetries(t *testing.T) {
	vapi := &fakeVapi{call: &VapiCall{Status: "in-progress"}}
	svc, db := newInterviewService(t, vapi)
	seedProfile(t, db, 1, 20)
	interview := startedInterview(t, svc, db, 1)

	finalized, err := svc.Finalize(context.Background(), interview.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, model.InterviewStatusFailed, finalized.Status)
	assert.Equal(t, finalizeMaxAttempts, vapi.calls)
}

func TestFinalize_RequiresAttachedCall(t *testing.T) {
	svc, db := newInterviewService(t, &fakeVapi{})
	seedProfile(t, db, 1, 20)
	countryID, visaTypeID := seedCatalog(t, db)
	interview, err := svc.Create(1, countryID, visaTypeID, nil)
	require.NoError(t, err)

	_, err = svc.Finalize(context.Background(), interview.ID, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no call attached")
}

func TestCreateInterview_KeepsGivenName(t *testing.T) {
	svc, db := newInterviewService(t, &fakeVapi{})
	seedProfile(t, db, 1, 20)
	countryID, visaTypeID := seedCatalog(t, db)

	interview, err := svc.Create(1, countryID, visaTypeID, strPtr("Embassy dry run"))
	require.NoError(t, err)
	require.NotNil(t, interview.Name)
	assert.Equal(t, "Embassy dry run", *interview.Name)
}

func TestAnalyze_RequiresCompletedInterview(t *testing.T) {
	vapi := &fakeVapi{call: endedCall("customer-ended-call")}
	svc, db := newInterviewService(t, vapi)
	seedProfile(t, db, 1, 20)
	interview := startedInterview(t, svc, db, 1)

	err := svc.Analyze(interview.ID, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not completed")

	_, err = svc.Finalize(context.Background(), interview.ID, 1)
	require.NoError(t, err)
	require.NoError(t, svc.Analyze(interview.ID, 1))
}

func TestAnalyze_RejectsShortTranscript(t *testing.T) {
	vapi := &fakeVapi{call: endedCall("customer-ended-call")}
	svc, db := newInterviewService(t, vapi)
	seedProfile(t, db, 1, 20)
	interview := startedInterview(t, svc, db, 1)

	_, err := svc.Finalize(context.Background(), interview.ID, 1)
	require.NoError(t, err)
	require.NoError(t, db.Model(&model.Interview{}).Where("id = ?", interview.ID).
		Updates(map[string]interface{}{"transcript": "Hi.", "messages": nil}).Error)

	err = svc.Analyze(interview.ID, 1)
	assert.True(t, errors.Is(err, apperror.ErrInsufficientTranscript))
}

func TestMedia_WaitsForRecording(t *testing.T) {
	ready := endedCall("customer-ended-call")
	processing := endedCall("customer-ended-call")
	processing.Artifact.RecordingURL = ""
	vapi := &sequencedVapi{seq: []*VapiCall{processing, ready}}

	svc, db := newInterviewService(t, vapi)
	seedProfile(t, db, 1, 20)
	interview := startedInterview(t, svc, db, 1)

	media, err := svc.Media(context.Background(), interview.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, "https://recordings.example/1.wav", media.RecordingURL)
	assert.Equal(t, 2, vapi.calls)
}

func TestMedia_RequiresAttachedCall(t *testing.T) {
	svc, db := newInterviewService(t, &fakeVapi{})
	seedProfile(t, db, 1, 20)
	countryID, visaTypeID := seedCatalog(t, db)
	interview, err := svc.Create(1, countryID, visaTypeID, nil)
	require.NoError(t, err)

	_, err = svc.Media(context.Background(), interview.ID, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no call attached")
}

type sequencedVapi struct {
	seq   []*VapiCall
	calls int
}

func (f *sequencedVapi) GetCall(ctx context.Context, callID, privateKey string) (*VapiCall, error) {
	idx := f.calls
	if idx >= len(f.seq) {
		idx = len(f.seq) - 1
	}
	f.calls++
	return f.seq[idx], nil
}

func TestClassifyCall(t *testing.T) {
	cases := []struct {
		name string
		call *VapiCall
		want string
	}{
		{"clean end", endedCall("customer-ended-call"), model.InterviewStatusCompleted},
		{"max duration cut", endedCall("exceeded-max-duration"), model.InterviewStatusCompleted},
		{"assistant missing", endedCall("assistant-not-found"), model.InterviewStatusFailed},
		{"pipeline error", endedCall("pipeline-error"), model.InterviewStatusFailed},
		{"not ended", &VapiCall{Status: "queued"}, model.InterviewStatusFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, classifyCall(tc.call))
		})
	}
}
