package service

import (
	"context"
	"errors"
	"time"

	"github.com/farhansajid/visamock/internal/apperror"
	"github.com/farhansajid/visamock/internal/model"
	"github.com/farhansajid/visamock/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const (
	reportPollInterval = 5 * time.Second
	reportWaitTimeout  = 120 * time.Second
)

// ReportService serves finished reports and lets viewers block until
// synthesis publishes one. Waiting rides the notifier when synthesis runs
// in this process and falls back to polling otherwise.
type ReportService interface {
	Get(interviewID, userID uint) (*model.InterviewReport, error)
	Wait(ctx context.Context, interviewID, userID uint) (*model.InterviewReport, error)
}

type reportService struct {
	reportRepo    repository.ReportRepository
	interviewRepo repository.InterviewRepository
	notifier      *ReportNotifier
	pollInterval  time.Duration
	waitTimeout   time.Duration
}

func NewReportService(
	reportRepo repository.ReportRepository,
	interviewRepo repository.InterviewRepository,
	notifier *ReportNotifier,
) ReportService {
	return &reportService{
		reportRepo:    reportRepo,
		interviewRepo: interviewRepo,
		notifier:      notifier,
		pollInterval:  reportPollInterval,
		waitTimeout:   reportWaitTimeout,
	}
}

func (s *reportService) Get(interviewID, userID uint) (*model.InterviewReport, error) {
	if err := s.authorize(interviewID, userID); err != nil {
		return nil, err
	}
	report, err := s.reportRepo.FindByInterviewID(interviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFoundf("report for interview %d not found", interviewID)
		}
		return nil, err
	}
	return report, nil
}

// Wait blocks until the report is ready, the wait budget runs out, or the
// caller gives up. On timeout it returns whatever state the report is in;
// a half-filled report is still more useful than an error.
func (s *reportService) Wait(ctx context.Context, interviewID, userID uint) (*model.InterviewReport, error) {
	if err := s.authorize(interviewID, userID); err != nil {
		return nil, err
	}

	ready, cancel := s.notifier.Subscribe(interviewID)
	defer cancel()

	report, err := s.lookup(interviewID)
	if err != nil {
		return nil, err
	}
	if reportReady(report) {
		return report, nil
	}

	deadline := time.NewTimer(s.waitTimeout)
	defer deadline.Stop()
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			log.Warn().Uint("interviewID", interviewID).Msg("Report wait timed out")
			return s.lookupOrNotFound(interviewID)
		case <-ready:
			return s.lookupOrNotFound(interviewID)
		case <-ticker.C:
			report, err := s.lookup(interviewID)
			if err != nil {
				return nil, err
			}
			if reportReady(report) {
				return report, nil
			}
		}
	}
}

func (s *reportService) authorize(interviewID, userID uint) error {
	interview, err := s.interviewRepo.FindByID(interviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFoundf("interview %d not found", interviewID)
		}
		return err
	}
	if interview.UserID != userID && !interview.IsPublic {
		return apperror.ErrForbidden
	}
	return nil
}

// lookup treats a missing row as "not ready yet" rather than an error,
// since the placeholder may not have landed when waiting starts.
func (s *reportService) lookup(interviewID uint) (*model.InterviewReport, error) {
	report, err := s.reportRepo.FindByInterviewID(interviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return report, nil
}

func (s *reportService) lookupOrNotFound(interviewID uint) (*model.InterviewReport, error) {
	report, err := s.lookup(interviewID)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, apperror.NotFoundf("report for interview %d not found", interviewID)
	}
	return report, nil
}

func reportReady(report *model.InterviewReport) bool {
	return report != nil && report.OverallScore != nil
}
