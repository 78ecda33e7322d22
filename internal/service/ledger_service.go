package service

import (
	"errors"
	"fmt"

	"github.com/farhansajid/visamock/internal/apperror"
	"github.com/farhansajid/visamock/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Ledger reason codes. Every balance change names the business rule that
// triggered it.
const (
	LedgerReasonPurchase       = "purchase"
	LedgerReasonReferralBonus  = "referral_bonus"
	LedgerReasonAdminGrant     = "admin_grant"
	LedgerReasonInterviewDebit = "interview_debit"
)

// LedgerService is the single authoritative writer of a user's credit
// balance. Callers never touch profiles.credits directly.
type LedgerService interface {
	Adjust(userID uint, delta int, reason string) (int, error)
	Balance(userID uint) (int, error)
}

type ledgerService struct {
	profileRepo repository.ProfileRepository
}

func NewLedgerService(profileRepo repository.ProfileRepository) LedgerService {
	return &ledgerService{profileRepo: profileRepo}
}

func (s *ledgerService) Adjust(userID uint, delta int, reason string) (int, error) {
	balance, err := s.profileRepo.AdjustCredits(userID, delta)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, apperror.NotFoundf("profile for user %d not found", userID)
		}
		return 0, fmt.Errorf("ledger adjust failed for user %d: %w", userID, err)
	}

	log.Info().
		Uint("userID", userID).
		Int("delta", delta).
		Int("balance", balance).
		Str("reason", reason).
		Msg("Ledger adjusted")
	return balance, nil
}

func (s *ledgerService) Balance(userID uint) (int, error) {
	profile, err := s.profileRepo.FindByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, apperror.NotFoundf("profile for user %d not found", userID)
		}
		return 0, err
	}
	return profile.Credits, nil
}
