package service

import (
	"errors"
	"strings"

	"github.com/farhansajid/visamock/internal/apperror"
	"github.com/farhansajid/visamock/internal/model"
	"github.com/farhansajid/visamock/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ReferralService hands out invite codes and converts referred signups
// into referrer credits, capped per referrer.
type ReferralService interface {
	EnsureCode(userID uint) (*model.ReferralCode, error)
	Claim(referredUserID uint, code string, ip, fingerprint *string) error
}

type referralService struct {
	referralRepo repository.ReferralRepository
	ledger       LedgerService
}

func NewReferralService(referralRepo repository.ReferralRepository, ledger LedgerService) ReferralService {
	return &referralService{referralRepo: referralRepo, ledger: ledger}
}

// EnsureCode returns the user's invite code, minting one on first use.
func (s *referralService) EnsureCode(userID uint) (*model.ReferralCode, error) {
	code, err := s.referralRepo.FindCodeByUserID(userID)
	if err == nil {
		return code, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	code = &model.ReferralCode{
		UserID: userID,
		Code:   newReferralCode(),
	}
	if err := s.referralRepo.CreateCode(code); err != nil {
		// Lost a race against a concurrent first request for this user.
		if existing, findErr := s.referralRepo.FindCodeByUserID(userID); findErr == nil {
			return existing, nil
		}
		return nil, err
	}
	return code, nil
}

// Claim records that a new user signed up through a code and pays the
// referrer the bonus while under the cap. A user can be referred once;
// self-referral is rejected.
func (s *referralService) Claim(referredUserID uint, code string, ip, fingerprint *string) error {
	referralCode, err := s.referralRepo.FindCodeByCode(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.Validationf("Invalid referral code")
		}
		return err
	}
	if referralCode.UserID == referredUserID {
		return apperror.Validationf("You cannot use your own referral code")
	}
	if _, err := s.referralRepo.FindByReferredUser(referredUserID); err == nil {
		return apperror.Validationf("You have already used a referral code")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	referral := &model.Referral{
		ReferrerID:        referralCode.UserID,
		ReferredUserID:    referredUserID,
		IPAddress:         ip,
		DeviceFingerprint: fingerprint,
	}
	if err := s.referralRepo.Create(referral); err != nil {
		return err
	}

	awarded, err := s.referralRepo.CountAwarded(referralCode.UserID)
	if err != nil {
		return err
	}
	if awarded >= model.MaxAwardedReferrals {
		log.Info().Uint("referrerID", referralCode.UserID).Msg("Referral recorded but bonus cap reached")
		return nil
	}

	if _, err := s.ledger.Adjust(referralCode.UserID, model.ReferralBonusCredits, LedgerReasonReferralBonus); err != nil {
		return err
	}
	if err := s.referralRepo.MarkAwarded(referral.ID); err != nil {
		return err
	}

	log.Info().
		Uint("referrerID", referralCode.UserID).
		Uint("referredUserID", referredUserID).
		Int("credits", model.ReferralBonusCredits).
		Msg("Referral bonus awarded")
	return nil
}

// newReferralCode mints an 8 character uppercase code. Collisions hit the
// unique index and surface as a create error.
func newReferralCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
}
