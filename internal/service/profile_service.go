package service

import (
	"errors"

	"github.com/farhansajid/visamock/internal/model"
	"github.com/farhansajid/visamock/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ProfileService bootstraps user profiles and exposes admin credit grants.
type ProfileService interface {
	EnsureProfile(userID uint, email, fullName *string) (*model.Profile, error)
	Get(userID uint) (*model.Profile, error)
	ListAll() ([]model.Profile, error)
	GrantCredits(userID, grantedBy uint, credits int, reason *string) (int, error)
}

type profileService struct {
	profileRepo repository.ProfileRepository
	ledger      LedgerService
}

func NewProfileService(profileRepo repository.ProfileRepository, ledger LedgerService) ProfileService {
	return &profileService{profileRepo: profileRepo, ledger: ledger}
}

// EnsureProfile returns the profile, creating it with the starter balance
// on a user's first request.
func (s *profileService) EnsureProfile(userID uint, email, fullName *string) (*model.Profile, error) {
	profile, err := s.profileRepo.FindByUserID(userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	profile = &model.Profile{
		UserID:   userID,
		Email:    email,
		FullName: fullName,
		Credits:  model.StarterCredits,
	}
	if err := s.profileRepo.Create(profile); err != nil {
		// Lost a race against a concurrent first request for this user.
		if existing, findErr := s.profileRepo.FindByUserID(userID); findErr == nil {
			return existing, nil
		}
		return nil, err
	}

	log.Info().Uint("userID", userID).Int("credits", model.StarterCredits).Msg("Profile created with starter credits")
	return profile, nil
}

func (s *profileService) Get(userID uint) (*model.Profile, error) {
	return s.profileRepo.FindByUserID(userID)
}

func (s *profileService) ListAll() ([]model.Profile, error) {
	return s.profileRepo.FindAll()
}

// GrantCredits adjusts a user's balance on an admin's behalf and keeps an
// audit row. Negative grants claw credits back; the balance clamps at zero.
func (s *profileService) GrantCredits(userID, grantedBy uint, credits int, reason *string) (int, error) {
	balance, err := s.ledger.Adjust(userID, credits, LedgerReasonAdminGrant)
	if err != nil {
		return 0, err
	}

	grant := &model.CreditGrant{
		UserID:    userID,
		GrantedBy: grantedBy,
		Credits:   credits,
		Reason:    reason,
	}
	if err := s.profileRepo.CreateGrant(grant); err != nil {
		log.Error().Err(err).Uint("userID", userID).Msg("Credit grant applied but audit row failed")
	}
	return balance, nil
}
