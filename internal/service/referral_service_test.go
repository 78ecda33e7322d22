package service

import (
	"fmt"
	"strings"
	"testing"

	"github.com/farhansajid/visamock/internal/model"
	"github.com/farhansajid/visamock/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newReferralService(t *testing.T) (ReferralService, *gorm.DB) {
	db := newTestDB(t)
	svc := NewReferralService(
		repository.NewReferralRepository(db),
		NewLedgerService(repository.NewProfileRepository(db)),
	)
	return svc, db
}

func TestEnsureCode_StableAcrossCalls(t *testing.T) {
	svc, _ := newReferralService(t)

	first, err := svc.EnsureCode(1)
	require.NoError(t, err)
	assert.Len(t, first.Code, 8)

	second, err := svc.EnsureCode(1)
	require.NoError(t, err)
	assert.Equal(t, first.Code, second.Code)
}

func TestClaim_AwardsReferrerBonus(t *testing.T) {
	svc, db := newReferralService(t)
	seedProfile(t, db, 1, 20)
	code, err := svc.EnsureCode(1)
	require.NoError(t, err)

	require.NoError(t, svc.Claim(2, code.Code, nil, nil))

	var profile model.Profile
	require.NoError(t, db.Where("user_id = ?", 1).First(&profile).Error)
	assert.Equal(t, 20+model.ReferralBonusCredits, profile.Credits)

	var referral model.Referral
	require.NoError(t, db.Where("referred_user_id = ?", 2).First(&referral).Error)
	assert.True(t, referral.CreditsAwarded)
}

func TestClaim_RejectsSelfReferral(t *testing.T) {
	svc, db := newReferralService(t)
	seedProfile(t, db, 1, 20)
	code, err := svc.EnsureCode(1)
	require.NoError(t, err)

	err = svc.Claim(1, code.Code, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "your own referral code")
}

func TestClaim_RejectsSecondRedemption(t *testing.T) {
	svc, db := newReferralService(t)
	seedProfile(t, db, 1, 20)
	seedProfile(t, db, 3, 20)
	first, err := svc.EnsureCode(1)
	require.NoError(t, err)
	second, err := svc.EnsureCode(3)
	require.NoError(t, err)

	require.NoError(t, svc.Claim(2, first.Code, nil, nil))
	err = svc.Claim(2, second.Code, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already used a referral code")
}

func TestClaim_BonusCapped(t *testing.T) {
	svc, db := newReferralService(t)
	seedProfile(t, db, 1, 0)
	code, err := svc.EnsureCode(1)
	require.NoError(t, err)

	for i := 0; i < model.MaxAwardedReferrals+2; i++ {
		require.NoError(t, svc.Claim(uint(100+i), code.Code, nil, nil))
	}

	var profile model.Profile
	require.NoError(t, db.Where("user_id = ?", 1).First(&profile).Error)
	assert.Equal(t, model.MaxAwardedReferrals*model.ReferralBonusCredits, profile.Credits)

	var total, awarded int64
	require.NoError(t, db.Model(&model.Referral{}).Count(&total).Error)
	require.NoError(t, db.Model(&model.Referral{}).Where("credits_awarded = ?", true).Count(&awarded).Error)
	assert.EqualValues(t, model.MaxAwardedReferrals+2, total, "referrals past the cap are still recorded")
	assert.EqualValues(t, model.MaxAwardedReferrals, awarded)
}

func TestClaim_UnknownCode(t *testing.T) {
	svc, _ := newReferralService(t)
	err := svc.Claim(2, "ZZZZZZZZ", nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid referral code")
}

func TestClaim_CodeMatchingIsCaseInsensitive(t *testing.T) {
	svc, db := newReferralService(t)
	seedProfile(t, db, 1, 0)
	code, err := svc.EnsureCode(1)
	require.NoError(t, err)

	padded := fmt.Sprintf("  %s  ", strings.ToLower(code.Code))
	require.NoError(t, svc.Claim(2, padded, nil, nil))
}
