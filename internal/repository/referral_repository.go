package repository

import (
	"github.com/farhansajid/visamock/internal/model"
	"gorm.io/gorm"
)

type ReferralRepository interface {
	FindCodeByUserID(userID uint) (*model.ReferralCode, error)
	FindCodeByCode(code string) (*model.ReferralCode, error)
	CreateCode(code *model.ReferralCode) error
	FindByReferredUser(referredUserID uint) (*model.Referral, error)
	CountAwarded(referrerID uint) (int64, error)
	Create(referral *model.Referral) error
	MarkAwarded(id uint) error
}

type referralRepository struct {
	db *gorm.DB
}

func NewReferralRepository(db *gorm.DB) ReferralRepository {
	return &referralRepository{db: db}
}

func (r *referralRepository) FindCodeByUserID(userID uint) (*model.ReferralCode, error) {
	var code model.ReferralCode
	if err := r.db.Where("user_id = ?", userID).First(&code).Error; err != nil {
		return nil, err
	}
	return &code, nil
}

func (r *referralRepository) FindCodeByCode(code string) (*model.ReferralCode, error) {
	var rc model.ReferralCode
	if err := r.db.Where("code = ?", code).First(&rc).Error; err != nil {
		return nil, err
	}
	return &rc, nil
}

func (r *referralRepository) CreateCode(code *model.ReferralCode) error {
	return r.db.Create(code).Error
}

func (r *referralRepository) FindByReferredUser(referredUserID uint) (*model.Referral, error) {
	var referral model.Referral
	if err := r.db.Where("referred_user_id = ?", referredUserID).First(&referral).Error; err != nil {
		return nil, err
	}
	return &referral, nil
}

func (r *referralRepository) CountAwarded(referrerID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.Referral{}).
		Where("referrer_id = ? AND credits_awarded = ?", referrerID, true).
		Count(&count).Error
	return count, err
}

func (r *referralRepository) Create(referral *model.Referral) error {
	return r.db.Create(referral).Error
}

func (r *referralRepository) MarkAwarded(id uint) error {
	return r.db.Model(&model.Referral{}).Where("id = ?", id).
		Update("credits_awarded", true).Error
}
