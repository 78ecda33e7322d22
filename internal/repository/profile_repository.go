package repository

import (
	"github.com/farhansajid/visamock/internal/model"
	"gorm.io/gorm"
)

type ProfileRepository interface {
	Create(profile *model.Profile) error
	FindByUserID(userID uint) (*model.Profile, error)
	FindAll() ([]model.Profile, error)
	AdjustCredits(userID uint, delta int) (int, error)
	CreateGrant(grant *model.CreditGrant) error
}

type profileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Create(profile *model.Profile) error {
	return r.db.Create(profile).Error
}

func (r *profileRepository) FindByUserID(userID uint) (*model.Profile, error) {
	var profile model.Profile
	if err := r.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) FindAll() ([]model.Profile, error) {
	var profiles []model.Profile
	err := r.db.Order("created_at DESC").Find(&profiles).Error
	return profiles, err
}

// AdjustCredits applies a signed delta in a single UPDATE, clamped at zero,
// so concurrent credits and debits serialize at the database row. Returns
// the resulting balance.
func (r *profileRepository) AdjustCredits(userID uint, delta int) (int, error) {
	res := r.db.Model(&model.Profile{}).
		Where("user_id = ?", userID).
		UpdateColumn("credits", gorm.Expr(
			"CASE WHEN credits + ? < 0 THEN 0 ELSE credits + ? END", delta, delta))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}

	var profile model.Profile
	if err := r.db.Select("credits").Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return 0, err
	}
	return profile.Credits, nil
}

func (r *profileRepository) CreateGrant(grant *model.CreditGrant) error {
	return r.db.Create(grant).Error
}
