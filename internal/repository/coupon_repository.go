package repository

import (
	"strings"

	"github.com/farhansajid/visamock/internal/model"
	"gorm.io/gorm"
)

type CouponRepository interface {
	Create(coupon *model.Coupon) error
	Update(coupon *model.Coupon) error
	Delete(id uint) error
	FindAll() ([]model.Coupon, error)
	FindByID(id uint) (*model.Coupon, error)
	FindActiveByCode(code string) (*model.Coupon, error)
	CountUsages(couponID, userID uint) (int64, error)
	CreateUsage(usage *model.CouponUsage) error
	IncrementTimesUsed(couponID uint) error
}

type couponRepository struct {
	db *gorm.DB
}

func NewCouponRepository(db *gorm.DB) CouponRepository {
	return &couponRepository{db: db}
}

func (r *couponRepository) Create(coupon *model.Coupon) error {
	return r.db.Create(coupon).Error
}

func (r *couponRepository) Update(coupon *model.Coupon) error {
	return r.db.Save(coupon).Error
}

func (r *couponRepository) Delete(id uint) error {
	return r.db.Delete(&model.Coupon{}, id).Error
}

func (r *couponRepository) FindAll() ([]model.Coupon, error) {
	var coupons []model.Coupon
	err := r.db.Order("created_at DESC").Find(&coupons).Error
	return coupons, err
}

func (r *couponRepository) FindByID(id uint) (*model.Coupon, error) {
	var coupon model.Coupon
	if err := r.db.First(&coupon, id).Error; err != nil {
		return nil, err
	}
	return &coupon, nil
}

// FindActiveByCode matches codes case-insensitively.
func (r *couponRepository) FindActiveByCode(code string) (*model.Coupon, error) {
	var coupon model.Coupon
	err := r.db.
		Where("LOWER(code) = ? AND is_active = ?", strings.ToLower(strings.TrimSpace(code)), true).
		First(&coupon).Error
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (r *couponRepository) CountUsages(couponID, userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.CouponUsage{}).
		Where("coupon_id = ? AND user_id = ?", couponID, userID).
		Count(&count).Error
	return count, err
}

func (r *couponRepository) CreateUsage(usage *model.CouponUsage) error {
	return r.db.Create(usage).Error
}

func (r *couponRepository) IncrementTimesUsed(couponID uint) error {
	return r.db.Model(&model.Coupon{}).Where("id = ?", couponID).
		UpdateColumn("times_used", gorm.Expr("times_used + 1")).Error
}
