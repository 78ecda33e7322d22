package service

import (
	"errors"
	"math"
	"time"

	"github.com/farhansajid/visamock/internal/apperror"
	"github.com/farhansajid/visamock/internal/model"
	"github.com/farhansajid/visamock/internal/repository"
	"gorm.io/gorm"
)

// CouponService validates discount codes and applies them to plan prices.
type CouponService interface {
	Validate(code string, userID uint) (*model.Coupon, error)
	ApplyDiscount(amount int, currency string, plan Plan, coupon *model.Coupon) int
}

type couponService struct {
	couponRepo repository.CouponRepository
}

func NewCouponService(couponRepo repository.CouponRepository) CouponService {
	return &couponService{couponRepo: couponRepo}
}

// Validate checks a code against expiry, the global cap and the per-user
// cap. The returned errors carry the exact user-facing rejection reasons.
func (s *couponService) Validate(code string, userID uint) (*model.Coupon, error) {
	if code == "" {
		return nil, apperror.Validationf("Coupon code is required")
	}

	coupon, err := s.couponRepo.FindActiveByCode(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Validationf("Invalid coupon code")
		}
		return nil, err
	}

	if coupon.ExpirationDate != nil && !coupon.ExpirationDate.After(time.Now()) {
		return nil, apperror.Validationf("This coupon has expired")
	}

	if coupon.TotalUsageLimit != nil && coupon.TimesUsed >= *coupon.TotalUsageLimit {
		return nil, apperror.Validationf("This coupon has reached its usage limit")
	}

	used, err := s.couponRepo.CountUsages(coupon.ID, userID)
	if err != nil {
		return nil, err
	}
	if used >= int64(coupon.PerUserLimit) {
		return nil, apperror.Validationf("You have already used this coupon")
	}

	return coupon, nil
}

// ApplyDiscount prices the coupon against an amount in the given currency.
// Percentage discounts scale directly; fixed discounts are denominated in
// BDT and converted proportionally when the purchase is in USD. The result
// never goes below zero.
func (s *couponService) ApplyDiscount(amount int, currency string, plan Plan, coupon *model.Coupon) int {
	if coupon.DiscountType == model.DiscountTypePercentage {
		discounted := math.Round(float64(amount) * (1 - float64(coupon.DiscountAmount)/100))
		return int(math.Max(0, discounted))
	}

	discount := float64(coupon.DiscountAmount)
	if currency == "USD" {
		ratio := float64(plan.USD) / float64(plan.BDT)
		discount = math.Round(discount * ratio)
	}
	discounted := float64(amount) - discount
	if discounted < 0 {
		return 0
	}
	return int(discounted)
}
