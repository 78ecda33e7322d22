package service

import (
	"testing"
	"time"

	"github.com/farhansajid/visamock/internal/model"
	"github.com/farhansajid/visamock/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newCouponService(t *testing.T) (CouponService, *gorm.DB) {
	db := newTestDB(t)
	return NewCouponService(repository.NewCouponRepository(db)), db
}

func TestValidateCoupon_UnknownCode(t *testing.T) {
	svc, _ := newCouponService(t)

	_, err := svc.Validate("NOPE", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid coupon code")
}

func TestValidateCoupon_CaseInsensitive(t *testing.T) {
	svc, db := newCouponService(t)
	require.NoError(t, db.Create(&model.Coupon{
		Code: "WELCOME20", DiscountType: model.DiscountTypePercentage,
		DiscountAmount: 20, IsActive: boolPtr(true), PerUserLimit: 1,
	}).Error)

	coupon, err := svc.Validate("welcome20", 1)
	require.NoError(t, err)
	assert.Equal(t, "WELCOME20", coupon.Code)
}

func TestValidateCoupon_Expired(t *testing.T) {
	svc, db := newCouponService(t)
	yesterday := time.Now().Add(-24 * time.Hour)
	require.NoError(t, db.Create(&model.Coupon{
		Code: "OLD", DiscountType: model.DiscountTypePercentage,
		DiscountAmount: 10, IsActive: boolPtr(true), PerUserLimit: 1,
		ExpirationDate: &yesterday,
	}).Error)

	_, err := svc.Validate("OLD", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "This coupon has expired")
}

func TestValidateCoupon_GlobalCapReached(t *testing.T) {
	svc, db := newCouponService(t)
	require.NoError(t, db.Create(&model.Coupon{
		Code: "CAPPED", DiscountType: model.DiscountTypePercentage,
		DiscountAmount: 10, IsActive: boolPtr(true), PerUserLimit: 1,
		TimesUsed: 5, TotalUsageLimit: intPtr(5),
	}).Error)

	_, err := svc.Validate("CAPPED", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "This coupon has reached its usage limit")
}

func TestValidateCoupon_PerUserLimit(t *testing.T) {
	svc, db := newCouponService(t)
	coupon := model.Coupon{
		Code: "ONCE", DiscountType: model.DiscountTypePercentage,
		DiscountAmount: 10, IsActive: boolPtr(true), PerUserLimit: 1,
	}
	require.NoError(t, db.Create(&coupon).Error)
	require.NoError(t, db.Create(&model.CouponUsage{CouponID: coupon.ID, UserID: 7}).Error)

	_, err := svc.Validate("ONCE", 7)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "You have already used this coupon")

	// A different user is unaffected.
	_, err = svc.Validate("ONCE", 8)
	assert.NoError(t, err)
}

func TestValidateCoupon_InactiveIsInvisible(t *testing.T) {
	svc, db := newCouponService(t)
	require.NoError(t, db.Create(&model.Coupon{
		Code: "DISABLED", DiscountType: model.DiscountTypePercentage,
		DiscountAmount: 10, IsActive: boolPtr(false), PerUserLimit: 1,
	}).Error)

	_, err := svc.Validate("DISABLED", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid coupon code")

	// The disabled flag must survive the insert, not fall back to the
	// column default.
	var stored model.Coupon
	require.NoError(t, db.Where("code = ?", "DISABLED").First(&stored).Error)
	require.NotNil(t, stored.IsActive)
	assert.False(t, *stored.IsActive)
}

func TestApplyDiscount_Percentage(t *testing.T) {
	svc, _ := newCouponService(t)
	plan := Plans["pro"]
	coupon := &model.Coupon{DiscountType: model.DiscountTypePercentage, DiscountAmount: 20}

	assert.Equal(t, 1200, svc.ApplyDiscount(1500, "BDT", plan, coupon))
	assert.Equal(t, 12, svc.ApplyDiscount(15, "USD", plan, coupon))
}

func TestApplyDiscount_FixedConvertsForUSD(t *testing.T) {
	svc, _ := newCouponService(t)
	plan := Plans["pro"]
	coupon := &model.Coupon{DiscountType: model.DiscountTypeFixed, DiscountAmount: 200}

	// 200 BDT off the 1500 BDT price.
	assert.Equal(t, 1300, svc.ApplyDiscount(1500, "BDT", plan, coupon))
	// Converted proportionally: round(200 * 15/1500) = 2 off the USD price.
	assert.Equal(t, 13, svc.ApplyDiscount(15, "USD", plan, coupon))
}

func TestApplyDiscount_NeverNegative(t *testing.T) {
	svc, _ := newCouponService(t)
	plan := Plans["starter"]

	fixed := &model.Coupon{DiscountType: model.DiscountTypeFixed, DiscountAmount: 5000}
	assert.Equal(t, 0, svc.ApplyDiscount(800, "BDT", plan, fixed))

	full := &model.Coupon{DiscountType: model.DiscountTypePercentage, DiscountAmount: 100}
	assert.Equal(t, 0, svc.ApplyDiscount(800, "BDT", plan, full))
}
