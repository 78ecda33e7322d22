package service

import (
	"fmt"
	"strings"
	"testing"

	"github.com/farhansajid/visamock/internal/model"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := gorm.Open(
		sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)},
	)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.Profile{},
		&model.CreditGrant{},
		&model.UserRole{},
		&model.Country{},
		&model.VisaType{},
		&model.Interview{},
		&model.InterviewReport{},
		&model.Order{},
		&model.Coupon{},
		&model.CouponUsage{},
		&model.ReferralCode{},
		&model.Referral{},
	))
	return db
}

func seedProfile(t *testing.T, db *gorm.DB, userID uint, credits int) {
	t.Helper()
	require.NoError(t, db.Create(&model.Profile{UserID: userID, Credits: credits}).Error)
}

func seedCatalog(t *testing.T, db *gorm.DB) (countryID, visaTypeID uint) {
	t.Helper()
	country := model.Country{Name: "United States", Code: "US"}
	require.NoError(t, db.Create(&country).Error)
	visaType := model.VisaType{CountryID: country.ID, Name: "B1/B2"}
	require.NoError(t, db.Create(&visaType).Error)
	return country.ID, visaType.ID
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func boolPtr(b bool) *bool { return &b }
