package repository

import (
	"github.com/farhansajid/visamock/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReportRepository interface {
	UpsertPlaceholder(interviewID uint) error
	UpdateFields(interviewID uint, fields map[string]interface{}) error
	FindByInterviewID(interviewID uint) (*model.InterviewReport, error)
}

type reportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

// UpsertPlaceholder inserts the blank report row that tells the viewer
// analysis has started. Idempotent: a retry hits the unique interview_id
// index and does nothing.
func (r *reportRepository) UpsertPlaceholder(interviewID uint) error {
	report := model.InterviewReport{InterviewID: interviewID}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "interview_id"}},
		DoNothing: true,
	}).Create(&report).Error
}

func (r *reportRepository) UpdateFields(interviewID uint, fields map[string]interface{}) error {
	return r.db.Model(&model.InterviewReport{}).
		Where("interview_id = ?", interviewID).
		Updates(fields).Error
}

func (r *reportRepository) FindByInterviewID(interviewID uint) (*model.InterviewReport, error) {
	var report model.InterviewReport
	if err := r.db.Where("interview_id = ?", interviewID).First(&report).Error; err != nil {
		return nil, err
	}
	return &report, nil
}
