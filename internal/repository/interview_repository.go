package repository

import (
	"time"

	"github.com/farhansajid/visamock/internal/model"
	"gorm.io/gorm"
)

type InterviewRepository interface {
	Create(interview *model.Interview) error
	FindByID(id uint) (*model.Interview, error)
	FindByIDWithDetails(id uint) (*model.Interview, error)
	FindAllByUser(userID uint) ([]model.Interview, error)
	FindAll() ([]model.Interview, error)
	SetCallID(id uint, callID string) error
	SetName(id uint, name string) error
	UpdateFields(id uint, fields map[string]interface{}) error
	Start(id uint) (bool, error)
	Finish(id uint, status string, endedAt time.Time) (bool, error)
}

type interviewRepository struct {
	db *gorm.DB
}

func NewInterviewRepository(db *gorm.DB) InterviewRepository {
	return &interviewRepository{db: db}
}

func (r *interviewRepository) Create(interview *model.Interview) error {
	return r.db.Create(interview).Error
}

func (r *interviewRepository) FindByID(id uint) (*model.Interview, error) {
	var interview model.Interview
	if err := r.db.First(&interview, id).Error; err != nil {
		return nil, err
	}
	return &interview, nil
}

func (r *interviewRepository) FindByIDWithDetails(id uint) (*model.Interview, error) {
	var interview model.Interview
	err := r.db.
		Preload("Country").
		Preload("VisaType").
		Preload("Report").
		First(&interview, id).Error
	if err != nil {
		return nil, err
	}
	return &interview, nil
}

func (r *interviewRepository) FindAllByUser(userID uint) ([]model.Interview, error) {
	var interviews []model.Interview
	err := r.db.
		Preload("Country").
		Preload("VisaType").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&interviews).Error
	return interviews, err
}

func (r *interviewRepository) FindAll() ([]model.Interview, error) {
	var interviews []model.Interview
	err := r.db.
		Preload("Country").
		Preload("VisaType").
		Order("created_at DESC").
		Find(&interviews).Error
	return interviews, err
}

func (r *interviewRepository) SetCallID(id uint, callID string) error {
	return r.db.Model(&model.Interview{}).Where("id = ?", id).
		Update("vapi_call_id", callID).Error
}

func (r *interviewRepository) SetName(id uint, name string) error {
	return r.db.Model(&model.Interview{}).Where("id = ?", id).
		Update("name", name).Error
}

func (r *interviewRepository) UpdateFields(id uint, fields map[string]interface{}) error {
	return r.db.Model(&model.Interview{}).Where("id = ?", id).
		Updates(fields).Error
}

// Start transitions pending -> in_progress. Returns false when the
// interview was not pending (already started or terminal).
func (r *interviewRepository) Start(id uint) (bool, error) {
	res := r.db.Model(&model.Interview{}).
		Where("id = ? AND status = ?", id, model.InterviewStatusPending).
		Update("status", model.InterviewStatusInProgress)
	return res.RowsAffected > 0, res.Error
}

// Finish moves the interview to a terminal status. The WHERE clause makes
// the transition single-winner: a second concurrent finalize affects zero
// rows and must not debit.
func (r *interviewRepository) Finish(id uint, status string, endedAt time.Time) (bool, error) {
	res := r.db.Model(&model.Interview{}).
		Where("id = ? AND status NOT IN ?", id, []string{model.InterviewStatusCompleted, model.InterviewStatusFailed}).
		Updates(map[string]interface{}{
			"status":   status,
			"ended_at": endedAt,
		})
	return res.RowsAffected > 0, res.Error
}
