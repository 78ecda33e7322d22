package repository

import (
	"github.com/farhansajid/visamock/internal/model"
	"gorm.io/gorm"
)

type UserRoleRepository interface {
	HasRole(userID uint, role string) (bool, error)
}

type userRoleRepository struct {
	db *gorm.DB
}

func NewUserRoleRepository(db *gorm.DB) UserRoleRepository {
	return &userRoleRepository{db: db}
}

func (r *userRoleRepository) HasRole(userID uint, role string) (bool, error) {
	var count int64
	err := r.db.Model(&model.UserRole{}).
		Where("user_id = ? AND role = ?", userID, role).
		Count(&count).Error
	return count > 0, err
}
