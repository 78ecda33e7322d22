package model

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type UserRole struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	Role      string    `json:"role" gorm:"not null;default:'user'"`
	CreatedAt time.Time `json:"created_at"`
}
