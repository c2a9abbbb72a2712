package models

import (
	"time"

	"github.com/lebraggaa/spool-tracker/pkg/enums"
)

// User represents an operator account able to log in and apply transitions.
type User struct {
	ID           uint           `gorm:"column:id;primaryKey;autoIncrement"`
	Username     string         `gorm:"column:username;type:varchar(50);not null;uniqueIndex"`
	PasswordHash string         `gorm:"column:password_hash;type:varchar(255);not null"`
	Role         enums.UserRole `gorm:"column:role;type:varchar(30);not null"`
	LastLoginAt  *time.Time     `gorm:"column:last_login_at"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
}

// TableName overrides the GORM default.
func (User) TableName() string {
	return "users"
}
