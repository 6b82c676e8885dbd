// Package domain contains persistence models for platform users.
package domain

import "time"

// User mirrors the platform user table. Rows are owned by the
// surrounding platform and only read here.
type User struct {
	ID          int64     `gorm:"primaryKey"`
	Email       string    `gorm:"type:text;not null;index"`
	Login       string    `gorm:"type:text;not null"`
	DisplayName string    `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }
