// Package domain contains persistence models for the course catalog.
package domain

import (
	"time"
)

// CourseStatus represents publication states for a course.
type CourseStatus string

const (
	CourseStatusPublished CourseStatus = "publish"
	CourseStatusDraft     CourseStatus = "draft"
	CourseStatusTrash     CourseStatus = "trash"
)

// Course is a catalog entry that may be linked to a sellable product.
type Course struct {
	ID        int64        `gorm:"primaryKey"`
	Title     string       `gorm:"type:text;not null"`
	Status    CourseStatus `gorm:"type:text;not null;index"`
	ProductID *int64       `gorm:"index"`
	VIPList   string       `gorm:"column:vip_list;type:text"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Course) TableName() string { return "courses" }
