// Package domain contains persistence models for course enrollments.
package domain

import "time"

// EnrollmentStatus represents LMS enrollment states.
type EnrollmentStatus string

const (
	EnrollmentStatusCompleted EnrollmentStatus = "completed"
	EnrollmentStatusCancelled EnrollmentStatus = "cancel"
)

// Enrollment links a user to a course.
type Enrollment struct {
	ID        int64            `gorm:"primaryKey"`
	CourseID  int64            `gorm:"not null;index:idx_enrollments_course_user"`
	UserID    int64            `gorm:"not null;index:idx_enrollments_course_user"`
	Status    EnrollmentStatus `gorm:"type:text;not null"`
	CreatedAt time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Enrollment) TableName() string { return "course_enrollments" }

// IsActive reports whether the enrollment currently grants access.
func (e Enrollment) IsActive() bool {
	return e.Status == EnrollmentStatusCompleted
}
