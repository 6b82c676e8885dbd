package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	FindByUserAndCourse(ctx context.Context, db *gorm.DB, userID, courseID int64) (*Enrollment, error)
	Insert(ctx context.Context, db *gorm.DB, enrollment *Enrollment) error
	SetStatus(ctx context.Context, db *gorm.DB, id int64, status EnrollmentStatus, updatedAt time.Time) error
	ListByUser(ctx context.Context, db *gorm.DB, userID int64) ([]Enrollment, error)
	ListEnrolledUserIDs(ctx context.Context, db *gorm.DB, afterUserID int64, limit int) ([]int64, error)
}
