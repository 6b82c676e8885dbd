package repository

import (
	"context"
	"time"

	enrollmentdomain "github.com/smallbiznis/coursesync/internal/enrollment/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() enrollmentdomain.Repository {
	return &repo{}
}

func (r *repo) FindByUserAndCourse(ctx context.Context, db *gorm.DB, userID, courseID int64) (*enrollmentdomain.Enrollment, error) {
	var enrollment enrollmentdomain.Enrollment
	if err := db.WithContext(ctx).Raw(
		`SELECT id, course_id, user_id, status, created_at, updated_at
		FROM course_enrollments WHERE user_id = ? AND course_id = ?`,
		userID,
		courseID,
	).Scan(&enrollment).Error; err != nil {
		return nil, err
	}
	if enrollment.ID == 0 {
		return nil, nil
	}
	return &enrollment, nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, enrollment *enrollmentdomain.Enrollment) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO course_enrollments (id, course_id, user_id, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		enrollment.ID,
		enrollment.CourseID,
		enrollment.UserID,
		enrollment.Status,
		enrollment.CreatedAt,
		enrollment.UpdatedAt,
	).Error
}

func (r *repo) SetStatus(ctx context.Context, db *gorm.DB, id int64, status enrollmentdomain.EnrollmentStatus, updatedAt time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE course_enrollments SET status = ?, updated_at = ? WHERE id = ?`,
		status,
		updatedAt,
		id,
	).Error
}

func (r *repo) ListByUser(ctx context.Context, db *gorm.DB, userID int64) ([]enrollmentdomain.Enrollment, error) {
	var enrollments []enrollmentdomain.Enrollment
	if err := db.WithContext(ctx).Raw(
		`SELECT id, course_id, user_id, status, created_at, updated_at
		FROM course_enrollments WHERE user_id = ? ORDER BY course_id`,
		userID,
	).Scan(&enrollments).Error; err != nil {
		return nil, err
	}
	return enrollments, nil
}

func (r *repo) ListEnrolledUserIDs(ctx context.Context, db *gorm.DB, afterUserID int64, limit int) ([]int64, error) {
	var ids []int64
	if err := db.WithContext(ctx).Raw(
		`SELECT DISTINCT user_id FROM course_enrollments WHERE user_id > ? ORDER BY user_id LIMIT ?`,
		afterUserID,
		limit,
	).Scan(&ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
