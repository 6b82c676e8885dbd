package repository

import (
	"context"

	catalogdomain "github.com/smallbiznis/coursesync/internal/catalog/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() catalogdomain.Repository {
	return &repo{}
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*catalogdomain.Course, error) {
	var course catalogdomain.Course
	if err := db.WithContext(ctx).Raw(
		`SELECT id, title, status, product_id, vip_list, created_at, updated_at
		FROM courses WHERE id = ?`,
		id,
	).Scan(&course).Error; err != nil {
		return nil, err
	}
	if course.ID == 0 {
		return nil, nil
	}
	return &course, nil
}

func (r *repo) ListPublished(ctx context.Context, db *gorm.DB) ([]catalogdomain.Course, error) {
	var courses []catalogdomain.Course
	if err := db.WithContext(ctx).Raw(
		`SELECT id, title, status, product_id, vip_list, created_at, updated_at
		FROM courses WHERE status = ? ORDER BY id`,
		catalogdomain.CourseStatusPublished,
	).Scan(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *repo) ListByProductID(ctx context.Context, db *gorm.DB, productID int64) ([]catalogdomain.Course, error) {
	var courses []catalogdomain.Course
	if err := db.WithContext(ctx).Raw(
		`SELECT id, title, status, product_id, vip_list, created_at, updated_at
		FROM courses WHERE status = ? AND product_id = ? ORDER BY id`,
		catalogdomain.CourseStatusPublished,
		productID,
	).Scan(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}
