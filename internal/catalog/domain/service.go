package domain

import (
	"context"
	"errors"
)

type Service interface {
	GetCourse(ctx context.Context, id int64) (Course, error)
	ListPublishedCourses(ctx context.Context) ([]Course, error)
	ListCoursesByProduct(ctx context.Context, productID int64) ([]Course, error)
}

var (
	ErrCourseNotFound = errors.New("course_not_found")
	ErrInvalidCourse  = errors.New("invalid_course")
)
