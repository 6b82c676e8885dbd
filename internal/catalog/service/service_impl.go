package service

import (
	"context"

	catalogdomain "github.com/smallbiznis/coursesync/internal/catalog/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo catalogdomain.Repository
}

type ServiceParam struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo catalogdomain.Repository
}

func NewService(p ServiceParam) catalogdomain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("catalog.service"),
		repo: p.Repo,
	}
}

func (s *Service) GetCourse(ctx context.Context, id int64) (catalogdomain.Course, error) {
	if id <= 0 {
		return catalogdomain.Course{}, catalogdomain.ErrInvalidCourse
	}
	course, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return catalogdomain.Course{}, err
	}
	if course == nil {
		return catalogdomain.Course{}, catalogdomain.ErrCourseNotFound
	}
	return *course, nil
}

func (s *Service) ListPublishedCourses(ctx context.Context) ([]catalogdomain.Course, error) {
	return s.repo.ListPublished(ctx, s.db)
}

func (s *Service) ListCoursesByProduct(ctx context.Context, productID int64) ([]catalogdomain.Course, error) {
	if productID <= 0 {
		return nil, catalogdomain.ErrInvalidCourse
	}
	return s.repo.ListByProductID(ctx, s.db, productID)
}
