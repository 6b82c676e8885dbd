package service

import (
	"context"
	"strings"

	identitydomain "github.com/smallbiznis/coursesync/internal/identity/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo identitydomain.Repository
}

type ServiceParam struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo identitydomain.Repository
}

func NewService(p ServiceParam) identitydomain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("identity.service"),
		repo: p.Repo,
	}
}

func (s *Service) GetUser(ctx context.Context, id int64) (identitydomain.User, error) {
	if id <= 0 {
		return identitydomain.User{}, identitydomain.ErrInvalidUser
	}
	user, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return identitydomain.User{}, err
	}
	if user == nil {
		return identitydomain.User{}, identitydomain.ErrUserNotFound
	}
	return *user, nil
}

func (s *Service) GetUserByEmail(ctx context.Context, email string) (identitydomain.User, error) {
	if strings.TrimSpace(email) == "" {
		return identitydomain.User{}, identitydomain.ErrInvalidUser
	}
	user, err := s.repo.FindByEmail(ctx, s.db, email)
	if err != nil {
		return identitydomain.User{}, err
	}
	if user == nil {
		return identitydomain.User{}, identitydomain.ErrUserNotFound
	}
	return *user, nil
}
