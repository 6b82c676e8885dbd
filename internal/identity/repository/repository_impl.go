package repository

import (
	"context"
	"strings"

	identitydomain "github.com/smallbiznis/coursesync/internal/identity/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() identitydomain.Repository {
	return &repo{}
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*identitydomain.User, error) {
	var user identitydomain.User
	if err := db.WithContext(ctx).Raw(
		`SELECT id, email, login, display_name, created_at FROM users WHERE id = ?`,
		id,
	).Scan(&user).Error; err != nil {
		return nil, err
	}
	if user.ID == 0 {
		return nil, nil
	}
	return &user, nil
}

func (r *repo) FindByEmail(ctx context.Context, db *gorm.DB, email string) (*identitydomain.User, error) {
	var user identitydomain.User
	if err := db.WithContext(ctx).Raw(
		`SELECT id, email, login, display_name, created_at FROM users WHERE LOWER(email) = ?`,
		strings.ToLower(strings.TrimSpace(email)),
	).Scan(&user).Error; err != nil {
		return nil, err
	}
	if user.ID == 0 {
		return nil, nil
	}
	return &user, nil
}
