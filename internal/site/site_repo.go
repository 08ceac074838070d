package site

import (
	"context"

	"gorm.io/gorm"
)

//go:generate mockgen -source=site_repo.go -destination=mock/site_repo_mock.go -package=mock
type Repository interface {
	FindByID(ctx context.Context, id string) (*Site, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindByID(ctx context.Context, id string) (*Site, error) {
	var s Site
	err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}
