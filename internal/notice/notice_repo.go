package notice

import (
	"context"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

//go:generate mockgen -source=notice_repo.go -destination=mock/notice_repo_mock.go -package=mock
type Repository interface {
	Create(ctx context.Context, n *Notice) error
	// FindActiveForRole lists active notices addressed to role whose window contains at.
	FindActiveForRole(ctx context.Context, role string, at time.Time) ([]Notice, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, n *Notice) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *repository) FindActiveForRole(ctx context.Context, role string, at time.Time) ([]Notice, error) {
	var rows []Notice
	err := r.db.WithContext(ctx).
		Where("status = ?", StatusActive).
		Where("target_roles && ?", pq.StringArray{role}).
		Where("start_date <= ? AND end_date >= ?", at, at).
		Order("created_at DESC").
		Limit(50).
		Find(&rows).Error
	return rows, err
}
