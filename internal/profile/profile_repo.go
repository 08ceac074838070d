package profile

import (
	"context"
	"time"

	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

//go:generate mockgen -source=profile_repo.go -destination=mock/profile_repo_mock.go -package=mock
type Repository interface {
	// FindWorkPermitsExpiringBetween is inclusive on both ends.
	FindWorkPermitsExpiringBetween(ctx context.Context, from, to time.Time) ([]Profile, error)
	FindPassportsExpiringBetween(ctx context.Context, from, to time.Time) ([]Profile, error)
	// FindWorkPermitsExpiredBefore returns permits whose expiry date is strictly before date.
	FindWorkPermitsExpiredBefore(ctx context.Context, date time.Time) ([]Profile, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func foreignEmployees(db *gorm.DB) *gorm.DB {
	return db.Where("is_foreign_employee = ?", true)
}

func (r *repository) FindWorkPermitsExpiringBetween(ctx context.Context, from, to time.Time) ([]Profile, error) {
	var rows []Profile
	err := r.db.WithContext(ctx).
		Scopes(foreignEmployees).
		Where("work_permit_expiry_date BETWEEN ? AND ?", from.Format(dateLayout), to.Format(dateLayout)).
		Order("work_permit_expiry_date ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindPassportsExpiringBetween(ctx context.Context, from, to time.Time) ([]Profile, error) {
	var rows []Profile
	err := r.db.WithContext(ctx).
		Scopes(foreignEmployees).
		Where("passport_expiry_date BETWEEN ? AND ?", from.Format(dateLayout), to.Format(dateLayout)).
		Order("passport_expiry_date ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindWorkPermitsExpiredBefore(ctx context.Context, date time.Time) ([]Profile, error) {
	var rows []Profile
	err := r.db.WithContext(ctx).
		Scopes(foreignEmployees).
		Where("work_permit_expiry_date < ?", date.Format(dateLayout)).
		Order("work_permit_expiry_date ASC").
		Find(&rows).Error
	return rows, err
}
