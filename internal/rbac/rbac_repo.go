package rbac

import (
	"context"

	"gorm.io/gorm"
)

//go:generate mockgen -source=rbac_repo.go -destination=mock/rbac_repo_mock.go -package=mock
type Repository interface {
	GetRolePermissions(ctx context.Context) ([]RolePermissionRow, error)
	GetRoleParents(ctx context.Context) ([]RoleParentRow, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetRolePermissions(ctx context.Context) ([]RolePermissionRow, error) {
	var result []RolePermissionRow
	err := r.db.WithContext(ctx).
		Table("role_permissions").
		Select("role, resource, action").
		Order("role, resource, action").
		Scan(&result).Error
	return result, err
}

func (r *repository) GetRoleParents(ctx context.Context) ([]RoleParentRow, error) {
	var result []RoleParentRow
	err := r.db.WithContext(ctx).
		Table("role_parents").
		Select("role, parent").
		Scan(&result).Error
	return result, err
}
