package postgres

import (
	"context"

	"github.com/admin-dashboard-api/internal/domain"
	"gorm.io/gorm"
)

type RoleRepo struct {
	db *gorm.DB
}

func NewRoleRepo(db *gorm.DB) *RoleRepo {
	return &RoleRepo{db: db}
}

func (r *RoleRepo) Put(ctx context.Context, role *domain.Role) error {
	return r.db.WithContext(ctx).Save(role).Error
}

func (r *RoleRepo) Get(ctx context.Context, roleID string) (*domain.Role, error) {
	var role domain.Role
	if err := r.db.WithContext(ctx).Where("id = ?", roleID).First(&role).Error; err != nil {
		return nil, notFound(err, "role")
	}
	return &role, nil
}
