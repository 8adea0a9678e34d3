package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/admin-dashboard-api/internal/domain"
)

// Service answers permission questions for an authenticated user.
type Service interface {
	HasPermission(ctx context.Context, userID, permission string) (bool, error)
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

type roleStore interface {
	Get(ctx context.Context, roleID string) (*domain.Role, error)
}

type service struct {
	users userStore
	roles roleStore
}

func NewService(users userStore, roles roleStore) Service {
	return &service{users: users, roles: roles}
}

// HasPermission resolves user -> role -> permissions. Unknown or disabled
// users and roles have no permissions.
func (s *service) HasPermission(ctx context.Context, userID, permission string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	u, err := s.users.Get(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup user: %w", err)
	}
	if !u.Enable || u.RoleID == "" {
		return false, nil
	}

	role, err := s.roles.Get(ctx, u.RoleID)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup role: %w", err)
	}
	return role.Grants(permission), nil
}
