package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/admin-dashboard-api/internal/domain"
	"gorm.io/gorm"
)

type CouponRepo struct {
	db *gorm.DB
}

func NewCouponRepo(db *gorm.DB) *CouponRepo {
	return &CouponRepo{db: db}
}

// GetByCode looks the coupon up by its upper-cased code.
func (r *CouponRepo) GetByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	var c domain.Coupon
	err := r.db.WithContext(ctx).Where("code = ?", strings.ToUpper(code)).First(&c).Error
	if err != nil {
		return nil, notFound(err, "coupon")
	}
	return &c, nil
}

func (r *CouponRepo) Create(ctx context.Context, c *domain.Coupon) error {
	err := r.db.WithContext(ctx).Create(c).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("coupon %s already exists: %w", c.Code, domain.ErrConflict)
	}
	return err
}
