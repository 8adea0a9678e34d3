package coupon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/admin-dashboard-api/internal/domain"
	"github.com/admin-dashboard-api/internal/pkg/id"
	"github.com/admin-dashboard-api/internal/pkg/money"
	"github.com/shopspring/decimal"
)

type ValidateRequest struct {
	Code      string
	CartTotal decimal.Decimal
	// CartItems is accepted for forward compatibility; buy_x_get_y does not
	// price individual items yet.
	CartItems []domain.CartItem
}

type Service interface {
	Validate(ctx context.Context, req ValidateRequest) (*ValidationResult, error)
	Create(ctx context.Context, in domain.CouponInput) (*domain.Coupon, error)
	Get(ctx context.Context, code string) (*domain.Coupon, error)
}

type couponStore interface {
	GetByCode(ctx context.Context, code string) (*domain.Coupon, error)
	Create(ctx context.Context, c *domain.Coupon) error
}

type service struct {
	coupons couponStore
	now     func() time.Time
}

// NewService builds the coupon engine. now may be nil.
func NewService(coupons couponStore, now func() time.Time) Service {
	if now == nil {
		now = time.Now
	}
	return &service{coupons: coupons, now: now}
}

// Validate never writes: usage_count belongs to order placement.
func (s *service) Validate(ctx context.Context, req ValidateRequest) (*ValidationResult, error) {
	code := normalizeCode(req.Code)
	if code == "" {
		return nil, fmt.Errorf("code required: %w", domain.ErrBadRequest)
	}
	if req.CartTotal.IsNegative() {
		return nil, fmt.Errorf("cart total must not be negative: %w", domain.ErrBadRequest)
	}

	c, err := s.coupons.GetByCode(ctx, code)
	if errors.Is(err, domain.ErrNotFound) {
		return reject(domain.RejectNotFound, "Invalid coupon code"), nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup coupon: %w", err)
	}
	return evaluate(c, req.CartTotal, s.now().UTC()), nil
}

func (s *service) Create(ctx context.Context, in domain.CouponInput) (*domain.Coupon, error) {
	code := normalizeCode(in.Code)
	if code == "" {
		return nil, fmt.Errorf("code required: %w", domain.ErrBadRequest)
	}
	if !in.Type.Valid() {
		return nil, fmt.Errorf("unknown coupon type %q: %w", in.Type, domain.ErrBadRequest)
	}
	if !in.Value.IsPositive() {
		return nil, fmt.Errorf("value must be positive: %w", domain.ErrBadRequest)
	}
	if in.Type != domain.CouponFixedAmount && in.Value.GreaterThan(decimal.NewFromInt(100)) {
		return nil, fmt.Errorf("percentage must be at most 100: %w", domain.ErrBadRequest)
	}
	if in.MinOrderValue.IsNegative() {
		return nil, fmt.Errorf("min_order_value must not be negative: %w", domain.ErrBadRequest)
	}
	if !in.ExpiresAt.After(in.StartsAt) {
		return nil, fmt.Errorf("expires_at must be after starts_at: %w", domain.ErrBadRequest)
	}

	now := s.now().UTC()
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	c := &domain.Coupon{
		CouponID:      id.New(),
		Code:          code,
		Type:          in.Type,
		Value:         money.Round(in.Value),
		MinOrderValue: money.Round(in.MinOrderValue),
		UsageLimit:    in.UsageLimit,
		StartsAt:      in.StartsAt.UTC(),
		ExpiresAt:     in.ExpiresAt.UTC(),
		IsActive:      active,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.coupons.Create(ctx, c); err != nil {
		return nil, err
	}
	slog.Info("coupon created", "coupon_id", c.CouponID, "code", c.Code)
	return c, nil
}

func (s *service) Get(ctx context.Context, code string) (*domain.Coupon, error) {
	code = normalizeCode(code)
	if code == "" {
		return nil, fmt.Errorf("code required: %w", domain.ErrBadRequest)
	}
	return s.coupons.GetByCode(ctx, code)
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
