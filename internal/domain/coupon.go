package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type CouponType string

const (
	CouponPercentage  CouponType = "percentage"
	CouponFixedAmount CouponType = "fixed_amount"
	// CouponBuyXGetY is priced as a percentage off the whole cart until
	// per-item eligibility rules exist.
	CouponBuyXGetY CouponType = "buy_x_get_y"
)

func (t CouponType) Valid() bool {
	switch t {
	case CouponPercentage, CouponFixedAmount, CouponBuyXGetY:
		return true
	}
	return false
}

type Coupon struct {
	CouponID      string          `json:"id" gorm:"column:id;primaryKey;size:26"`
	Code          string          `json:"code" gorm:"uniqueIndex;size:64;not null"`
	Type          CouponType      `json:"type" gorm:"size:32;not null"`
	Value         decimal.Decimal `json:"value" gorm:"type:numeric(12,2);not null"`
	MinOrderValue decimal.Decimal `json:"min_order_value" gorm:"type:numeric(12,2);not null"`
	UsageLimit    *int            `json:"usage_limit"`
	UsageCount    int             `json:"usage_count" gorm:"not null;default:0"`
	StartsAt      time.Time       `json:"starts_at" gorm:"not null"`
	ExpiresAt     time.Time       `json:"expires_at" gorm:"not null"`
	IsActive      bool            `json:"is_active" gorm:"not null"`
	CreatedAt     time.Time       `json:"created"`
	UpdatedAt     time.Time       `json:"updated"`
}

func (Coupon) TableName() string { return "coupons" }

// CouponInput is the admin payload for creating a coupon.
type CouponInput struct {
	Code          string          `json:"code" validate:"required,max=64"`
	Type          CouponType      `json:"type" validate:"required,oneof=percentage fixed_amount buy_x_get_y"`
	Value         decimal.Decimal `json:"value"`
	MinOrderValue decimal.Decimal `json:"min_order_value"`
	UsageLimit    *int            `json:"usage_limit" validate:"omitempty,gte=1"`
	StartsAt      time.Time       `json:"starts_at" validate:"required"`
	ExpiresAt     time.Time       `json:"expires_at" validate:"required"`
	IsActive      *bool           `json:"is_active"`
}

// CartItem is a line of the cart snapshot sent with a validation request.
type CartItem struct {
	ProductID string          `json:"productId" validate:"required"`
	Quantity  int             `json:"quantity" validate:"gte=1"`
	Price     decimal.Decimal `json:"price"`
}

// ValidateCouponRequest is the public coupon check payload.
type ValidateCouponRequest struct {
	Code      string           `json:"code" validate:"required"`
	CartTotal *decimal.Decimal `json:"cartTotal" validate:"required"`
	CartItems []CartItem       `json:"cartItems" validate:"omitempty,dive"`
}

// CouponRejection names the first policy check a coupon failed.
type CouponRejection string

const (
	RejectNotFound     CouponRejection = "not_found"
	RejectInactive     CouponRejection = "inactive"
	RejectNotYetActive CouponRejection = "not_yet_active"
	RejectExpired      CouponRejection = "expired"
	RejectLimitReached CouponRejection = "limit_reached"
	RejectBelowMinimum CouponRejection = "below_minimum"
)
