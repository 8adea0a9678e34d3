package coupon

import (
	"fmt"
	"time"

	"github.com/admin-dashboard-api/internal/domain"
	"github.com/admin-dashboard-api/internal/pkg/money"
	"github.com/shopspring/decimal"
)

// ValidationResult is the outcome of a coupon check. Rejections are normal
// results, not errors.
type ValidationResult struct {
	Valid          bool
	Rejection      domain.CouponRejection
	Reason         string
	DiscountAmount decimal.Decimal
	NewTotal       decimal.Decimal
	Coupon         *domain.Coupon
}

func reject(r domain.CouponRejection, reason string) *ValidationResult {
	return &ValidationResult{Rejection: r, Reason: reason}
}

// evaluate runs the policy checks against a coupon that was found. The order
// of the checks decides which reason the caller sees.
func evaluate(c *domain.Coupon, cartTotal decimal.Decimal, now time.Time) *ValidationResult {
	cartTotal = money.Round(cartTotal)
	if !c.IsActive {
		return reject(domain.RejectInactive, "This coupon is not active")
	}
	if now.Before(c.StartsAt) {
		return reject(domain.RejectNotYetActive,
			fmt.Sprintf("This coupon is not valid until %s", c.StartsAt.UTC().Format("2006-01-02")))
	}
	if now.After(c.ExpiresAt) {
		return reject(domain.RejectExpired, "This coupon has expired")
	}
	if c.UsageLimit != nil && c.UsageCount >= *c.UsageLimit {
		return reject(domain.RejectLimitReached, "This coupon has reached its usage limit")
	}
	if cartTotal.LessThan(c.MinOrderValue) {
		return reject(domain.RejectBelowMinimum,
			fmt.Sprintf("Minimum order value of %s required", c.MinOrderValue.StringFixed(money.Scale)))
	}

	discount := discountFor(c, cartTotal)
	newTotal := money.Round(cartTotal.Sub(discount))
	if newTotal.IsNegative() {
		newTotal = decimal.Zero
	}
	return &ValidationResult{
		Valid:          true,
		DiscountAmount: discount,
		NewTotal:       newTotal,
		Coupon:         c,
	}
}

// discountFor is rounded and never exceeds cartTotal, which must already be
// rounded.
func discountFor(c *domain.Coupon, cartTotal decimal.Decimal) decimal.Decimal {
	var d decimal.Decimal
	switch c.Type {
	case domain.CouponFixedAmount:
		d = c.Value
	default:
		// percentage, and buy_x_get_y priced as percentage off the whole cart
		d = money.Percent(cartTotal, c.Value)
	}
	return money.Clamp(money.Round(d), cartTotal)
}
