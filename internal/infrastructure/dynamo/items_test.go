package dynamo

import (
	"testing"
	"time"

	"github.com/admin-dashboard-api/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOTPItem_KeepsMillisAndSetsPurge(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	verified := created.Add(2 * time.Minute)
	tok := "abc"
	o := &domain.PasswordResetOTP{
		ID:            "o1",
		Email:         "a@x.com",
		Code:          "123456",
		ExpiresAt:     created.Add(10 * time.Minute),
		Used:          true,
		VerifiedAt:    &verified,
		ExchangeToken: &tok,
		CreatedAt:     created,
	}

	it := toOTPItem(o)
	assert.Equal(t, created.Add(24*time.Hour).Unix(), it.PurgeAt)
	assert.Equal(t, o.ExpiresAt.UnixMilli(), it.ExpiresAt)

	back := it.toDomain()
	assert.Equal(t, o.ExpiresAt, back.ExpiresAt)
	assert.Equal(t, o.CreatedAt, back.CreatedAt)
	require.NotNil(t, back.VerifiedAt)
	assert.Equal(t, verified, *back.VerifiedAt)
	assert.Equal(t, "abc", *back.ExchangeToken)
}

func TestCouponItem_DecimalsAsStrings(t *testing.T) {
	c := &domain.Coupon{
		CouponID:      "c1",
		Code:          "SAVE10",
		Type:          domain.CouponPercentage,
		Value:         decimal.RequireFromString("12.5"),
		MinOrderValue: decimal.RequireFromString("100.00"),
	}
	it := toCouponItem(c)
	assert.Equal(t, "12.5", it.Value)
	assert.Equal(t, "100", it.MinOrderValue)

	back, err := it.toDomain()
	require.NoError(t, err)
	assert.True(t, back.Value.Equal(c.Value))
	assert.Equal(t, domain.CouponPercentage, back.Type)
}

func TestCouponItem_BadDecimal(t *testing.T) {
	_, err := couponItem{Code: "X", Value: "ten", MinOrderValue: "0"}.toDomain()
	assert.Error(t, err)
}
