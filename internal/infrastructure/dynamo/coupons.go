package dynamo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/admin-dashboard-api/internal/domain"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/shopspring/decimal"
)

// couponItem is the stored shape of a coupon. PK: code. Money is kept as a
// decimal string so no precision is lost to float conversion.
type couponItem struct {
	Code          string    `dynamodbav:"code"`
	ID            string    `dynamodbav:"id"`
	Type          string    `dynamodbav:"type"`
	Value         string    `dynamodbav:"value"`
	MinOrderValue string    `dynamodbav:"min_order_value"`
	UsageLimit    *int      `dynamodbav:"usage_limit,omitempty"`
	UsageCount    int       `dynamodbav:"usage_count"`
	StartsAt      time.Time `dynamodbav:"starts_at"`
	ExpiresAt     time.Time `dynamodbav:"expires_at"`
	IsActive      bool      `dynamodbav:"is_active"`
	CreatedAt     time.Time `dynamodbav:"created_at"`
	UpdatedAt     time.Time `dynamodbav:"updated_at"`
}

func toCouponItem(c *domain.Coupon) couponItem {
	return couponItem{
		Code:          c.Code,
		ID:            c.CouponID,
		Type:          string(c.Type),
		Value:         c.Value.String(),
		MinOrderValue: c.MinOrderValue.String(),
		UsageLimit:    c.UsageLimit,
		UsageCount:    c.UsageCount,
		StartsAt:      c.StartsAt,
		ExpiresAt:     c.ExpiresAt,
		IsActive:      c.IsActive,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

func (it couponItem) toDomain() (*domain.Coupon, error) {
	value, err := decimal.NewFromString(it.Value)
	if err != nil {
		return nil, fmt.Errorf("coupon %s value: %w", it.Code, err)
	}
	minOrder, err := decimal.NewFromString(it.MinOrderValue)
	if err != nil {
		return nil, fmt.Errorf("coupon %s min_order_value: %w", it.Code, err)
	}
	return &domain.Coupon{
		CouponID:      it.ID,
		Code:          it.Code,
		Type:          domain.CouponType(it.Type),
		Value:         value,
		MinOrderValue: minOrder,
		UsageLimit:    it.UsageLimit,
		UsageCount:    it.UsageCount,
		StartsAt:      it.StartsAt,
		ExpiresAt:     it.ExpiresAt,
		IsActive:      it.IsActive,
		CreatedAt:     it.CreatedAt,
		UpdatedAt:     it.UpdatedAt,
	}, nil
}

// CouponRepo provides typed DynamoDB operations for the coupons table.
type CouponRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewCouponRepo(client *dynamodb.Client, tableName string) *CouponRepo {
	return &CouponRepo{client: client, tableName: tableName}
}

func (r *CouponRepo) GetByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey(fieldCode, strings.ToUpper(code)),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("coupon not found: %w", domain.ErrNotFound)
	}
	var it couponItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return nil, err
	}
	return it.toDomain()
}

// Create inserts c unless its code is already taken.
func (r *CouponRepo) Create(ctx context.Context, c *domain.Coupon) error {
	item, err := attributevalue.MarshalMap(toCouponItem(c))
	if err != nil {
		return fmt.Errorf("marshal coupon: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(r.tableName),
		Item:                     item,
		ConditionExpression:      aws.String("attribute_not_exists(#c)"),
		ExpressionAttributeNames: map[string]string{"#c": fieldCode},
	})
	if conditionFailed(err) {
		return fmt.Errorf("coupon %s already exists: %w", c.Code, domain.ErrConflict)
	}
	return err
}
