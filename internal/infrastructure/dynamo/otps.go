package dynamo

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/admin-dashboard-api/internal/domain"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// otpRetention is how long DynamoDB keeps a code around before TTL reaps it.
const otpRetention = 24 * time.Hour

// otpItem is the stored shape of a reset code. PK: email, so writing a new
// code for an address overwrites the previous one. Times are unix millis so
// condition expressions can compare them numerically.
type otpItem struct {
	Email             string  `dynamodbav:"email"`
	ID                string  `dynamodbav:"id"`
	Code              string  `dynamodbav:"code"`
	ExpiresAt         int64   `dynamodbav:"expires_at"`
	Used              bool    `dynamodbav:"used"`
	VerifiedAt        *int64  `dynamodbav:"verified_at,omitempty"`
	RequesterMetadata string  `dynamodbav:"requester_metadata,omitempty"`
	ExchangeToken     *string `dynamodbav:"exchange_token,omitempty"`
	CreatedAt         int64   `dynamodbav:"created_at"`
	PurgeAt           int64   `dynamodbav:"purge_at"`
}

func toOTPItem(o *domain.PasswordResetOTP) otpItem {
	it := otpItem{
		Email:             o.Email,
		ID:                o.ID,
		Code:              o.Code,
		ExpiresAt:         o.ExpiresAt.UnixMilli(),
		Used:              o.Used,
		RequesterMetadata: o.RequesterMetadata,
		ExchangeToken:     o.ExchangeToken,
		CreatedAt:         o.CreatedAt.UnixMilli(),
		PurgeAt:           o.CreatedAt.Add(otpRetention).Unix(),
	}
	if o.VerifiedAt != nil {
		ms := o.VerifiedAt.UnixMilli()
		it.VerifiedAt = &ms
	}
	return it
}

func (it otpItem) toDomain() *domain.PasswordResetOTP {
	o := &domain.PasswordResetOTP{
		ID:                it.ID,
		Email:             it.Email,
		Code:              it.Code,
		ExpiresAt:         time.UnixMilli(it.ExpiresAt).UTC(),
		Used:              it.Used,
		RequesterMetadata: it.RequesterMetadata,
		ExchangeToken:     it.ExchangeToken,
		CreatedAt:         time.UnixMilli(it.CreatedAt).UTC(),
	}
	if it.VerifiedAt != nil {
		v := time.UnixMilli(*it.VerifiedAt).UTC()
		o.VerifiedAt = &v
	}
	return o
}

// OTPRepo stores password reset codes, one item per email.
type OTPRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewOTPRepo(client *dynamodb.Client, tableName string) *OTPRepo {
	return &OTPRepo{client: client, tableName: tableName}
}

// Replace overwrites whatever code the email had with o.
func (r *OTPRepo) Replace(ctx context.Context, o *domain.PasswordResetOTP) error {
	item, err := attributevalue.MarshalMap(toOTPItem(o))
	if err != nil {
		return fmt.Errorf("marshal reset code: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *OTPRepo) MarkVerified(ctx context.Context, email, code, exchangeToken string, now time.Time) (bool, error) {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey(fieldEmail, email),
		UpdateExpression:    aws.String("SET #used = :t, #tok = :tok, #va = :now"),
		ConditionExpression: aws.String("#code = :code AND #used = :f AND #exp > :now"),
		ExpressionAttributeNames: map[string]string{
			"#used": fieldUsed,
			"#tok":  fieldExchangeToken,
			"#va":   fieldVerifiedAt,
			"#code": fieldCode,
			"#exp":  fieldExpiresAt,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":t":    &types.AttributeValueMemberBOOL{Value: true},
			":f":    &types.AttributeValueMemberBOOL{Value: false},
			":tok":  &types.AttributeValueMemberS{Value: exchangeToken},
			":code": &types.AttributeValueMemberS{Value: code},
			":now":  &types.AttributeValueMemberN{Value: fmt.Sprint(now.UnixMilli())},
		},
	})
	if conditionFailed(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *OTPRepo) FindUnused(ctx context.Context, email, code string) (*domain.PasswordResetOTP, error) {
	it, err := r.get(ctx, email)
	if err != nil {
		return nil, err
	}
	if it.Used || subtle.ConstantTimeCompare([]byte(it.Code), []byte(code)) != 1 {
		return nil, fmt.Errorf("reset code not found: %w", domain.ErrNotFound)
	}
	return it.toDomain(), nil
}

func (r *OTPRepo) FindByExchangeToken(ctx context.Context, email, exchangeToken string) (*domain.PasswordResetOTP, error) {
	it, err := r.get(ctx, email)
	if err != nil {
		return nil, err
	}
	if !it.Used || it.ExchangeToken == nil ||
		subtle.ConstantTimeCompare([]byte(*it.ExchangeToken), []byte(exchangeToken)) != 1 {
		return nil, fmt.Errorf("reset token not found: %w", domain.ErrNotFound)
	}
	return it.toDomain(), nil
}

// Consume deletes the item only if it still holds the record o was read from.
func (r *OTPRepo) Consume(ctx context.Context, o *domain.PasswordResetOTP) (bool, error) {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey(fieldEmail, o.Email),
		ConditionExpression:       aws.String("#id = :id"),
		ExpressionAttributeNames:  map[string]string{"#id": fieldID},
		ExpressionAttributeValues: map[string]types.AttributeValue{":id": &types.AttributeValueMemberS{Value: o.ID}},
	})
	if conditionFailed(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *OTPRepo) get(ctx context.Context, email string) (*otpItem, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey(fieldEmail, email),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("reset code not found: %w", domain.ErrNotFound)
	}
	var it otpItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return nil, err
	}
	return &it, nil
}
