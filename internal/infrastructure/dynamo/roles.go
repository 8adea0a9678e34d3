package dynamo

import (
	"context"
	"fmt"

	"github.com/admin-dashboard-api/internal/domain"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// RoleRepo provides typed DynamoDB operations for the roles table.
type RoleRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewRoleRepo(client *dynamodb.Client, tableName string) *RoleRepo {
	return &RoleRepo{client: client, tableName: tableName}
}

func (r *RoleRepo) Get(ctx context.Context, roleID string) (*domain.Role, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey(fieldRoleID, roleID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("role not found: %w", domain.ErrNotFound)
	}
	var role domain.Role
	if err := attributevalue.UnmarshalMap(out.Item, &role); err != nil {
		return nil, err
	}
	return &role, nil
}
