package dynamo

import (
	"context"

	"github.com/admin-dashboard-api/internal/config"
	"github.com/admin-dashboard-api/internal/infrastructure/awsconf"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// NewClient creates a DynamoDB client. When cfg.AWSEndpointURL is set (LocalStack),
// it overrides the endpoint so all traffic goes to the local instance.
func NewClient(ctx context.Context, cfg *config.Config) (*dynamodb.Client, error) {
	awsCfg, err := awsconf.Load(ctx, cfg, cfg.AWSRegion)
	if err != nil {
		return nil, err
	}
	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		o.BaseEndpoint = awsconf.Endpoint(cfg)
	}), nil
}

// Health checks that a table is reachable.
type Health struct {
	client    *dynamodb.Client
	tableName string
}

func NewHealth(client *dynamodb.Client, tableName string) *Health {
	return &Health{client: client, tableName: tableName}
}

func (h *Health) Ping(ctx context.Context) error {
	_, err := h.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: &h.tableName})
	return err
}
