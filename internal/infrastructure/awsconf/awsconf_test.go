package awsconf

import (
	"context"
	"testing"

	"github.com/admin-dashboard-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_StaticCredentials(t *testing.T) {
	cfg := &config.Config{AWSAccessKeyID: "test", AWSSecretKey: "secret"}

	awsCfg, err := Load(context.Background(), cfg, "eu-west-1")
	require.NoError(t, err)
	assert.Equal(t, "eu-west-1", awsCfg.Region)

	creds, err := awsCfg.Credentials.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "test", creds.AccessKeyID)
}

func TestEndpoint(t *testing.T) {
	assert.Nil(t, Endpoint(&config.Config{}))
	ep := Endpoint(&config.Config{AWSEndpointURL: "http://localhost:4566"})
	require.NotNil(t, ep)
	assert.Equal(t, "http://localhost:4566", *ep)
}
