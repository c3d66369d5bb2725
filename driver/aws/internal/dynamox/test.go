package dynamox

import (
	"context"
	"os"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// EndpointEnvVar is the environment variable that holds the URL of the
// DynamoDB-compatible server used by tests, such as amazon/dynamodb-local.
const EndpointEnvVar = "PROPERTYKIT_TEST_DYNAMODB_ENDPOINT"

// NewTestClient returns a new DynamoDB client for use in a test.
//
// The test is skipped unless [EndpointEnvVar] is set.
func NewTestClient(t testing.TB) *dynamodb.Client {
	t.Helper()

	endpoint := os.Getenv(EndpointEnvVar)
	if endpoint == "" {
		t.Skipf("set %s to run tests that require DynamoDB", EndpointEnvVar)
	}

	cfg, err := config.LoadDefaultConfig(
		context.Background(),
		config.WithRegion("us-east-1"),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider("id", "secret", ""),
		),
		config.WithRetryer(
			func() aws.Retryer {
				return aws.NopRetryer{}
			},
		),
	)
	if err != nil {
		t.Fatal(err)
	}

	return dynamodb.NewFromConfig(
		cfg,
		func(opts *dynamodb.Options) {
			opts.BaseEndpoint = aws.String(endpoint)
		},
	)
}
