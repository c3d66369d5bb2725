package s3x

import (
	"context"
	"os"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// EndpointEnvVar is the environment variable that holds the URL of the
// S3-compatible server used by tests, such as MinIO.
const EndpointEnvVar = "PROPERTYKIT_TEST_S3_ENDPOINT"

// NewTestClient returns a new S3 client for use in a test.
//
// The test is skipped unless [EndpointEnvVar] is set.
func NewTestClient(t testing.TB) *s3.Client {
	t.Helper()

	endpoint := os.Getenv(EndpointEnvVar)
	if endpoint == "" {
		t.Skipf("set %s to run tests that require S3", EndpointEnvVar)
	}

	accessKey := os.Getenv("PROPERTYKIT_TEST_S3_ACCESS_KEY")
	if accessKey == "" {
		accessKey = "minio"
	}

	secretKey := os.Getenv("PROPERTYKIT_TEST_S3_SECRET_KEY")
	if secretKey == "" {
		secretKey = "password"
	}

	cfg, err := config.LoadDefaultConfig(
		context.Background(),
		config.WithRegion("us-east-1"),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
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

	return s3.NewFromConfig(
		cfg,
		func(opts *s3.Options) {
			opts.BaseEndpoint = aws.String(endpoint)
			opts.UsePathStyle = true
		},
	)
}
