// Package awsconfig builds AWS SDK v2 configuration that targets a
// localstack.Stack.
package awsconfig

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/schmitthub/stackup/pkg/localstack"
)

const (
	// DefaultRegion is the region the emulator answers for.
	DefaultRegion = "us-east-1"
	// AccessKeyID and SecretAccessKey are the static credentials the
	// emulator accepts.
	AccessKeyID     = "test"
	SecretAccessKey = "test"
)

// EndpointSource resolves a service's base URL. *localstack.Stack
// satisfies it.
type EndpointSource interface {
	Endpoint(ctx context.Context, service string) (string, error)
}

var _ EndpointSource = (*localstack.Stack)(nil)

// New returns an aws.Config for service with static test credentials and
// BaseEndpoint pointing at the emulator. The emulator is started if needed.
// optFns are applied after the defaults and may override region or
// credentials.
func New(ctx context.Context, src EndpointSource, service string, optFns ...func(*config.LoadOptions) error) (aws.Config, error) {
	url, err := src.Endpoint(ctx, service)
	if err != nil {
		return aws.Config{}, fmt.Errorf("resolving %s endpoint: %w", service, err)
	}

	opts := []func(*config.LoadOptions) error{
		config.WithRegion(DefaultRegion),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(AccessKeyID, SecretAccessKey, ""),
		),
	}
	opts = append(opts, optFns...)

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to create AWS config: %w", err)
	}
	cfg.BaseEndpoint = aws.String(url)
	return cfg, nil
}

// S3Client returns an S3 client for the emulator. Path-style addressing is
// forced since bucket subdomains of localhost do not resolve.
func S3Client(ctx context.Context, src EndpointSource, optFns ...func(*s3.Options)) (*s3.Client, error) {
	cfg, err := New(ctx, src, localstack.ServiceS3)
	if err != nil {
		return nil, err
	}
	opts := append([]func(*s3.Options){func(o *s3.Options) {
		o.UsePathStyle = true
	}}, optFns...)
	return s3.NewFromConfig(cfg, opts...), nil
}
