// streamsink - streaming event collector sink
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamsink

package sink

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/credentials/ec2rolecreds"
	"github.com/aws/aws-sdk-go-v2/service/kinesis"
	kinesistypes "github.com/aws/aws-sdk-go-v2/service/kinesis/types"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// KinesisAPI narrows the Kinesis client to the two operations the primary
// submitter and startup checks use, so tests can substitute a fake.
type KinesisAPI interface {
	PutRecords(ctx context.Context, params *kinesis.PutRecordsInput, optFns ...func(*kinesis.Options)) (*kinesis.PutRecordsOutput, error)
	DescribeStream(ctx context.Context, params *kinesis.DescribeStreamInput, optFns ...func(*kinesis.Options)) (*kinesis.DescribeStreamOutput, error)
}

// SQSAPI narrows the SQS client to the two operations the fallback
// submitter and startup checks use.
type SQSAPI interface {
	GetQueueUrl(ctx context.Context, params *sqs.GetQueueUrlInput, optFns ...func(*sqs.Options)) (*sqs.GetQueueUrlOutput, error)
	SendMessageBatch(ctx context.Context, params *sqs.SendMessageBatchInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageBatchOutput, error)
}

// LoadAWSConfig resolves an aws.Config from the four credential modes
// described in spec.md §6. Callers must run Config.Validate first; this
// function assumes the accessKey/secretKey pairing is already well-formed.
func LoadAWSConfig(ctx context.Context, c Config) (aws.Config, error) {
	switch c.AccessKey {
	case sentinelDefault:
		return config.LoadDefaultConfig(ctx, config.WithRegion(c.Region))

	case sentinelIAM:
		// Instance-profile credentials only, resolved through the EC2
		// instance metadata service rather than the full default chain.
		return config.LoadDefaultConfig(ctx,
			config.WithRegion(c.Region),
			config.WithCredentialsProvider(aws.NewCredentialsCache(ec2rolecreds.New())),
		)

	case sentinelEnv:
		accessKey := os.Getenv("AWS_ACCESS_KEY_ID")
		secretKey := os.Getenv("AWS_SECRET_ACCESS_KEY")
		return config.LoadDefaultConfig(ctx,
			config.WithRegion(c.Region),
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")),
		)

	default:
		return config.LoadDefaultConfig(ctx,
			config.WithRegion(c.Region),
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(c.AccessKey, c.SecretKey, "")),
		)
	}
}

// kinesisMaxAttempts and kinesisMaxBackoff implement the client-side
// retry contract of spec.md §4.4: up to 10 attempts, full-jitter backoff
// bounded at 5h, with ProvisionedThroughputExceeded excluded so it
// surfaces immediately to the outer retry/fallback decision.
const (
	kinesisMaxAttempts = 10
	kinesisMaxBackoff  = 5 * time.Hour
)

// kinesisRetryer wraps the SDK's standard retryer to exclude
// ProvisionedThroughputExceededException from client-side retry.
type kinesisRetryer struct {
	aws.RetryerV2
}

func newKinesisRetryer() aws.RetryerV2 {
	standard := retry.NewStandard(func(o *retry.StandardOptions) {
		o.MaxAttempts = kinesisMaxAttempts
		o.Backoff = retry.NewExponentialJitterBackoff(kinesisMaxBackoff)
	})
	return &kinesisRetryer{RetryerV2: standard}
}

// IsErrorRetryable reports false for throughput-exceeded errors so they
// escalate to the sink's own backoff/fallback handling instead of being
// absorbed by the SDK's client-side retry loop.
func (r *kinesisRetryer) IsErrorRetryable(err error) bool {
	var throughputErr *kinesistypes.ProvisionedThroughputExceededException
	if errors.As(err, &throughputErr) {
		return false
	}
	return r.RetryerV2.IsErrorRetryable(err)
}

// NewKinesisClient builds a Kinesis client from the resolved aws.Config,
// installing the retry policy described above.
func NewKinesisClient(awsCfg aws.Config) *kinesis.Client {
	return kinesis.NewFromConfig(awsCfg, func(o *kinesis.Options) {
		o.Retryer = newKinesisRetryer()
	})
}

// NewSQSClient builds an SQS client from the resolved aws.Config.
func NewSQSClient(awsCfg aws.Config) *sqs.Client {
	return sqs.NewFromConfig(awsCfg)
}
