// streamsink - streaming event collector sink
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamsink

package sink

import "time"

const (
	// maxBytesPrimary bounds a single event when no fallback queue is
	// configured.
	maxBytesPrimary = 1_000_000

	// maxBytesFallback bounds a single event when a fallback queue is
	// configured: 256,000 * 3/4, accounting for base64 expansion on the
	// fallback path (spec.md §3).
	maxBytesFallback = 192_000

	// fallbackBatchLimit is the SQS SendMessageBatch entry cap.
	fallbackBatchLimit = 10

	// sentinelDefault, sentinelIAM, sentinelEnv are the three recognized
	// credential-mode sentinels (spec.md §6). Any other value pair is
	// treated as a literal static key pair.
	sentinelDefault = "default"
	sentinelIAM     = "iam"
	sentinelEnv     = "env"
)

// Config holds the recognized sink options (spec.md §3).
type Config struct {
	// ByteLimit flushes the buffer once buffered bytes reach this value.
	ByteLimit int `koanf:"byteLimit"`

	// RecordLimit flushes the buffer once the buffered event count
	// reaches this value.
	RecordLimit int `koanf:"recordLimit"`

	// TimeLimit flushes the buffer if now-lastFlushAt is at least this
	// long, enforced by the periodic timer.
	TimeLimit time.Duration `koanf:"timeLimit"`

	// MinBackoff and MaxBackoff bound retry waits.
	MinBackoff time.Duration `koanf:"minBackoff"`
	MaxBackoff time.Duration `koanf:"maxBackoff"`

	// StreamName is the primary Kinesis stream.
	StreamName string `koanf:"streamName"`

	// FallbackQueueName is the auxiliary SQS queue. Empty disables the
	// fallback path entirely.
	FallbackQueueName string `koanf:"fallbackQueueName"`

	// ThreadPoolSize is the parallelism of the submission worker pool.
	ThreadPoolSize int `koanf:"threadPoolSize"`

	// Region is the AWS region for both the Kinesis and SQS clients.
	Region string `koanf:"region"`

	// AccessKey and SecretKey select the credential resolution mode
	// (spec.md §6): both "default" uses the platform default chain,
	// both "iam" uses the instance profile, both "env" reads
	// AWS_ACCESS_KEY_ID/AWS_SECRET_ACCESS_KEY, and any other
	// non-matching pair is used as a literal static credential pair.
	// A mismatched sentinel (one side a sentinel, the other not) is a
	// ConfigError.
	AccessKey string `koanf:"accessKey"`
	SecretKey string `koanf:"secretKey"`
}

// DefaultConfig returns production defaults, overridden by config file and
// environment variables during Load (internal/config).
func DefaultConfig() Config {
	return Config{
		ByteLimit:      3_500_000,
		RecordLimit:    500,
		TimeLimit:      1 * time.Minute,
		MinBackoff:     100 * time.Millisecond,
		MaxBackoff:     1 * time.Minute,
		ThreadPoolSize: 10,
		Region:         "us-east-1",
		AccessKey:      sentinelDefault,
		SecretKey:      sentinelDefault,
	}
}

// HasFallback reports whether a fallback queue is configured.
func (c Config) HasFallback() bool {
	return c.FallbackQueueName != ""
}

// MaxBytes returns the effective per-event size limit: the stricter
// fallback limit whenever a fallback is configured, since any event may
// ultimately be spilled there (spec.md §3).
func (c Config) MaxBytes() int {
	if c.HasFallback() {
		return maxBytesFallback
	}
	return maxBytesPrimary
}

// Validate checks the credential-sentinel pairing and required fields.
func (c Config) Validate() error {
	if c.StreamName == "" {
		return NewConfigError("streamName is required", nil)
	}
	if c.ThreadPoolSize <= 0 {
		return NewConfigError("threadPoolSize must be positive", nil)
	}
	if c.MinBackoff <= 0 || c.MaxBackoff <= 0 || c.MinBackoff > c.MaxBackoff {
		return NewConfigError("minBackoff must be positive and <= maxBackoff", nil)
	}

	accessIsSentinel := isSentinel(c.AccessKey)
	secretIsSentinel := isSentinel(c.SecretKey)
	if accessIsSentinel != secretIsSentinel {
		return NewConfigError(
			"accessKey and secretKey must both be a recognized sentinel (default/iam/env) or both be literal values", nil)
	}
	if accessIsSentinel && c.AccessKey != c.SecretKey {
		return NewConfigError("accessKey and secretKey sentinels must match", nil)
	}
	return nil
}

func isSentinel(v string) bool {
	return v == sentinelDefault || v == sentinelIAM || v == sentinelEnv
}
