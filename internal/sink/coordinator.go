// streamsink - streaming event collector sink
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamsink

package sink

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kinesis"
	kinesistypes "github.com/aws/aws-sdk-go-v2/service/kinesis/types"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"github.com/tomtom215/streamsink/internal/logging"
	"github.com/tomtom215/streamsink/internal/supervisor"
)

// shutdownBudget bounds how long Shutdown waits for the worker pool to
// drain in-flight tasks (spec.md §4.6).
const shutdownBudget = 10 * time.Second

// SinkCoordinator is the public facade wiring the buffer, submitters, and
// scheduler together (spec component C6).
type SinkCoordinator struct {
	cfg       Config
	buffer    *EventBuffer
	primary   *PrimarySubmitter
	fallback  *FallbackSubmitter
	scheduler *Scheduler
	clock     Clock
	tree      *supervisor.SupervisorTree

	cancel       context.CancelFunc
	treeDone     <-chan error
	shuttingDown atomic.Bool
}

// flushTimerService is a thin suture.Service that starts the coordinator's
// self-rescheduling flush timer and idles until the tree shuts it down.
type flushTimerService struct {
	coordinator *SinkCoordinator
}

func (s *flushTimerService) Serve(ctx context.Context) error {
	s.coordinator.startFlushTimer()
	<-ctx.Done()
	return ctx.Err()
}

func (s *flushTimerService) String() string { return "sink.flushTimer" }

// Stats is a read-only snapshot of the coordinator's state, for the HTTP
// front end's /health endpoint to report. It exists because an operator
// seeing the "collector will effectively drop data" startup warning
// (§4.7) needs a way to observe the consequence besides grepping logs.
type Stats struct {
	Buffered     int   `json:"buffered"`
	LastFlushAt  Millis `json:"last_flush_at"`
	Submitted    int64 `json:"submitted"`
	FallbackSent int64 `json:"fallback_sent"`
	Dropped      int64 `json:"dropped"`
}

// Stats returns a point-in-time snapshot. Safe to call concurrently with
// Store/Shutdown.
func (c *SinkCoordinator) Stats() Stats {
	stats := Stats{
		Buffered:    c.buffer.Len(),
		LastFlushAt: c.buffer.GetLastFlushAt(),
		Submitted:   c.primary.Submitted(),
	}
	if c.fallback != nil {
		stats.FallbackSent = c.fallback.Sent()
		stats.Dropped = c.fallback.Dropped()
	}
	return stats
}

// Init validates cfg, resolves credentials, runs the startup checks
// (§4.7), and — only on success — starts the periodic flush timer and the
// submission worker pool. A non-nil error is always a *ConfigError and is
// fatal to the caller.
func Init(ctx context.Context, cfg Config) (*SinkCoordinator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	awsCfg, err := LoadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, NewConfigError("failed to resolve AWS credentials", err)
	}

	var sqsClient SQSAPI
	if cfg.HasFallback() {
		sqsClient = NewSQSClient(awsCfg)
	}
	return initCoordinator(ctx, cfg, NewKinesisClient(awsCfg), sqsClient)
}

// initCoordinator builds the coordinator from already-resolved clients, so
// tests can substitute fakes without exercising credential resolution.
func initCoordinator(ctx context.Context, cfg Config, kinesisClient KinesisAPI, sqsClient SQSAPI) (*SinkCoordinator, error) {
	primaryAvailable := checkPrimaryStream(ctx, kinesisClient, cfg.StreamName)

	var queueURL string
	if sqsClient != nil {
		queueURL = checkFallbackQueue(ctx, sqsClient, cfg.FallbackQueueName)
	} else if !primaryAvailable {
		logging.WithComponent("sink.coordinator").Warn().
			Str("stream_name", cfg.StreamName).
			Msg("neither the primary stream nor a fallback queue is available; the collector will effectively drop data")
	}

	clock := SystemClock{}
	scheduler := NewScheduler(cfg.ThreadPoolSize)
	backoff := NewBackoffGenerator(cfg.MinBackoff, cfg.MaxBackoff)

	var fallback *FallbackSubmitter
	if sqsClient != nil {
		fallback = NewFallbackSubmitter(sqsClient, queueURL, scheduler)
	}
	primary := NewPrimarySubmitter(kinesisClient, cfg.StreamName, scheduler, backoff, fallback)

	coordinator := &SinkCoordinator{
		cfg:       cfg,
		primary:   primary,
		fallback:  fallback,
		scheduler: scheduler,
		clock:     clock,
	}
	coordinator.buffer = NewEventBuffer(cfg.ByteLimit, cfg.RecordLimit, cfg.MaxBytes(), clock, coordinator.onFlush)

	treeLogger := slog.New(logging.NewSlogHandler())
	tree, err := supervisor.NewSupervisorTree(treeLogger, supervisor.DefaultTreeConfig())
	if err != nil {
		return nil, NewConfigError("failed to build supervisor tree", err)
	}
	tree.AddWorkerService(scheduler)
	tree.AddTimerService(&flushTimerService{coordinator: coordinator})
	coordinator.tree = tree

	rootCtx, cancel := context.WithCancel(ctx)
	coordinator.cancel = cancel
	coordinator.treeDone = tree.ServeBackground(rootCtx)

	return coordinator, nil
}

func (c *SinkCoordinator) onFlush(events []Event) {
	c.primary.SendBatch(events, c.cfg.MinBackoff)
}

// startFlushTimer schedules the first recursive tick. Each firing flushes
// if timeLimit has elapsed since the last flush, then re-arms itself with
// a self-correcting delay (spec.md §4.3).
func (c *SinkCoordinator) startFlushTimer() {
	c.scheduleTick(c.cfg.TimeLimit)
}

func (c *SinkCoordinator) scheduleTick(delay time.Duration) {
	c.scheduler.ScheduleAfter(delay, c.tick)
}

func (c *SinkCoordinator) tick(_ context.Context) {
	timeLimit := Millis(c.cfg.TimeLimit.Milliseconds())
	elapsed := c.clock.Now() - c.buffer.GetLastFlushAt()

	if elapsed >= timeLimit {
		c.buffer.Flush()
		c.scheduleTick(c.cfg.TimeLimit)
		return
	}
	c.scheduleTick(time.Duration(timeLimit-elapsed) * time.Millisecond)
}

// StoreRawEvents forwards each payload to the buffer. It always returns
// an empty slice; the return type exists for symmetry with sink
// implementations that reject synchronously.
func (c *SinkCoordinator) StoreRawEvents(payloads [][]byte, key string) [][]byte {
	for _, payload := range payloads {
		c.buffer.Store(payload, key)
	}
	return nil
}

// Shutdown drains the buffer synchronously, then stops the scheduler,
// waiting up to shutdownBudget for in-flight tasks. It is safe to call
// more than once; only the first call has effect.
func (c *SinkCoordinator) Shutdown() error {
	if !c.shuttingDown.CompareAndSwap(false, true) {
		return nil
	}
	start := time.Now()
	if events := c.buffer.Drain(); len(events) > 0 {
		c.primary.SendBatchSync(context.Background(), events, c.cfg.MinBackoff)
	}

	c.cancel()
	select {
	case <-c.treeDone:
	case <-time.After(shutdownBudget):
		logging.WithComponent("sink.coordinator").Warn().
			Msg("shutdown budget exceeded; in-flight submissions were not awaited")
	}

	shutdownDurationSeconds.Observe(time.Since(start).Seconds())
	return nil
}

// checkPrimaryStream logs, but does not fail Init on, a missing or
// non-ready primary stream (spec.md §4.7), reporting whether it is usable.
func checkPrimaryStream(ctx context.Context, client KinesisAPI, streamName string) bool {
	out, err := client.DescribeStream(ctx, &kinesis.DescribeStreamInput{StreamName: aws.String(streamName)})
	if err != nil {
		var notFound *kinesistypes.ResourceNotFoundException
		logEvent := logging.WithComponent("sink.coordinator").Error().Err(NewRemoteUnavailable("stream", streamName, err))
		if errors.As(err, &notFound) {
			logEvent.Msg("primary stream not found")
		} else {
			logEvent.Msg("failed to describe primary stream")
		}
		return false
	}

	status := out.StreamDescription.StreamStatus
	if status != kinesistypes.StreamStatusActive && status != kinesistypes.StreamStatusUpdating {
		logging.WithComponent("sink.coordinator").Error().
			Str("status", string(status)).
			Str("stream_name", streamName).
			Msg("primary stream exists but is not active or updating")
		return false
	}
	return true
}

// checkFallbackQueue resolves and logs availability of the fallback
// queue, returning its URL (empty on failure).
func checkFallbackQueue(ctx context.Context, client SQSAPI, queueName string) string {
	out, err := client.GetQueueUrl(ctx, &sqs.GetQueueUrlInput{QueueName: aws.String(queueName)})
	if err != nil {
		var notFound *sqstypes.QueueDoesNotExist
		logEvent := logging.WithComponent("sink.coordinator").Error().Err(NewRemoteUnavailable("queue", queueName, err))
		if errors.As(err, &notFound) {
			logEvent.Msg("fallback queue not found")
		} else {
			logEvent.Msg("failed to resolve fallback queue url")
		}
		return ""
	}
	return aws.ToString(out.QueueUrl)
}
