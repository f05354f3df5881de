// streamsink - streaming event collector sink
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamsink

package sink

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kinesis"
	kinesistypes "github.com/aws/aws-sdk-go-v2/service/kinesis/types"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/streamsink/internal/logging"
)

// primaryBreakerConfig mirrors the teacher's circuit breaker defaults:
// trip after 5 consecutive failures, half-open probe after 30s.
var primaryBreakerConfig = gobreaker.Settings{
	Name:        "primary-submitter",
	MaxRequests: 1,
	Interval:    0,
	Timeout:     30 * time.Second,
	ReadyToTrip: func(counts gobreaker.Counts) bool {
		return counts.ConsecutiveFailures >= 5
	},
}

// PrimarySubmitter batches events into Kinesis PutRecords calls and
// interprets whole-call vs per-record failures (spec component C4).
type PrimarySubmitter struct {
	client     KinesisAPI
	streamName string
	scheduler  *Scheduler
	backoff    *BackoffGenerator
	fallback   *FallbackSubmitter // nil disables the fallback path
	breaker    *gobreaker.CircuitBreaker[*kinesis.PutRecordsOutput]
	submitted  atomic.Int64
}

// Submitted returns the count of events successfully accepted by
// PutRecords, for sink.Stats.
func (p *PrimarySubmitter) Submitted() int64 {
	return p.submitted.Load()
}

// NewPrimarySubmitter constructs a PrimarySubmitter. fallback may be nil,
// in which case handleFailures reschedules through the backoff generator
// instead of spilling to the fallback queue.
func NewPrimarySubmitter(client KinesisAPI, streamName string, scheduler *Scheduler, backoff *BackoffGenerator, fallback *FallbackSubmitter) *PrimarySubmitter {
	return &PrimarySubmitter{
		client:     client,
		streamName: streamName,
		scheduler:  scheduler,
		backoff:    backoff,
		fallback:   fallback,
		breaker:    gobreaker.NewCircuitBreaker[*kinesis.PutRecordsOutput](primaryBreakerConfig),
	}
}

// SendBatch dispatches an asynchronous PutRecords call for events on the
// scheduler's worker pool. It is a no-op on an empty batch. lastBackoff
// seeds the retry delay used if this batch needs to be rescheduled.
func (p *PrimarySubmitter) SendBatch(events []Event, lastBackoff time.Duration) {
	if len(events) == 0 {
		return
	}
	p.scheduler.Dispatch(func(ctx context.Context) {
		p.send(ctx, events, lastBackoff)
	})
}

// SendBatchSync submits events on the caller's own goroutine instead of
// the scheduler pool. Shutdown uses this for the final drain so the last
// batch is not racing the scheduler's own teardown.
func (p *PrimarySubmitter) SendBatchSync(ctx context.Context, events []Event, lastBackoff time.Duration) {
	if len(events) == 0 {
		return
	}
	p.send(ctx, events, lastBackoff)
}

func (p *PrimarySubmitter) send(ctx context.Context, events []Event, lastBackoff time.Duration) {
	entries := make([]kinesistypes.PutRecordsRequestEntry, len(events))
	for i, e := range events {
		entries[i] = kinesistypes.PutRecordsRequestEntry{
			Data:         e.Payload,
			PartitionKey: aws.String(e.Key),
		}
	}

	out, err := p.breaker.Execute(func() (*kinesis.PutRecordsOutput, error) {
		return p.client.PutRecords(ctx, &kinesis.PutRecordsInput{
			StreamName: aws.String(p.streamName),
			Records:    entries,
		})
	})
	if err != nil {
		primarySubmitTotal.WithLabelValues("whole_call_failure").Inc()
		logging.WithComponent("sink.primary").Error().
			Err(err).
			Int("batch_size", len(events)).
			Msg("primary PutRecords whole-call failure")
		p.handleFailures(events, lastBackoff)
		return
	}

	var failures []Event
	for i, r := range out.Records {
		if r.ErrorMessage != nil {
			failures = append(failures, events[i])
			primaryRecordFailuresTotal.Inc()
			logging.WithComponent("sink.primary").Error().
				Str("error_code", aws.ToString(r.ErrorCode)).
				Str("error_message", aws.ToString(r.ErrorMessage)).
				Str("key", events[i].Key).
				Msg("primary PutRecords record failure")
		}
	}

	p.submitted.Add(int64(len(events) - len(failures)))

	if len(failures) == 0 {
		primarySubmitTotal.WithLabelValues("success").Inc()
		return
	}
	primarySubmitTotal.WithLabelValues("partial_failure").Inc()
	p.handleFailures(failures, lastBackoff)
}

// handleFailures routes a failed subset to the fallback queue, or
// reschedules it with backoff. The asymmetry is deliberate (spec.md
// §4.4): the retry fires after the pre-increment lastBackoff, but carries
// forward the already-incremented value so the very first retry happens
// at minBackoff.
func (p *PrimarySubmitter) handleFailures(failures []Event, lastBackoff time.Duration) {
	if p.fallback != nil {
		p.fallback.PutToFallback(failures)
		return
	}

	nextBackoff := p.backoff.Next(lastBackoff)
	retriesScheduledTotal.Inc()
	p.scheduler.ScheduleAfter(lastBackoff, func(ctx context.Context) {
		p.send(ctx, failures, nextBackoff)
	})
}
