// streamsink - streaming event collector sink
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamsink

package sink

import (
	"context"
	"encoding/base64"
	"sync/atomic"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/google/uuid"

	"github.com/tomtom215/streamsink/internal/logging"
)

// kinesisKeyAttribute is the SQS message attribute carrying the original
// partition key, so a downstream replay path can recover it.
const kinesisKeyAttribute = "kinesisKey"

// FallbackSubmitter redirects events the primary stream rejected to an
// auxiliary SQS queue (spec component C5). It is the terminal retry path:
// a failure here is logged and the events are dropped.
type FallbackSubmitter struct {
	client   SQSAPI
	queueURL string
	scheduler *Scheduler
	sent     atomic.Int64
	dropped  atomic.Int64
}

// Sent returns the count of events successfully accepted by the fallback
// queue, for sink.Stats.
func (f *FallbackSubmitter) Sent() int64 {
	return f.sent.Load()
}

// Dropped returns the count of events dropped after the fallback queue
// also rejected them, for sink.Stats.
func (f *FallbackSubmitter) Dropped() int64 {
	return f.dropped.Load()
}

// NewFallbackSubmitter constructs a FallbackSubmitter bound to queueURL
// (already resolved via GetQueueUrl at Init).
func NewFallbackSubmitter(client SQSAPI, queueURL string, scheduler *Scheduler) *FallbackSubmitter {
	return &FallbackSubmitter{client: client, queueURL: queueURL, scheduler: scheduler}
}

// PutToFallback dispatches an asynchronous send of events to the fallback
// queue, split into groups of at most fallbackBatchLimit, issued in
// sequence within one worker task.
func (f *FallbackSubmitter) PutToFallback(events []Event) {
	if len(events) == 0 {
		return
	}
	f.scheduler.Dispatch(func(ctx context.Context) {
		f.send(ctx, events)
	})
}

func (f *FallbackSubmitter) send(ctx context.Context, events []Event) {
	for start := 0; start < len(events); start += fallbackBatchLimit {
		end := start + fallbackBatchLimit
		if end > len(events) {
			end = len(events)
		}
		f.sendGroup(ctx, events[start:end])
	}
}

func (f *FallbackSubmitter) sendGroup(ctx context.Context, group []Event) {
	entries := make([]sqstypes.SendMessageBatchRequestEntry, len(group))
	for i, e := range group {
		entries[i] = sqstypes.SendMessageBatchRequestEntry{
			Id:          aws.String(uuid.New().String()),
			MessageBody: aws.String(base64.StdEncoding.EncodeToString(e.Payload)),
			MessageAttributes: map[string]sqstypes.MessageAttributeValue{
				kinesisKeyAttribute: {
					DataType:    aws.String("String"),
					StringValue: aws.String(e.Key),
				},
			},
		}
	}

	out, err := f.client.SendMessageBatch(ctx, &sqs.SendMessageBatchInput{
		QueueUrl: aws.String(f.queueURL),
		Entries:  entries,
	})
	if err != nil {
		fallbackSubmitTotal.WithLabelValues("whole_call_failure").Inc()
		eventsDroppedTotal.WithLabelValues("fallback_failure").Add(float64(len(group)))
		f.dropped.Add(int64(len(group)))
		logging.WithComponent("sink.fallback").Error().
			Err(err).
			Int("group_size", len(group)).
			Msg("fallback SendMessageBatch failure, dropping events")
		return
	}

	if len(out.Failed) > 0 {
		fallbackSubmitTotal.WithLabelValues("partial_failure").Inc()
		eventsDroppedTotal.WithLabelValues("fallback_failure").Add(float64(len(out.Failed)))
		f.sent.Add(int64(len(group) - len(out.Failed)))
		f.dropped.Add(int64(len(out.Failed)))
		logging.WithComponent("sink.fallback").Error().
			Int("failed_count", len(out.Failed)).
			Int("group_size", len(group)).
			Msg("fallback SendMessageBatch partial failure, dropping failed entries")
		return
	}

	f.sent.Add(int64(len(group)))
	fallbackSubmitTotal.WithLabelValues("success").Inc()
	logging.WithComponent("sink.fallback").Info().
		Int("group_size", len(group)).
		Msg("fallback SendMessageBatch succeeded")
}
