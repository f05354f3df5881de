// streamsink - streaming event collector sink
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamsink

/*
Package sink implements the buffered, batched, retrying, backpressure-aware
delivery core of a streaming event collector.

A Sink accepts opaque event payloads over StoreRawEvents, accumulates them
in an in-memory EventBuffer until a size, count, or time trigger fires a
Flush, and hands the flushed batch to a PrimarySubmitter that puts it to an
Amazon Kinesis stream. Records Kinesis rejects are routed to a
FallbackSubmitter (Amazon SQS) when one is configured, or rescheduled with
full-jitter exponential backoff when it isn't.

# Components

	Clock & Scheduler   monotonic time source + delayed one-shot tasks on a
	                    fixed worker pool (clock.go)
	Backoff Generator   pure full-jitter backoff function (backoff.go)
	EventBuffer         mutex-protected accumulator with three flush
	                    triggers (buffer.go)
	PrimarySubmitter    batches events into Kinesis PutRecords calls and
	                    interprets whole-call vs per-record failures
	                    (primary.go)
	FallbackSubmitter   redirects failed records to SQS in groups of 10
	                    (fallback.go)
	SinkCoordinator     public facade: wires the above, owns the periodic
	                    flush timer, implements shutdown drain
	                    (coordinator.go)

# Delivery guarantee

The sink is at-least-once: a whole-call failure followed by a successful
retry can duplicate records downstream. It never blocks or returns an
error to StoreRawEvents's caller; every failure is either retried,
spilled to the fallback queue, or logged and dropped.
*/
package sink
