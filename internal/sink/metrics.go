// streamsink - streaming event collector sink
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamsink

package sink

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// eventsStoredTotal counts events accepted into the buffer.
	eventsStoredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sink_events_stored_total",
			Help: "Total number of events accepted into the buffer.",
		},
	)

	// eventsRejectedTotal counts events dropped at Store for exceeding MaxBytes.
	eventsRejectedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sink_events_rejected_total",
			Help: "Total number of oversize events dropped at Store.",
		},
	)

	// flushesTotal counts non-empty buffer flushes, regardless of trigger.
	flushesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sink_flushes_total",
			Help: "Total number of non-empty buffer flushes.",
		},
	)

	// flushBatchSize observes the event count per flushed batch.
	flushBatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sink_flush_batch_size",
			Help:    "Number of events per flushed batch.",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
	)

	// primarySubmitTotal counts PutRecords calls by outcome.
	primarySubmitTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sink_primary_submit_total",
			Help: "Total number of primary submit attempts by outcome.",
		},
		[]string{"outcome"},
	)

	// primaryRecordFailuresTotal counts individual record failures from PutRecords.
	primaryRecordFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sink_primary_record_failures_total",
			Help: "Total number of individual records reported failed by PutRecords.",
		},
	)

	// fallbackSubmitTotal counts SendMessageBatch calls by outcome.
	fallbackSubmitTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sink_fallback_submit_total",
			Help: "Total number of fallback submit attempts by outcome.",
		},
		[]string{"outcome"},
	)

	// eventsDroppedTotal counts events permanently lost (fallback failure).
	eventsDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sink_events_dropped_total",
			Help: "Total number of events permanently dropped, by reason.",
		},
		[]string{"reason"},
	)

	// retriesScheduledTotal counts backoff-scheduled retries.
	retriesScheduledTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sink_retries_scheduled_total",
			Help: "Total number of batches rescheduled through the backoff generator.",
		},
	)

	// shutdownDurationSeconds observes how long Shutdown took to drain.
	shutdownDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sink_shutdown_duration_seconds",
			Help:    "Duration of the Shutdown drain sequence.",
			Buckets: prometheus.DefBuckets,
		},
	)
)
