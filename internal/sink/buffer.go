// streamsink - streaming event collector sink
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamsink

package sink

import (
	"sync"
	"sync/atomic"

	"github.com/tomtom215/streamsink/internal/logging"
)

// Event is an immutable payload/key pair. key doubles as the primary
// stream's partition key and the fallback queue's kinesisKey attribute.
type Event struct {
	Payload []byte
	Key     string
}

// FlushHandler receives a flushed batch in arrival order. It is invoked
// outside the EventBuffer's mutex and must not call back into Store or
// Flush synchronously.
type FlushHandler func(events []Event)

// EventBuffer is the thread-safe accumulator of pending events (spec
// component C3). Events are held newest-first internally and reversed at
// flush time, producing FIFO order in the snapshot handed to onFlush.
type EventBuffer struct {
	byteLimit   int
	recordLimit int
	maxBytes    int
	clock       Clock
	onFlush     FlushHandler

	mu         sync.Mutex
	events     []Event
	byteCount  int
	lastFlush  atomic.Int64
	logger     zeroLogger
}

// zeroLogger narrows the logging surface this file depends on, so tests
// can substitute a no-op implementation without importing zerolog.
type zeroLogger interface {
	OversizePayload(size, max int)
}

type componentLogger struct{}

func (componentLogger) OversizePayload(size, max int) {
	logging.WithComponent("sink.buffer").Error().
		Err(&PayloadTooLarge{Size: size, Max: max}).
		Int("size", size).
		Int("max_bytes", max).
		Msg("dropping oversize payload")
}

// NewEventBuffer constructs an EventBuffer. onFlush is invoked for every
// non-empty flush, whether triggered by Store's size/count thresholds or
// by an explicit Flush call from the periodic timer. Drain, which Shutdown
// uses, does not invoke it.
func NewEventBuffer(byteLimit, recordLimit, maxBytes int, clock Clock, onFlush FlushHandler) *EventBuffer {
	b := &EventBuffer{
		byteLimit:   byteLimit,
		recordLimit: recordLimit,
		maxBytes:    maxBytes,
		clock:       clock,
		onFlush:     onFlush,
		logger:      componentLogger{},
	}
	b.lastFlush.Store(int64(clock.Now()))
	return b
}

// Store appends payload/key to the buffer, rejecting it outright if it is
// maxBytes long or longer, and triggers a synchronous drain (not submission) if
// the size or count threshold is reached.
func (b *EventBuffer) Store(payload []byte, key string) {
	if len(payload) >= b.maxBytes {
		eventsRejectedTotal.Inc()
		b.logger.OversizePayload(len(payload), b.maxBytes)
		return
	}
	eventsStoredTotal.Inc()

	var snapshot []Event
	b.mu.Lock()
	b.events = append([]Event{{Payload: payload, Key: key}}, b.events...)
	b.byteCount += len(payload)
	if len(b.events) >= b.recordLimit || b.byteCount >= b.byteLimit {
		snapshot = b.drainLocked()
	}
	b.mu.Unlock()

	if len(snapshot) > 0 {
		b.onFlush(snapshot)
	}
}

// Flush drains the buffer unconditionally and hands the snapshot to
// onFlush. An empty buffer is a no-op.
func (b *EventBuffer) Flush() {
	snapshot := b.Drain()
	if len(snapshot) > 0 {
		b.onFlush(snapshot)
	}
}

// Drain empties the buffer and returns the snapshot in arrival order
// without invoking onFlush. Shutdown uses this to submit the final batch
// synchronously, rather than through the asynchronous worker pool.
func (b *EventBuffer) Drain() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.drainLocked()
}

// drainLocked copies out the buffered events in arrival order and resets
// the buffer. The caller must hold b.mu.
func (b *EventBuffer) drainLocked() []Event {
	n := len(b.events)
	if n == 0 {
		return nil
	}

	snapshot := make([]Event, n)
	for i, e := range b.events {
		snapshot[n-1-i] = e
	}

	b.events = nil
	b.byteCount = 0
	b.lastFlush.Store(int64(b.clock.Now()))

	flushesTotal.Inc()
	flushBatchSize.Observe(float64(n))

	return snapshot
}

// GetLastFlushAt returns the timestamp of the last flush, safe to read
// concurrently with Store/Flush.
func (b *EventBuffer) GetLastFlushAt() Millis {
	return Millis(b.lastFlush.Load())
}

// Len reports the number of events currently buffered.
func (b *EventBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.events)
}
