// streamsink - streaming event collector sink
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamsink

package sink

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/kinesis"
	"github.com/rs/zerolog"

	"github.com/tomtom215/streamsink/internal/logging"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.StreamName = "test-stream"
	cfg.RecordLimit = 1 << 30
	cfg.ByteLimit = 1 << 30
	cfg.TimeLimit = time.Hour
	cfg.ThreadPoolSize = 2
	return cfg
}

func TestCoordinatorShutdownDrainsBufferedEvents(t *testing.T) {
	client := &fakeKinesisClient{}
	coordinator, err := initCoordinator(context.Background(), testConfig(), client, nil)
	if err != nil {
		t.Fatalf("initCoordinator failed: %v", err)
	}

	for i := 0; i < 5; i++ {
		coordinator.StoreRawEvents([][]byte{[]byte("event")}, "k")
	}

	if client.callCount() != 0 {
		t.Fatalf("expected no submit before shutdown, got %d calls", client.callCount())
	}

	if err := coordinator.Shutdown(); err != nil {
		t.Fatalf("Shutdown returned error: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for client.callCount() == 0 {
		select {
		case <-deadline:
			t.Fatal("expected shutdown to flush and submit the 5 buffered events")
		case <-time.After(5 * time.Millisecond):
		}
	}

	calls := client.putRecordsLog
	total := 0
	for _, c := range calls {
		total += len(c.Records)
	}
	if total != 5 {
		t.Fatalf("expected 5 records submitted across calls, got %d", total)
	}
}

func TestCoordinatorShutdownIsIdempotent(t *testing.T) {
	client := &fakeKinesisClient{}
	coordinator, err := initCoordinator(context.Background(), testConfig(), client, nil)
	if err != nil {
		t.Fatalf("initCoordinator failed: %v", err)
	}

	if err := coordinator.Shutdown(); err != nil {
		t.Fatalf("first Shutdown returned error: %v", err)
	}
	if err := coordinator.Shutdown(); err != nil {
		t.Fatalf("second Shutdown returned error: %v", err)
	}
}

func TestCoordinatorStoreRawEventsAlwaysReturnsEmpty(t *testing.T) {
	client := &fakeKinesisClient{}
	coordinator, err := initCoordinator(context.Background(), testConfig(), client, nil)
	if err != nil {
		t.Fatalf("initCoordinator failed: %v", err)
	}
	defer coordinator.Shutdown() //nolint:errcheck

	got := coordinator.StoreRawEvents([][]byte{[]byte("a"), []byte("b")}, "k")
	if len(got) != 0 {
		t.Fatalf("StoreRawEvents returned %d items, want 0", len(got))
	}
}

func TestCoordinatorLogsWarningWithNoPrimaryOrFallback(t *testing.T) {
	client := &fakeKinesisClient{
		describeFn: func(in *kinesis.DescribeStreamInput) (*kinesis.DescribeStreamOutput, error) {
			return nil, errNotFoundStub{}
		},
	}
	var logBuf bytes.Buffer
	prevLogger := logging.Logger()
	logging.SetLogger(zerolog.New(&logBuf))
	defer logging.SetLogger(prevLogger)

	cfg := testConfig()
	coordinator, err := initCoordinator(context.Background(), cfg, client, nil)
	if err != nil {
		t.Fatalf("initCoordinator should not fail Init on a missing primary stream: %v", err)
	}
	defer coordinator.Shutdown() //nolint:errcheck

	if !strings.Contains(logBuf.String(), "effectively drop data") {
		t.Fatalf("expected the no-primary-no-fallback warning in the log, got %q", logBuf.String())
	}
}

type errNotFoundStub struct{}

func (errNotFoundStub) Error() string { return "stream not found" }
