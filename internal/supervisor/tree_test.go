// streamsink - streaming event collector sink
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamsink

package supervisor

import (
	"context"
	"log/slog"
	"testing"
	"time"
)

type stubService struct {
	started chan struct{}
	stopped chan struct{}
}

func newStubService() *stubService {
	return &stubService{
		started: make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

func (s *stubService) Serve(ctx context.Context) error {
	close(s.started)
	<-ctx.Done()
	close(s.stopped)
	return ctx.Err()
}

func (s *stubService) String() string { return "stub" }

func TestDefaultTreeConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultTreeConfig()
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("expected 10s shutdown timeout, got %s", cfg.ShutdownTimeout)
	}
	if cfg.FailureThreshold != 5.0 {
		t.Errorf("expected failure threshold 5.0, got %f", cfg.FailureThreshold)
	}
}

func TestSupervisorTreeRunsBothLayers(t *testing.T) {
	t.Parallel()

	tree, err := NewSupervisorTree(slog.Default(), DefaultTreeConfig())
	if err != nil {
		t.Fatalf("NewSupervisorTree: %v", err)
	}

	timerSvc := newStubService()
	workerSvc := newStubService()
	tree.AddTimerService(timerSvc)
	tree.AddWorkerService(workerSvc)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	select {
	case <-timerSvc.started:
	case <-time.After(time.Second):
		t.Fatal("timer service never started")
	}
	select {
	case <-workerSvc.started:
	case <-time.After(time.Second):
		t.Fatal("worker service never started")
	}

	cancel()

	select {
	case <-errCh:
	case <-time.After(2 * time.Second):
		t.Fatal("supervisor tree did not stop in time")
	}

	select {
	case <-timerSvc.stopped:
	default:
		t.Error("timer service was not stopped")
	}
	select {
	case <-workerSvc.stopped:
	default:
		t.Error("worker service was not stopped")
	}
}
