// streamsink - streaming event collector sink
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamsink

package httpapi

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tomtom215/streamsink/internal/sink"
)

type fakeCollector struct {
	stats   sink.Stats
	stored  [][]byte
	lastKey string
}

func (f *fakeCollector) StoreRawEvents(payloads [][]byte, key string) [][]byte {
	f.stored = append(f.stored, payloads...)
	f.lastKey = key
	return nil
}

func (f *fakeCollector) Stats() sink.Stats { return f.stats }

func TestHealthReturnsStats(t *testing.T) {
	collector := &fakeCollector{stats: sink.Stats{Buffered: 3, Submitted: 100}}
	router := NewRouter(collector, []string{"*"})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"buffered":3`) {
		t.Errorf("expected buffered count in body, got %q", w.Body.String())
	}
}

func TestMetricsEndpointServesPrometheusFormat(t *testing.T) {
	collector := &fakeCollector{}
	router := NewRouter(collector, []string{"*"})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestIngestStoresBodyAndKeyHeader(t *testing.T) {
	collector := &fakeCollector{}
	router := NewRouter(collector, []string{"*"})

	req := httptest.NewRequest(http.MethodPost, "/ingest", bytes.NewReader([]byte("payload")))
	req.Header.Set("X-Kinesis-Key", "device-42")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", w.Code)
	}
	if len(collector.stored) != 1 || string(collector.stored[0]) != "payload" {
		t.Fatalf("expected payload to be stored, got %v", collector.stored)
	}
	if collector.lastKey != "device-42" {
		t.Errorf("expected key %q, got %q", "device-42", collector.lastKey)
	}
}

func TestIngestRejectsOversizeBody(t *testing.T) {
	collector := &fakeCollector{}
	router := NewRouter(collector, []string{"*"})

	body := bytes.Repeat([]byte("a"), ingestMaxBodyBytes+1)
	req := httptest.NewRequest(http.MethodPost, "/ingest", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", w.Code)
	}
	if len(collector.stored) != 0 {
		t.Errorf("oversize body should not reach StoreRawEvents, got %d stored", len(collector.stored))
	}
}
