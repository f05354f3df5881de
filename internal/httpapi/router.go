// streamsink - streaming event collector sink
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamsink

// Package httpapi is the thin HTTP front end that drives the sink core.
// It is deliberately minimal: spec.md §1 excludes the tracker HTTP
// API, cookie model, and wire-format parsing from this repository's
// scope, so /ingest exists only to give StoreRawEvents a caller.
package httpapi

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/streamsink/internal/logging"
	"github.com/tomtom215/streamsink/internal/sink"
)

// Collector is the subset of *sink.SinkCoordinator the router depends
// on, narrowed so handlers can be tested against a fake.
type Collector interface {
	StoreRawEvents(payloads [][]byte, key string) [][]byte
	Stats() sink.Stats
}

// NewRouter builds the Chi router for cmd/collector: /health, /metrics,
// and /ingest. allowedOrigins configures permissive local-dev CORS,
// matching the teacher's cors.Handler wiring.
func NewRouter(collector Collector, allowedOrigins []string) chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Kinesis-Key"},
	}))

	r.Get("/health", healthHandler(collector))
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/ingest", ingestHandler(collector))

	return r
}

func healthHandler(collector Collector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats := collector.Stats()
		logging.WithComponent("httpapi").Debug().
			Int("buffered", stats.Buffered).
			Int64("submitted", stats.Submitted).
			Int64("fallback_sent", stats.FallbackSent).
			Int64("dropped", stats.Dropped).
			Msg("health check")

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(stats)
	}
}

// ingestMaxBodyBytes bounds the request body read before it ever reaches
// the sink's own oversize check, so a malicious Content-Length can't
// force an unbounded read.
const ingestMaxBodyBytes = 10 << 20 // 10 MiB, comfortably above sink.maxBytesPrimary

func ingestHandler(collector Collector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("X-Kinesis-Key")
		body, err := io.ReadAll(io.LimitReader(r.Body, ingestMaxBodyBytes+1))
		if err != nil {
			http.Error(w, "failed to read request body", http.StatusBadRequest)
			return
		}
		if len(body) > ingestMaxBodyBytes {
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}

		collector.StoreRawEvents([][]byte{body}, key)
		w.WriteHeader(http.StatusAccepted)
	}
}
