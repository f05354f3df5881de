// streamsink - streaming event collector sink
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamsink

// Command collector is the process entry point wiring the sink core to
// an HTTP front end.
//
// Initialization order: configuration is loaded first so the logger can
// be configured from it, then the sink core is started (resolving AWS
// credentials and running its startup checks per spec.md §4.7), then the
// HTTP server is brought up last so it never serves traffic against a
// sink that failed to initialize.
//
// Shutdown is driven by SIGINT/SIGTERM via signal.NotifyContext: the HTTP
// server stops accepting new requests first, then the sink coordinator
// drains its buffer and waits for in-flight submissions, generalizing the
// "process-wide shutdown hook" design note (spec.md §9) to Go's idiomatic
// signal handling.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/streamsink/internal/config"
	"github.com/tomtom215/streamsink/internal/httpapi"
	"github.com/tomtom215/streamsink/internal/logging"
	"github.com/tomtom215/streamsink/internal/sink"
)

// shutdownTimeout bounds how long main waits for the HTTP server to finish
// shutting down. The sink coordinator's Shutdown is not bounded by it; it
// applies its own wait budget.
const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: cfg.Logging.Timestamp,
	})

	logging.Info().Str("stream_name", cfg.Sink.StreamName).Msg("starting streamsink collector")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	coordinator, err := sink.Init(ctx, cfg.Sink)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to initialize sink")
	}

	router := httpapi.NewRouter(coordinator, []string{"*"})
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serveErrCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		serveErrCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logging.Info().Msg("shutdown signal received")
	case err := <-serveErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error().Err(err).Msg("HTTP server exited unexpectedly")
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Warn().Err(err).Msg("HTTP server shutdown did not complete cleanly")
	}

	if err := coordinator.Shutdown(); err != nil {
		logging.Error().Err(err).Msg("sink shutdown error")
	}

	logging.Info().Msg("streamsink collector stopped")
}
