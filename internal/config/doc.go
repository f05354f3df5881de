// streamsink - streaming event collector sink
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamsink

// Package config assembles the process-wide AppConfig (HTTP server
// options, logging, and the sink core's Config) from three layered
// sources, lowest to highest precedence: built-in defaults, an optional
// YAML file (config.yaml, or CONFIG_PATH), and STREAMSINK_-prefixed
// environment variables.
package config
