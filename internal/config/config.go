// streamsink - streaming event collector sink
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamsink

// Package config loads the process-wide application configuration with
// Koanf v2, layering built-in defaults, an optional YAML file, and
// environment variables (highest priority).
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/streamsink/internal/sink"
)

// DefaultConfigPaths lists the paths searched for a config file, in
// priority order. The first one found is used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/streamsink/config.yaml",
	"/etc/streamsink/config.yml",
}

// ConfigPathEnvVar overrides the search paths with an explicit file.
const ConfigPathEnvVar = "CONFIG_PATH"

// ServerConfig holds the HTTP front-end's own options. The front end is
// an external collaborator of the sink core; streamsink only needs enough
// of it to bind a listener and apply timeouts.
type ServerConfig struct {
	Host         string        `koanf:"host"`
	Port         int           `koanf:"port"`
	ReadTimeout  time.Duration `koanf:"readTimeout"`
	WriteTimeout time.Duration `koanf:"writeTimeout"`
}

// LoggingConfig mirrors the subset of logging.Config that is safe to load
// from a document; Output is always os.Stderr in this process.
type LoggingConfig struct {
	Level     string `koanf:"level"`
	Format    string `koanf:"format"`
	Caller    bool   `koanf:"caller"`
	Timestamp bool   `koanf:"timestamp"`
}

// AppConfig is the root configuration document.
type AppConfig struct {
	Server  ServerConfig `koanf:"server"`
	Logging LoggingConfig `koanf:"logging"`
	Sink    sink.Config  `koanf:"sink"`
}

// defaultConfig returns built-in defaults, applied before the config file
// and environment variables.
func defaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:     "info",
			Format:    "json",
			Caller:    false,
			Timestamp: true,
		},
		Sink: sink.DefaultConfig(),
	}
}

// Load reads configuration with the layered precedence ENV > file >
// defaults, then validates it.
func Load() (*AppConfig, error) {
	k := koanf.New(".")

	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	envProvider := env.Provider("STREAMSINK_", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &AppConfig{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Sink.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// findConfigFile searches CONFIG_PATH, then DefaultConfigPaths, for an
// existing file.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envTransformFunc maps STREAMSINK_-prefixed environment variables to
// koanf paths, e.g. STREAMSINK_SINK_STREAMNAME -> sink.streamName and
// STREAMSINK_SERVER_PORT -> server.port. Section names map case-sensitively
// to the struct tags above, since koanf preserves key casing on Unmarshal.
func envTransformFunc(key string) string {
	key = strings.TrimPrefix(key, "STREAMSINK_")
	parts := strings.SplitN(key, "_", 2)
	if len(parts) != 2 {
		return strings.ToLower(key)
	}

	section := strings.ToLower(parts[0])
	field := strings.ToLower(strings.ReplaceAll(parts[1], "_", ""))

	canonical, ok := fieldNames[section][field]
	if !ok {
		return section + "." + field
	}
	return section + "." + canonical
}

// fieldNames resolves a lowercased, underscore-stripped env var fragment
// back to its exact koanf struct tag, since several tags (streamName,
// fallbackQueueName, byteLimit, ...) are camelCase.
var fieldNames = map[string]map[string]string{
	"sink": {
		"bytelimit":         "byteLimit",
		"recordlimit":       "recordLimit",
		"timelimit":         "timeLimit",
		"minbackoff":        "minBackoff",
		"maxbackoff":        "maxBackoff",
		"streamname":        "streamName",
		"fallbackqueuename": "fallbackQueueName",
		"threadpoolsize":    "threadPoolSize",
		"region":            "region",
		"accesskey":         "accessKey",
		"secretkey":         "secretKey",
	},
	"server": {
		"host":         "host",
		"port":         "port",
		"readtimeout":  "readTimeout",
		"writetimeout": "writeTimeout",
	},
	"logging": {
		"level":     "level",
		"format":    "format",
		"caller":    "caller",
		"timestamp": "timestamp",
	},
}
