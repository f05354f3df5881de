// streamsink - streaming event collector sink
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamsink

package sink

import "fmt"

// ConfigError indicates Init was given an invalid configuration: an
// unrecognized credential-sentinel combination or a missing required
// field. It is fatal to Init.
type ConfigError struct {
	Message string
	Cause   error
}

// NewConfigError creates a ConfigError.
func NewConfigError(message string, cause error) *ConfigError {
	return &ConfigError{Message: message, Cause: cause}
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("sink: config error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("sink: config error: %s", e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// RemoteUnavailable indicates the primary stream or fallback queue was
// missing at Init. It is logged, not fatal: the remote resource may
// become available later.
type RemoteUnavailable struct {
	Resource string
	Name     string
	Cause    error
}

// NewRemoteUnavailable creates a RemoteUnavailable error.
func NewRemoteUnavailable(resource, name string, cause error) *RemoteUnavailable {
	return &RemoteUnavailable{Resource: resource, Name: name, Cause: cause}
}

// Error implements the error interface.
func (e *RemoteUnavailable) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("sink: %s %q unavailable: %v", e.Resource, e.Name, e.Cause)
	}
	return fmt.Sprintf("sink: %s %q unavailable", e.Resource, e.Name)
}

// Unwrap returns the underlying cause, if any.
func (e *RemoteUnavailable) Unwrap() error {
	return e.Cause
}

// PayloadTooLarge indicates an event of MaxBytes or more at Store. The
// event is dropped; the caller sees success (fire-and-forget semantics).
type PayloadTooLarge struct {
	Size int
	Max  int
}

// Error implements the error interface.
func (e *PayloadTooLarge) Error() string {
	return fmt.Sprintf("sink: payload of %d bytes is not below max of %d bytes", e.Size, e.Max)
}
