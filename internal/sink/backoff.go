// streamsink - streaming event collector sink
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamsink

package sink

import (
	"math/rand"
	"time"
)

// backoffGrowthFactor is the multiplier applied to lastBackoff before the
// jitter window is computed (spec.md §4.2).
const backoffGrowthFactor = 3

// BackoffGenerator produces full-jitter exponential backoff durations.
//
// Each call samples uniformly between minBackoff and
// lastBackoff*backoffGrowthFactor, then clamps to maxBackoff. Passing the
// previous result back in as lastBackoff grows the window geometrically;
// passing minBackoff restarts it. BackoffGenerator holds no state of its
// own beyond its bounds, so a single instance may be shared across
// goroutines; Next uses the top-level math/rand functions, which are
// safe for concurrent use, rather than a private *rand.Rand.
type BackoffGenerator struct {
	minBackoff time.Duration
	maxBackoff time.Duration
}

// NewBackoffGenerator builds a generator bounded by [minBackoff, maxBackoff].
func NewBackoffGenerator(minBackoff, maxBackoff time.Duration) *BackoffGenerator {
	return &BackoffGenerator{
		minBackoff: minBackoff,
		maxBackoff: maxBackoff,
	}
}

// Next returns the next backoff duration given the last one used. Callers
// should seed the first call with minBackoff. Safe to call concurrently:
// PrimarySubmitter.handleFailures reaches Next from the scheduler's
// worker pool, so multiple goroutines may call it at once.
func (b *BackoffGenerator) Next(lastBackoff time.Duration) time.Duration {
	if lastBackoff < b.minBackoff {
		lastBackoff = b.minBackoff
	}

	window := lastBackoff*backoffGrowthFactor - b.minBackoff
	raw := b.minBackoff
	if window > 0 {
		//nolint:gosec // jitter does not need a cryptographic source
		raw += time.Duration(rand.Int63n(int64(window) + 1))
	}

	if raw > b.maxBackoff {
		return b.maxBackoff
	}
	return raw
}
