// streamsink - streaming event collector sink
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamsink

/*
Package supervisor provides process supervision for the sink's long-running
goroutines using suture v4.

The sink owns exactly two long-running loops, isolated into separate child
supervisors so a crash in one does not restart the other:

	RootSupervisor ("sink")
	├── TimerSupervisor ("flush-timer")
	│   └── the self-rescheduling periodic flush loop
	└── WorkerSupervisor ("submit-workers")
	    └── the fixed-size submission dispatch loop

Both child services implement suture.Service (Serve(ctx) error): they start
their work, block until ctx is canceled, then return. A panic or unexpected
return inside either loop restarts only that loop; once failures pass
TreeConfig.FailureThreshold, restarts pause for the fixed
TreeConfig.FailureBackoff.

# Shutdown

Canceling the context passed to Serve triggers suture's own graceful
shutdown machinery, bounded by TreeConfig.ShutdownTimeout (10s by default,
matching the sink's own drain budget in SinkCoordinator.Shutdown).
UnstoppedServiceReport surfaces any service that did not exit in time.
*/
package supervisor
