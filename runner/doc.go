// Package runner schedules decision cycles of an engine.
//
// A Runner calls Cycle repeatedly and waits one sampling period between
// cycles, scaled by TimeScale so simulations can run faster than real time
// (TimeScale 0 runs cycles back to back). It stops when the context is
// canceled, after MaxCycles cycles or, with StopOnDepletion, once the
// battery is exhausted.
//
// Run blocks; Start runs the same loop on its own goroutine and reports the
// outcome on a channel. An invariant violation inside a cycle ends the run
// with that violation as error.
package runner
