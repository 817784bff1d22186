// Package telemetry exposes engine state to operators.
//
// Collector is a prometheus.Collector that reads a consistent engine
// Snapshot on every scrape, so metrics never mix values of two cycles.
// Alarms counts agent alarms per agent and code. Recorder keeps a bounded
// in-memory history of cycle snapshots and is registered as an after_cycle
// engine callback.
package telemetry
