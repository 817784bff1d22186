// Package testutil contains helpers used across tests to reduce boilerplate
// when wiring agents and engines to simulated hardware: a Rig bundling the
// simulated environments with alarm recorders, and testify mocks for
// asserting the exact calls an agent makes. They are not intended for
// production usage.
package testutil
