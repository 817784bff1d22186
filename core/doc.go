// Package core provides the foundational domain types and interfaces shared by
// every awarenode component. It defines the core abstractions for:
//
//   - Agents (bounded ODA models of one node subsystem)
//   - PowerEstimates and PowerSources (correctable power-cost estimates)
//   - Interface structs (per-cycle Inputs/Outputs exchanged between agents)
//   - Environments (injected observation/actuation boundaries to hardware)
//   - Alarms, sentinel errors and the invariant assertion path
//
// The package keeps implementation concerns (agent models, orchestration,
// persistence of configuration) out of scope, exposing small interfaces so
// hardware drivers, simulators and test doubles can be swapped freely.
package core
