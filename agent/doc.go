// Package agent contains the ODA (Observe-Decide-Act) agents of a sensing
// node. Each agent models one subsystem and owns its environment:
//
//  1. SensorAgent: measurement and sensor power modes
//  2. TriggerAgent: the sampling period table
//  3. AppAgent: data-quality checks and the relevance index; it composes a
//     SensorAgent and a TriggerAgent
//  4. RadioAgent: transmission and radio power modes
//  5. PowerAgent: battery accounting, predicted life and the power index
//
// Execution Model:
//   - Observe reads the environment, then runs learn, reflect and reason,
//     publishing the agent's Outputs
//   - Act hands the decided actuation to the environment
//   - Oda runs both for agents driven standalone; the engine instead runs
//     every Observe before any Act
//
// Sensor, app and radio agents are power sources: their estimates are
// corrected by the engine's fusion step through ApplyCorrection.
//
// Agents are not safe for concurrent use. Non-fatal conditions are reported
// through the core.AlarmFunc passed at construction.
package agent
