// Package engine implements the decision layer of an energy-aware sensing
// node.
//
// The Engine owns the application, radio and power agents together with two
// static power sources (base and idle consumption) and runs them in a fixed
// sequence once per activation of the node. It balances two competing
// indices in [-100, 100]:
//
//   - the relevance index: how much the sensed data currently deserves a
//     higher sampling rate
//   - the power index: the margin of the predicted battery life against the
//     expected lifetime
//
// # Cycle
//
// A cycle observes every agent, copies the resulting indices into the engine
// model, fuses the measured-minus-predicted consumption into the power
// estimates and finally lets every agent act:
//
//	┌──────────┐   ┌──────────┐   ┌──────────┐   ┌────────┐   ┌─────┐
//	│ App      │──▶│ Radio    │──▶│ Power    │──▶│ Fusion │──▶│ Act │
//	│ Observe  │   │ Observe  │   │ Observe  │   │        │   │     │
//	└──────────┘   └──────────┘   └──────────┘   └────────┘   └─────┘
//
// # Fusion
//
// The residual reported by the power agent is distributed across the power
// sources in proportion to covariance×power:
//
//	confidence = Σ covariance_i*power_i + feedback covariance
//	gain_i     = covariance_i*power_i / confidence
//	power_i   += gain_i*residual
//	cov_i     -= gain_i*cov_i
//
// A zero or non-finite confidence is an invariant violation and aborts the
// cycle with a panic.
//
// # Callbacks
//
// Callbacks hook into four points of the cycle (before_cycle, after_observe,
// after_fusion, after_cycle). They receive a Snapshot of the engine state and
// run under the engine's write lock; a failing callback is logged and never
// aborts the cycle.
//
// # Usage
//
//	eng, err := engine.New(engine.Environments{
//	    Sensor:  sensor,
//	    Trigger: timer,
//	    Radio:   radio,
//	    Power:   gauge,
//	}, func(o *engine.Options) {
//	    o.Config = cfg
//	    o.Logger = logger
//	})
//	if err != nil {
//	    return err
//	}
//	for !eng.Depleted() {
//	    eng.Cycle()
//	    time.Sleep(eng.Periodicity())
//	}
package engine
