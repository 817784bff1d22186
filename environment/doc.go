// Package environment provides ready-made core environments: function
// adapters that turn plain callbacks into environments, and simulated
// hardware used by the command line node, the examples and tests.
//
// A function adapter with a missing callback reports itself through
// core.Validator, so agent construction fails early instead of panicking
// inside a cycle:
//
//	sensor := environment.SensorFuncs{
//	    ObserveFunc: func(obs *core.SensorObservation) { obs.Data = readADC() },
//	    ActFunc:     func(acts *core.SensorActuation) { setMode(acts.Mode) },
//	}
//
// Simulated environments are safe for concurrent use: the cycle drives them
// while a metrics scrape or a test goroutine inspects them.
package environment
