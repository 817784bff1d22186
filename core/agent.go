package core

// Agent is the ODA (Observe-Decide-Act) contract shared by every subsystem
// model. T is the agent's interface struct carrying the per-cycle Inputs and
// Outputs.
//
// Observe runs the full decision half of the cycle: environment observation,
// then Learn, Reflect and Reason. Act hands the decided actuation to the
// environment. Oda is Observe immediately followed by Act and is meant for
// agents run standalone; an orchestrator interleaves the Observe phases of all
// agents before any Act phase so later agents see fresh outputs of earlier
// ones within the same cycle.
//
// Implementations are not safe for concurrent use. A cycle must run to
// completion once started.
type Agent[T any] interface {
	// Name returns the agent's identifier.
	Name() string
	// Observe runs Observe, Learn, Reflect and Reason, publishing Outputs.
	Observe(io *T)
	// Act runs the actuation phase.
	Act(io *T)
	// Oda runs Observe followed by Act.
	Oda(io *T)
}
