package agent

import (
	"fmt"
	"reflect"

	"github.com/hupe1980/awarenode/core"
	"github.com/hupe1980/awarenode/logging"
)

// BaseAgent bundles the identity, logging and alarm plumbing shared by every
// ODA agent. Embed it in concrete agents; it is not safe for concurrent use,
// matching the single-threaded cycle contract of the agents themselves.
type BaseAgent struct {
	name        string              // Identifier used in logs and telemetry
	description string              // Human-readable purpose
	logger      *logging.NodeLogger // Never nil
	alarm       core.AlarmFunc      // Optional
	initialized bool                // Set by the first Reflect
}

// NewBaseAgent constructs a BaseAgent. A nil logger discards output and a nil
// alarm is ignored.
func NewBaseAgent(name string, logger logging.Logger, alarm core.AlarmFunc) BaseAgent {
	return BaseAgent{
		name:        name,
		description: fmt.Sprintf("Agent %s", name),
		logger:      logging.NewNodeLogger(logger).WithComponent(name),
		alarm:       alarm,
	}
}

// Name returns the agent's identifier.
func (b *BaseAgent) Name() string { return b.name }

// Description returns a detailed description of this agent's purpose.
func (b *BaseAgent) Description() string { return b.description }

// SetDescription updates the agent's description.
func (b *BaseAgent) SetDescription(desc string) { b.description = desc }

// Initialized reports whether the agent has completed its first Reflect.
func (b *BaseAgent) Initialized() bool { return b.initialized }

// Logger returns the agent's component logger.
func (b *BaseAgent) Logger() *logging.NodeLogger { return b.logger }

// raise logs an alarm and forwards it to the optional alarm callback.
func (b *BaseAgent) raise(code core.AlarmCode) {
	b.logger.LogAlarm(b.name, code)
	if b.alarm != nil {
		b.alarm(code)
	}
}

// requireEnvironment rejects a nil environment, including a typed nil such
// as a nil *ScriptedSensor, or one reporting itself incomplete through
// core.Validator.
func requireEnvironment(kind string, env any) error {
	if isNil(env) {
		return fmt.Errorf("%s: %w", kind, core.ErrMissingEnvironment)
	}
	if v, ok := env.(core.Validator); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("%s: %w", kind, err)
		}
	}
	return nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Func, reflect.Map, reflect.Chan, reflect.Interface, reflect.Slice:
		return rv.IsNil()
	}
	return false
}
