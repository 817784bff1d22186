package engine

import (
	"context"
	"errors"
	"sync"

	"github.com/hupe1980/awarenode/logging"
)

// CallbackType defines the specific points of a decision cycle where
// callbacks are executed.
//
// Callbacks provide a flexible mechanism for hooking into the cycle without
// modifying core logic. They run synchronously on the cycle's goroutine while
// the engine holds its write lock, so a callback must not call Engine
// accessors; everything it may need is in the CallbackContext.
//
// A started cycle always runs to completion: callback errors are logged by
// the engine and never abort the cycle.
type CallbackType string

const (
	// CallbackBeforeCycle is triggered before the first Observe phase.
	CallbackBeforeCycle CallbackType = "before_cycle"

	// CallbackAfterObserve is triggered once all Observe phases ran and the
	// indices were copied into the engine model.
	CallbackAfterObserve CallbackType = "after_observe"

	// CallbackAfterFusion is triggered after the fusion update.
	CallbackAfterFusion CallbackType = "after_fusion"

	// CallbackAfterCycle is triggered after all Act phases.
	// Use for telemetry, recording or post-processing.
	CallbackAfterCycle CallbackType = "after_cycle"
)

// CallbackContext provides the state visible at a callback point.
type CallbackContext struct {
	// NodeID identifies the engine.
	NodeID string

	// Cycle is the 1-based number of the running cycle.
	Cycle uint64

	// CallbackType indicates which callback point triggered this execution.
	CallbackType CallbackType

	// Snapshot is the engine state at the callback point.
	Snapshot Snapshot

	// Fusion is the fusion update of this cycle. Nil before CallbackAfterFusion.
	Fusion *FusionResult

	// Metadata provides extensible storage shared by the callbacks of one
	// cycle.
	Metadata map[string]any
}

// Callback defines the interface for cycle hooks.
//
// Implementations should be fast: they run inside the cycle and delay it.
type Callback interface {
	// Type returns the callback type this implementation handles.
	Type() CallbackType

	// Execute performs the callback logic with the provided context.
	Execute(ctx context.Context, callbackCtx *CallbackContext) error
}

// FunctionCallback wraps a function as a callback implementation.
//
// Example:
//
//	cb := NewFunctionCallback(
//	    CallbackAfterCycle,
//	    func(ctx context.Context, callbackCtx *CallbackContext) error {
//	        log.Printf("cycle %d: power index %d", callbackCtx.Cycle, callbackCtx.Snapshot.PowerIndex)
//	        return nil
//	    },
//	)
type FunctionCallback struct {
	callbackType CallbackType
	fn           func(ctx context.Context, callbackCtx *CallbackContext) error
}

// NewFunctionCallback creates a new function-based callback.
func NewFunctionCallback(
	callbackType CallbackType,
	fn func(ctx context.Context, callbackCtx *CallbackContext) error,
) *FunctionCallback {
	return &FunctionCallback{
		callbackType: callbackType,
		fn:           fn,
	}
}

// Type returns the callback type this function handles.
func (c *FunctionCallback) Type() CallbackType {
	return c.callbackType
}

// Execute calls the wrapped function with the provided context.
func (c *FunctionCallback) Execute(ctx context.Context, callbackCtx *CallbackContext) error {
	return c.fn(ctx, callbackCtx)
}

// CallbackManager is the registry of cycle callbacks. Registration and
// execution are safe for concurrent use.
type CallbackManager struct {
	mu        sync.RWMutex
	callbacks map[CallbackType][]Callback
}

// NewCallbackManager creates an empty callback manager.
func NewCallbackManager() *CallbackManager {
	return &CallbackManager{
		callbacks: make(map[CallbackType][]Callback),
	}
}

// RegisterCallback adds a callback. Callbacks of one type run in
// registration order.
func (cm *CallbackManager) RegisterCallback(callback Callback) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	callbackType := callback.Type()
	cm.callbacks[callbackType] = append(cm.callbacks[callbackType], callback)
}

// Len returns the number of callbacks registered for a type.
func (cm *CallbackManager) Len(callbackType CallbackType) int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.callbacks[callbackType])
}

// ExecuteCallbacks runs every callback registered for the type, in
// registration order. A failing callback does not prevent the following ones
// from running; all errors are joined.
func (cm *CallbackManager) ExecuteCallbacks(
	ctx context.Context,
	callbackType CallbackType,
	callbackCtx *CallbackContext,
) error {
	cm.mu.RLock()
	callbacks := append([]Callback(nil), cm.callbacks[callbackType]...)
	cm.mu.RUnlock()

	var errs []error
	for _, callback := range callbacks {
		if err := callback.Execute(ctx, callbackCtx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LoggingCallback logs the snapshot at its callback point.
type LoggingCallback struct {
	callbackType CallbackType
	logger       logging.Logger
}

// NewLoggingCallback creates a new logging callback.
func NewLoggingCallback(callbackType CallbackType, logger logging.Logger) *LoggingCallback {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &LoggingCallback{
		callbackType: callbackType,
		logger:       logger,
	}
}

// Type returns the callback type this logger handles.
func (c *LoggingCallback) Type() CallbackType {
	return c.callbackType
}

// Execute logs the snapshot.
func (c *LoggingCallback) Execute(_ context.Context, callbackCtx *CallbackContext) error {
	s := callbackCtx.Snapshot
	c.logger.Info("Cycle checkpoint",
		"callback", string(c.callbackType),
		"node_id", callbackCtx.NodeID,
		"cycle", callbackCtx.Cycle,
		"relevance_index", s.RelevanceIndex,
		"power_index", s.PowerIndex,
		"predicted_power", s.PredictedPower,
		"remaining_charge", s.RemainingCharge,
		"periodicity", s.Periodicity,
	)
	return nil
}
