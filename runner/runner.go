package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/awarenode/core"
	"github.com/hupe1980/awarenode/logging"
)

// ErrAlreadyRunning is returned by Start when a run is active.
var ErrAlreadyRunning = errors.New("runner is already running")

// Cycler is the part of the engine a Runner drives.
type Cycler interface {
	Cycle()
	Periodicity() time.Duration
	Depleted() bool
	CycleCount() uint64
}

// StopReason tells why a run ended.
type StopReason string

const (
	StopMaxCycles StopReason = "max_cycles"
	StopDepleted  StopReason = "depleted"
	StopCanceled  StopReason = "canceled"
	StopViolation StopReason = "invariant_violation"
)

// Result summarizes a finished run.
type Result struct {
	// Cycles is the number of cycles run by this run.
	Cycles uint64
	Reason StopReason
	// Elapsed is the wall-clock duration of the run.
	Elapsed time.Duration
}

// Options holds configuration overrides passed to New().
type Options struct {
	// MaxCycles bounds a run; 0 means unbounded.
	MaxCycles int
	// TimeScale multiplies the sampling period between cycles. 0 disables
	// waiting.
	TimeScale float64
	// StopOnDepletion ends the run once the battery is exhausted.
	StopOnDepletion bool
	// Logger receives run lifecycle logs.
	Logger logging.Logger
}

// Runner drives a Cycler. Public methods are safe for concurrent use.
type Runner struct {
	cycler Cycler
	opts   Options
	logger *logging.NodeLogger

	mu     sync.Mutex
	cancel context.CancelFunc
}

// New constructs a Runner with optional overrides.
func New(cycler Cycler, optFns ...func(o *Options)) *Runner {
	opts := Options{
		StopOnDepletion: true,
		Logger:          logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Runner{
		cycler: cycler,
		opts:   opts,
		logger: logging.NewNodeLogger(opts.Logger).WithComponent("runner"),
	}
}

// Run executes cycles until a stop condition is met. Cancellation is checked
// between cycles; a started cycle always completes. A canceled run returns
// the context error together with its result.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	start := time.Now()
	res := Result{}
	finish := func(reason StopReason, err error) (Result, error) {
		res.Reason = reason
		res.Elapsed = time.Since(start)
		r.logger.Info("Run finished",
			"reason", string(reason),
			"cycles", res.Cycles,
			"elapsed", res.Elapsed,
		)
		return res, err
	}

	r.logger.Info("Run started",
		"max_cycles", r.opts.MaxCycles,
		"time_scale", r.opts.TimeScale,
		"stop_on_depletion", r.opts.StopOnDepletion,
	)

	for {
		if reason, err := r.stopCondition(ctx, res.Cycles); reason != "" {
			return finish(reason, err)
		}

		if err := r.cycle(); err != nil {
			return finish(StopViolation, err)
		}
		res.Cycles++

		// No wait after the last cycle.
		if reason, err := r.stopCondition(ctx, res.Cycles); reason != "" {
			return finish(reason, err)
		}
		if err := r.wait(ctx); err != nil {
			return finish(StopCanceled, err)
		}
	}
}

// stopCondition returns the reason the run must end before another cycle,
// or "" to continue.
func (r *Runner) stopCondition(ctx context.Context, cycles uint64) (StopReason, error) {
	if err := ctx.Err(); err != nil {
		return StopCanceled, err
	}
	if r.opts.StopOnDepletion && r.cycler.Depleted() {
		return StopDepleted, nil
	}
	if r.opts.MaxCycles > 0 && cycles >= uint64(r.opts.MaxCycles) {
		return StopMaxCycles, nil
	}
	return "", nil
}

// cycle runs one cycle and turns an invariant violation into an error. Any
// other panic propagates.
func (r *Runner) cycle() (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			v, ok := core.AsInvariantViolation(rec)
			if !ok {
				panic(rec)
			}
			err = fmt.Errorf("cycle %d: %w", r.cycler.CycleCount(), v)
		}
	}()
	r.cycler.Cycle()
	return nil
}

func (r *Runner) wait(ctx context.Context) error {
	if r.opts.TimeScale <= 0 {
		return nil
	}
	d := time.Duration(float64(r.cycler.Periodicity()) * r.opts.TimeScale)
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Start runs the loop on a new goroutine. The returned channel receives
// exactly one value and is then closed.
func (r *Runner) Start(ctx context.Context) (<-chan Outcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return nil, ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	out := make(chan Outcome, 1)
	go func() {
		res, err := r.Run(ctx)

		r.mu.Lock()
		r.cancel = nil
		r.mu.Unlock()
		cancel()

		out <- Outcome{Result: res, Err: err}
		close(out)
	}()
	return out, nil
}

// Stop cancels the active run, if any.
func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
	}
}

// Running reports whether a run started with Start is active.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancel != nil
}

// Outcome is the result of an asynchronous run.
type Outcome struct {
	Result Result
	Err    error
}
