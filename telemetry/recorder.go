package telemetry

import (
	"context"
	"errors"
	"sync"

	"github.com/hupe1980/awarenode/engine"
)

// ErrNoRecords is returned by Last when nothing was recorded yet.
var ErrNoRecords = errors.New("no cycles recorded")

// Record is one recorded cycle.
type Record struct {
	Snapshot engine.Snapshot
	// Gains holds the fusion gain per source name.
	Gains map[string]float64
	// Confidence is the fusion denominator of the cycle.
	Confidence float64
}

// Recorder is a bounded process-local history of cycles. Once full, the
// oldest record is overwritten.
//
// Concurrency: protected by RWMutex.
type Recorder struct {
	mu      sync.RWMutex
	records []Record
	next    int
	full    bool
}

// NewRecorder creates a recorder keeping the last capacity cycles. A
// capacity below 1 keeps a single record.
func NewRecorder(capacity int) *Recorder {
	if capacity < 1 {
		capacity = 1
	}
	return &Recorder{records: make([]Record, capacity)}
}

// Add stores a record.
func (r *Recorder) Add(rec Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[r.next] = rec
	r.next++
	if r.next == len(r.records) {
		r.next = 0
		r.full = true
	}
}

// Len returns the number of stored records.
func (r *Recorder) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.full {
		return len(r.records)
	}
	return r.next
}

// History returns the stored records, oldest first.
func (r *Recorder) History() []Record {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.full {
		return append([]Record(nil), r.records[:r.next]...)
	}
	out := make([]Record, 0, len(r.records))
	out = append(out, r.records[r.next:]...)
	return append(out, r.records[:r.next]...)
}

// Last returns the most recent record.
func (r *Recorder) Last() (Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.full && r.next == 0 {
		return Record{}, ErrNoRecords
	}
	i := r.next - 1
	if i < 0 {
		i = len(r.records) - 1
	}
	return r.records[i], nil
}

// Find returns the record of a cycle if it is still held.
func (r *Recorder) Find(cycle uint64) (Record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := r.next
	if r.full {
		n = len(r.records)
	}
	for _, rec := range r.records[:n] {
		if rec.Snapshot.Cycle == cycle {
			return rec, true
		}
	}
	return Record{}, false
}

// Callback returns an after_cycle engine callback feeding the recorder.
func (r *Recorder) Callback() engine.Callback {
	return engine.NewFunctionCallback(engine.CallbackAfterCycle, func(_ context.Context, cbCtx *engine.CallbackContext) error {
		rec := Record{Snapshot: cbCtx.Snapshot}
		if f := cbCtx.Fusion; f != nil {
			rec.Confidence = f.Confidence
			rec.Gains = make(map[string]float64, len(f.Sources))
			for i, name := range f.Sources {
				rec.Gains[name] = f.Gains[i]
			}
		}
		r.Add(rec)
		return nil
	})
}
