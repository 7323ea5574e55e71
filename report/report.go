// Package report accumulates turnaround-time records as processes exit and
// produces a summary once a simulation finishes. This is one of the
// "external collaborators" spec.md explicitly scopes out of the engine
// (logging, turnaround-time reporting), supplied here so the repository is
// runnable end to end. Turnaround time itself is grounded in
// original_source/sim_sched_advanced.c's sim_intr_procexit, which computes
// `sim_engine_getclock() - proc_p->creation_time`.
package report

import (
	"context"
	"fmt"
	"sort"
	"sync"

	microbatch "github.com/joeycumines/go-microbatch"

	"github.com/joeycumines/go-simsched/engine"
	"github.com/joeycumines/go-simsched/policy"
)

// Record is one process's turnaround-time row.
type Record struct {
	PID        int
	Priority   int
	CreatedAt  engine.VTime
	ExitedAt   engine.VTime
	Turnaround engine.VTime
}

// Recorder batches incoming exit events via microbatch.Batcher, the way a
// production reporting sink would amortize writes to a slower backend
// (a file, a metrics pipe) instead of appending one row at a time; here the
// "backend" is an in-memory slice protected by a mutex; Flush via Close.
type Recorder struct {
	mu      sync.Mutex
	records []Record

	batcher *microbatch.Batcher[Record]
}

// NewRecorder constructs a Recorder. cfg may be nil to accept
// microbatch.Batcher's defaults (batches of up to 16, flushed at least every
// 50ms).
func NewRecorder(cfg *microbatch.BatcherConfig) *Recorder {
	r := &Recorder{}
	r.batcher = microbatch.NewBatcher[Record](cfg, r.process)
	return r
}

func (r *Recorder) process(_ context.Context, batch []Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, batch...)
	return nil
}

// ExitHook adapts Recorder to policy.ExitHook, recording one Record per
// process exit.
func (r *Recorder) ExitHook(info *policy.ProcessInfo, exitClock engine.VTime) {
	rec := Record{
		PID:        info.PID,
		Priority:   info.Priority,
		CreatedAt:  info.CreatedAt,
		ExitedAt:   exitClock,
		Turnaround: exitClock - info.CreatedAt,
	}
	// Submit must not block the exiting process's own goroutine forever; a
	// background context is fine here since the batcher's only failure mode
	// is having already been closed, in which case the record is appended
	// directly instead of being lost.
	if _, err := r.batcher.Submit(context.Background(), rec); err != nil {
		r.mu.Lock()
		r.records = append(r.records, rec)
		r.mu.Unlock()
	}
}

// Close flushes any pending batch and stops the Recorder. Call once the
// simulation's engine.WaitAllFinish has returned.
func (r *Recorder) Close() error {
	return r.batcher.Close()
}

// Records returns a defensive copy of all recorded rows, ordered by PID.
func (r *Recorder) Records() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Record, len(r.records))
	copy(out, r.records)
	sort.Slice(out, func(i, j int) bool { return out[i].PID < out[j].PID })
	return out
}

// Summary is an aggregate over a completed Recorder.
type Summary struct {
	Count            int
	TotalTurnaround  engine.VTime
	MeanTurnaround   float64
	MaxTurnaround    engine.VTime
	MakespanFinishAt engine.VTime
}

// Summarize computes a Summary over the current Records.
func (r *Recorder) Summarize() Summary {
	records := r.Records()
	var s Summary
	s.Count = len(records)
	for _, rec := range records {
		s.TotalTurnaround += rec.Turnaround
		if rec.Turnaround > s.MaxTurnaround {
			s.MaxTurnaround = rec.Turnaround
		}
		if rec.ExitedAt > s.MakespanFinishAt {
			s.MakespanFinishAt = rec.ExitedAt
		}
	}
	if s.Count > 0 {
		s.MeanTurnaround = float64(s.TotalTurnaround) / float64(s.Count)
	}
	return s
}

// String renders a Summary as a short human-readable line, suitable for
// cmd/simrunner's final stdout output.
func (s Summary) String() string {
	return fmt.Sprintf(
		"processes=%d mean_turnaround=%.1f max_turnaround=%d makespan=%d",
		s.Count, s.MeanTurnaround, s.MaxTurnaround, s.MakespanFinishAt,
	)
}
