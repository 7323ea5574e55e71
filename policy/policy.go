// Package policy implements scheduling policies on top of the engine
// package's interrupt-driven hooks: FCFS, round-robin, and static-priority,
// grounded in original_source/sim_sched_np.c and
// original_source/sim_sched_advanced.c. The engine package never imports
// this one — per spec, the policy is an external collaborator, not part of
// the simulation core.
package policy

import (
	"sync/atomic"

	"github.com/joeycumines/go-simsched/engine"
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// ProcessInfo is the opaque record every policy in this package associates
// with a loaded process — the same "pointer-sized handle" role spec.md
// assigns to the engine's opaque parameter, here given concrete fields
// needed by FCFS/RoundRobin/StaticPriority and by the report package.
type ProcessInfo struct {
	PID       int
	State     engine.CPUState
	CreatedAt engine.VTime

	// Priority is interpreted only by StaticPriority; lower is more urgent,
	// matching original_source/sim_sched_advanced.c's "数值越小，优先级越高".
	Priority int
}

// Policy is implemented by every scheduling policy in this package.
// Schedule(nil) is the driver-facing form (spec.md §9's asymmetry: call it
// once, from outside any process body, to start the simulation).
// Schedule(self) is used from inside OnIOReady/OnSliceRunout, passing the
// *engine.Proc the callback itself received, so Schedule can Save/Restore
// through it.
type Policy interface {
	OnIOReady(proc *engine.Proc, info *ProcessInfo)
	OnSliceRunout(proc *engine.Proc, info *ProcessInfo)
	OnExit(info *ProcessInfo)
	Schedule(self *engine.Proc)

	// Yield hands the CPU to the next ready process on behalf of self,
	// without re-enqueueing self as ready. It is the call a process body
	// makes immediately after IORequest: original_source/sim_sched_np.c's
	// sim_iorequest saves the caller's state and moves it to its own
	// blocked_queue, clears activeproc, and only then calls sched(), so
	// the generic "save the running process and push it to ready" step
	// that Schedule performs never fires for the process that just
	// blocked. Yield reproduces that by skipping the re-enqueue; the
	// blocked process re-enters the ready queue later, via OnIOReady,
	// once its I/O actually completes.
	Yield(self *engine.Proc)

	// Load registers a new process body with the engine, under this
	// policy's bookkeeping, and returns its PID.
	Load(body func(p *engine.Proc)) (int, error)
}

// ExitHook, if set, is invoked by OnExit after a policy has removed the
// exiting process from its own structures, to let report.Recorder (or any
// other observer) see final (info, exit-clock) pairs. Spec.md §9: "the
// engine guarantees nothing about policy queues; the policy's on_exit must
// remove the process from its own structures" — this is that removal point.
type ExitHook func(info *ProcessInfo, exitClock engine.VTime)

// readyFIFO is the insertion-ordered ready queue shared by FCFS and
// RoundRobin (the only difference between them is the slice budget given
// to Restore).
type readyFIFO struct {
	items []*ProcessInfo
}

func (q *readyFIFO) pushBack(p *ProcessInfo) { q.items = append(q.items, p) }

func (q *readyFIFO) popFront() *ProcessInfo {
	if len(q.items) == 0 {
		return nil
	}
	p := q.items[0]
	q.items = q.items[1:]
	return p
}

func (q *readyFIFO) remove(p *ProcessInfo) {
	for i, x := range q.items {
		if x == p {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return
		}
	}
}

// pidAllocator hands out sequential PIDs starting at 1, matching
// original_source's nextpid.
type pidAllocator struct{ counter atomic.Int64 }

func (a *pidAllocator) next() int {
	return int(a.counter.Add(1))
}

// Option configures a policy constructor (NewFCFS, NewRoundRobin,
// NewStaticPriority). The apply signature is internal: every policy in this
// package holds exactly a logger and an ExitHook, so one Option type serves
// all three constructors.
type Option interface {
	apply(log **logiface.Logger[*stumpy.Event], hook *ExitHook)
}

type optionFunc func(log **logiface.Logger[*stumpy.Event], hook *ExitHook)

func (f optionFunc) apply(log **logiface.Logger[*stumpy.Event], hook *ExitHook) { f(log, hook) }

// WithLogger attaches a structured logger for Trace-level visibility into
// scheduling decisions. The default is a disabled logger (see
// stumpy.L.LevelDisabled), so nothing is emitted unless a caller opts in.
func WithLogger(log *logiface.Logger[*stumpy.Event]) Option {
	return optionFunc(func(dst **logiface.Logger[*stumpy.Event], _ *ExitHook) { *dst = log })
}

// WithExitHook sets the policy's ExitHook, invoked from OnExit once the
// policy has removed the exiting process from its own structures.
func WithExitHook(hook ExitHook) Option {
	return optionFunc(func(_ **logiface.Logger[*stumpy.Event], dst *ExitHook) { *dst = hook })
}
