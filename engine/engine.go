package engine

import (
	"sync"
	"sync/atomic"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Callbacks are the three engine-to-policy interrupt notifications (spec
// §4.5). All three are invoked synchronously, in the context of an
// arbitrary process goroutine (or the driver goroutine for the very first
// call), and never concurrently with each other.
type Callbacks struct {
	// OnIOReady fires when opaque's pending I/O has just completed and the
	// process has moved from iowait to active. proc is the *Proc the callback
	// is running on behalf of: the process whose CPUBurst loop discovered the
	// completion, the process that called WaitNextInterrupt, or nil when the
	// driver called WaitNextInterrupt directly (no process is current).
	OnIOReady func(proc *Proc, opaque any)

	// OnSliceRunout fires when opaque has exhausted its CPU-time budget and
	// still holds the virtual CPU. proc is always opaque's own *Proc, since
	// only a live CPUBurst can run out of slice.
	OnSliceRunout func(proc *Proc, opaque any)

	// OnExit fires after the engine has already torn down the PCB for
	// opaque; the policy must not refer to it afterward.
	OnExit func(opaque any)
}

// Engine is the simulation engine: a virtual clock, the PCB store, and the
// active/iowait queues (spec §2-§3). The zero value is not usable; construct
// with NewEngine.
type Engine struct {
	// MaxProcesses caps the number of live (loaded, not yet exited)
	// processes. Zero means unbounded.
	MaxProcesses int

	cb  Callbacks
	log *logiface.Logger[*stumpy.Event]

	mu     sync.Mutex
	clock  VTime
	active activeQueue
	iowait iowaitHeap
	seq    uint64

	nLive    atomic.Int64
	doneOnce sync.Once
	doneCh   chan struct{}

	// unparked counts goroutines currently unparked, for the "at most one
	// thread is unparked at any instant" invariant (spec §8). Engine
	// primitives increment/decrement it around every park/unpark.
	unparked atomic.Int32
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithMaxProcesses sets Engine.MaxProcesses.
func WithMaxProcesses(n int) Option {
	return func(e *Engine) { e.MaxProcesses = n }
}

// WithLogger attaches a structured logger for Trace-level visibility into
// CPUBurst/IORequest/Restore transitions. The engine itself has no logging
// requirement (spec: logging is a CORE non-goal); passing nil (the default)
// uses a disabled logger, so nothing is emitted unless a caller opts in.
func WithLogger(log *logiface.Logger[*stumpy.Event]) Option {
	return func(e *Engine) { e.log = log }
}

// NewEngine constructs an Engine, registers the three interrupt callbacks,
// and zeroes the virtual clock (spec §4.6 init).
func NewEngine(cb Callbacks, opts ...Option) *Engine {
	e := &Engine{
		cb:     cb,
		iowait: make(iowaitHeap, 0),
		doneCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = stumpy.L.New(stumpy.L.WithLevel(stumpy.L.LevelDisabled()))
	}
	return e
}

// Clock reads the virtual clock.
func (e *Engine) Clock() VTime {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clock
}

// WaitAllFinish blocks until n_live drops to zero (spec §4.6) and the OnExit
// callback of the last process to exit has returned. If no process has ever
// been loaded it never returns.
func (e *Engine) WaitAllFinish() {
	<-e.doneCh
}

// markUnparked and markParked maintain the "at most one unparked goroutine"
// counter used by the concurrency invariant test. They are invoked by
// transfer.go around every park/unpark pair.
func (e *Engine) markUnparked() { e.unparked.Add(1) }
func (e *Engine) markParked()   { e.unparked.Add(-1) }

// UnparkedCount exposes the live unparked-goroutine counter, for tests that
// check its bookkeeping (it never goes negative and settles back to zero).
func (e *Engine) UnparkedCount() int32 { return e.unparked.Load() }
